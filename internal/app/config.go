package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/smartmeal/internal/api/httpapi"
	"github.com/vladislavdragonenkov/smartmeal/internal/messaging/kafka"
)

// Транспорты удалённого API.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Движки локального хранилища каталога.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска клиента.
type Config struct {
	Transport   string
	APIBaseURL  string
	APIUsername string
	APIPassword string
	GRPCAddr    string
	APITimeout  time.Duration

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers: список брокеров через запятую. Если пусто, события не публикуются.
	KafkaBrokers string
	KafkaTopic   string

	// MetricsAddr: адрес /metrics и health-проб. Если пусто, listener не поднимается.
	MetricsAddr string
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{
		Transport:           TransportHTTP,
		GRPCAddr:            "localhost:50051",
		APITimeout:          httpapi.DefaultTimeout,
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		KafkaTopic:          kafka.TopicSessionEvents,
	}
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error

	switch c.Transport {
	case TransportHTTP:
		if strings.TrimSpace(c.APIBaseURL) == "" {
			errs = append(errs, errors.New("api base url is required for http transport"))
		}
	case TransportGRPC:
		if strings.TrimSpace(c.GRPCAddr) == "" {
			errs = append(errs, errors.New("grpc address is required for grpc transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported api transport %q", c.Transport))
	}

	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("api timeout must be > 0"))
	}

	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("postgres dsn is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}

	return errors.Join(errs...)
}

// Brokers разбирает KafkaBrokers в список адресов.
func (c Config) Brokers() []string {
	var brokers []string
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}
