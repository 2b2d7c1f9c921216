package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/smartmeal/internal/app"
	"github.com/vladislavdragonenkov/smartmeal/internal/version"
	"github.com/vladislavdragonenkov/smartmeal/internal/workflow"
)

const (
	envAPITransport        = "SMARTMEAL_API_TRANSPORT"
	envAPIBaseURL          = "SMARTMEAL_API_BASE_URL"
	envAPIUsername         = "SMARTMEAL_API_USERNAME"
	envAPIPassword         = "SMARTMEAL_API_PASSWORD"
	envGRPCAddr            = "SMARTMEAL_GRPC_ADDR"
	envAPITimeout          = "SMARTMEAL_API_TIMEOUT"
	envStorageDriver       = "SMARTMEAL_STORAGE_DRIVER"
	envPostgresDSN         = "SMARTMEAL_POSTGRES_DSN"
	envPostgresAutoMigrate = "SMARTMEAL_POSTGRES_AUTO_MIGRATE"
	envKafkaBrokers        = "SMARTMEAL_KAFKA_BROKERS"
	envKafkaTopic          = "SMARTMEAL_KAFKA_TOPIC"
	envMetricsAddr         = "SMARTMEAL_METRICS_ADDR"
	envLogLevel            = "SMARTMEAL_LOG_LEVEL"
	envLogFile             = "SMARTMEAL_LOG_FILE"
)

type envLookup func(key string) (string, bool)

// setupLogger направляет логи в stderr и, если задан SMARTMEAL_LOG_FILE, ещё и в файл.
// stdout остаётся за диалогом с пользователем.
func setupLogger(lookup envLookup) (io.Closer, []string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)

	var warnings []string
	if raw, ok := lookup(envLogLevel); ok && strings.TrimSpace(raw) != "" {
		level, err := log.ParseLevel(strings.TrimSpace(raw))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envLogLevel, err))
		} else {
			log.SetLevel(level)
		}
	}

	path, ok := lookup(envLogFile)
	if !ok || strings.TrimSpace(path) == "" {
		return nil, warnings
	}
	file, err := os.OpenFile(strings.TrimSpace(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, append(warnings, fmt.Sprintf("%s: %v", envLogFile, err))
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return file, warnings
}

// readConfigFromEnv строит конфигурацию из окружения. Некорректные значения
// не прерывают запуск: остаётся значение по умолчанию, а причина попадает в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	warn := func(key, value string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q: %v", key, value, err))
	}

	if v, ok := lookupTrimmed(lookup, envAPITransport); ok {
		transport := strings.ToLower(v)
		if transport == app.TransportHTTP || transport == app.TransportGRPC {
			cfg.Transport = transport
		} else {
			warn(envAPITransport, v, errors.New("expected http or grpc"))
		}
	}
	if v, ok := lookupTrimmed(lookup, envAPIBaseURL); ok {
		if err := validateURL(v); err != nil {
			warn(envAPIBaseURL, v, err)
		} else {
			cfg.APIBaseURL = v
		}
	}
	if v, ok := lookupTrimmed(lookup, envAPIUsername); ok {
		cfg.APIUsername = v
	}
	// Пароль не тримим: пробелы могут быть его частью.
	if v, ok := lookup(envAPIPassword); ok {
		cfg.APIPassword = v
	}
	if v, ok := lookupTrimmed(lookup, envGRPCAddr); ok {
		cfg.GRPCAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envAPITimeout); ok {
		timeout, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warn(envAPITimeout, v, err)
		} else {
			cfg.APITimeout = timeout
		}
	}
	if v, ok := lookupTrimmed(lookup, envStorageDriver); ok {
		driver := strings.ToLower(v)
		if driver == app.StorageDriverMemory || driver == app.StorageDriverPostgres {
			cfg.StorageDriver = driver
		} else {
			warn(envStorageDriver, v, errors.New("expected memory or postgres"))
		}
	}
	if v, ok := lookupTrimmed(lookup, envPostgresDSN); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := lookupTrimmed(lookup, envPostgresAutoMigrate); ok {
		autoMigrate, err := parseBool(v)
		if err != nil {
			warn(envPostgresAutoMigrate, v, err)
		} else {
			cfg.PostgresAutoMigrate = autoMigrate
		}
	}
	if v, ok := lookupTrimmed(lookup, envKafkaBrokers); ok {
		cfg.KafkaBrokers = v
	}
	if v, ok := lookupTrimmed(lookup, envKafkaTopic); ok {
		cfg.KafkaTopic = v
	}
	if v, ok := lookupTrimmed(lookup, envMetricsAddr); ok {
		cfg.MetricsAddr = v
	}

	return cfg, warnings
}

func lookupTrimmed(lookup envLookup, key string) (string, bool) {
	value, ok := lookup(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, errors.New(rule)
	}
	return value, nil
}

func run(ctx context.Context, lookup envLookup, stdin io.Reader, stdout io.Writer) int {
	logCloser, logWarnings := setupLogger(lookup)
	if logCloser != nil {
		defer logCloser.Close()
	}

	cfg, warnings := readConfigFromEnv(lookup)
	for _, warning := range append(logWarnings, warnings...) {
		log.Warn("некорректная настройка, используется значение по умолчанию: " + warning)
	}

	log.WithFields(log.Fields{
		"version":   version.String(),
		"transport": cfg.Transport,
		"storage":   cfg.StorageDriver,
	}).Info("запускаем SmartMeal")

	console := workflow.NewStreamConsole(stdin, stdout)
	defer console.Close()

	outcome, err := app.Run(ctx, cfg, console, log.WithField("component", "app"))
	if err != nil {
		log.WithError(err).Error("не удалось подготовить сессию")
		_, _ = fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	return outcome.ExitCode()
}

func main() {
	// Уже заданные переменные окружения имеют приоритет над .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.LookupEnv, os.Stdin, os.Stdout)
	stop()
	os.Exit(code)
}
