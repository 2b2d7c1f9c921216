package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/smartmeal/internal/api/grpcapi"
	"github.com/vladislavdragonenkov/smartmeal/internal/api/httpapi"
	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
	"github.com/vladislavdragonenkov/smartmeal/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/smartmeal/internal/storage/postgres"
	"github.com/vladislavdragonenkov/smartmeal/internal/workflow"
)

// runtimeDependencies содержит собранные зависимости одной сессии и ресурсы, которые нужно закрыть.
type runtimeDependencies struct {
	repo   domain.MenuRepository
	store  *postgres.Store
	api    workflow.MenuAPIClient
	grpc   *grpcapi.Client
	kafka  *kafka.Producer
	events workflow.EventPublisher
}

// initRuntimeDependencies собирает хранилище, клиент API и (опционально) Kafka.
// При ошибке уже открытые ресурсы закрываются.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	repo, store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	deps := &runtimeDependencies{repo: repo, store: store}

	switch cfg.Transport {
	case TransportHTTP:
		deps.api = httpapi.NewClient(httpapi.Config{
			BaseURL:  cfg.APIBaseURL,
			Username: cfg.APIUsername,
			Password: cfg.APIPassword,
			Timeout:  cfg.APITimeout,
		}, logger.WithField("component", "http-api"))
	case TransportGRPC:
		client, err := grpcapi.Dial(cfg.GRPCAddr, cfg.APITimeout, logger.WithField("component", "grpc-api"))
		if err != nil {
			deps.close(logger)
			return nil, fmt.Errorf("dial grpc api: %w", err)
		}
		deps.api = client
		deps.grpc = client
	default:
		deps.close(logger)
		return nil, fmt.Errorf("unsupported api transport %q", cfg.Transport)
	}

	// Kafka необязательна: ошибка подключения только логируется в initKafkaProducer.
	if producer, err := initKafkaProducer(cfg.Brokers(), logger); err == nil && producer != nil {
		deps.kafka = producer
		deps.events = kafka.NewSessionPublisher(producer, cfg.KafkaTopic)
	}

	return deps, nil
}

// close освобождает ресурсы в обратном порядке создания.
func (d *runtimeDependencies) close(logger *log.Entry) {
	closeKafka(d.kafka, logger)
	if d.grpc != nil {
		if err := d.grpc.Close(); err != nil {
			logger.WithError(err).Warn("failed to close grpc connection")
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
