package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/smartmeal/internal/health"
	"github.com/vladislavdragonenkov/smartmeal/internal/metrics"
	"github.com/vladislavdragonenkov/smartmeal/internal/version"
	"github.com/vladislavdragonenkov/smartmeal/internal/workflow"
)

const shutdownTimeout = 5 * time.Second

// Run собирает зависимости, проводит одну сессию оформления заказа и освобождает ресурсы.
// Ошибка возвращается только при сбое подготовки; исход самой сессии: в Outcome.
func Run(ctx context.Context, cfg Config, console workflow.Console, logger *log.Entry) (workflow.Outcome, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if err := cfg.Validate(); err != nil {
		return workflow.Outcome{}, fmt.Errorf("invalid config: %w", err)
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return workflow.Outcome{}, err
	}
	defer deps.close(logger)

	sessionMetrics := metrics.NewSessionMetrics()

	if cfg.MetricsAddr != "" {
		healthHandler := healthcheck.NewHandler(version.Version())
		if deps.store != nil {
			healthHandler.RegisterChecker("storage", healthcheck.NewPingChecker("storage", deps.store))
		}
		lis, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			return workflow.Outcome{}, fmt.Errorf("listen metrics %s: %w", cfg.MetricsAddr, err)
		}
		defer shutdownHTTP(startMetricsServer(lis, logger, healthHandler), logger)
	}

	opts := []workflow.Option{workflow.WithMetrics(sessionMetrics)}
	if deps.events != nil {
		opts = append(opts, workflow.WithEvents(deps.events))
	}

	logger.WithFields(log.Fields{
		"transport": cfg.Transport,
		"storage":   cfg.StorageDriver,
		"kafka":     deps.events != nil,
	}).Info("запускаем сессию оформления заказа")

	session := workflow.NewSession(deps.api, deps.repo, console, logger.WithField("component", "session"), opts...)
	outcome := session.Run(ctx)

	logger.WithFields(log.Fields{
		"state":    outcome.State,
		"order_id": outcome.OrderID,
	}).Info("сессия завершена")

	return outcome, nil
}

// startMetricsServer обслуживает /metrics и health-пробы на уже открытом listener.
func startMetricsServer(lis net.Listener, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	healthHandler.Mount(mux)

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", lis.Addr())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
