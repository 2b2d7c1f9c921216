package stub

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/vladislavdragonenkov/smartmeal/internal/api/grpcapi"
	healthcheck "github.com/vladislavdragonenkov/smartmeal/internal/health"
	"github.com/vladislavdragonenkov/smartmeal/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Config описывает адреса stub-сервера. Пустой адрес отключает соответствующий транспорт.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	Credentials Credentials
}

// DefaultConfig возвращает адреса по умолчанию.
func DefaultConfig() Config {
	return Config{
		HTTPAddr: ":8080",
		GRPCAddr: ":50051",
	}
}

// NewGRPCServer собирает gRPC-сервер с сервисом меню, метриками, reflection и health.
func NewGRPCServer(catalog *Catalog, logger *log.Entry) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = log.New().WithField("component", "menu-stub")
	}
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok2 := are.ExistingCollector.(*promgrpc.ServerMetrics); ok2 {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	server := grpc.NewServer(
		grpcapi.ServerCodec(),
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
	)
	grpcapi.RegisterMenuServiceServer(server, NewMenuService(catalog, logger.WithField("layer", "grpc")))
	grpcMetrics.InitializeMetrics(server)
	reflection.Register(server)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(grpcapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return server, healthServer
}

// NewRouter собирает HTTP-маршруты: командный API, /metrics и health-пробы.
func NewRouter(catalog *Catalog, creds Credentials, logger *log.Entry) http.Handler {
	if logger == nil {
		logger = log.New().WithField("component", "menu-stub")
	}
	healthHandler := healthcheck.NewHandler(version.Version())
	healthHandler.RegisterChecker("catalog", healthcheck.NewSimpleChecker("catalog", func(context.Context) error {
		if len(catalog.Items()) == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	}))

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler.ServeHTTP)
	r.Get("/livez", healthcheck.LivenessHandler)
	r.Get("/readyz", healthHandler.ReadinessHandler)
	r.Mount("/", NewHTTPHandler(catalog, creds, logger.WithField("layer", "http")))
	return r
}

// Run запускает включённые транспорты и блокируется до отмены ctx или ошибки сервера.
func Run(ctx context.Context, cfg Config, catalog *Catalog, logger *log.Entry) error {
	if logger == nil {
		logger = log.New().WithField("component", "menu-stub")
	}
	if cfg.HTTPAddr == "" && cfg.GRPCAddr == "" {
		return errors.New("at least one of HTTP or gRPC address must be set")
	}

	errCh := make(chan error, 2)

	var grpcServer *grpc.Server
	var healthServer *health.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		grpcServer, healthServer = NewGRPCServer(catalog, logger)
		go func() {
			logger.Infof("gRPC сервер слушает %s", cfg.GRPCAddr)
			errCh <- grpcServer.Serve(lis)
		}()
	}

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           NewRouter(catalog, cfg.Credentials, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Infof("HTTP сервер слушает %s", cfg.HTTPAddr)
			errCh <- httpServer.ListenAndServe()
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем stub")
	case runErr = <-errCh:
		if errors.Is(runErr, grpc.ErrServerStopped) || errors.Is(runErr, http.ErrServerClosed) {
			runErr = nil
		}
	}

	if grpcServer != nil {
		stopGRPC(grpcServer, healthServer, logger)
	}
	shutdownHTTP(httpServer, logger)

	logger.WithField("orders", len(catalog.Orders())).Info("menu stub stopped")
	return runErr
}

func stopGRPC(server *grpc.Server, healthServer *health.Server, logger *log.Entry) {
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	stoppedCh := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stoppedCh)
	}()
	select {
	case <-stoppedCh:
	case <-time.After(shutdownTimeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		server.Stop()
	}
}

func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
