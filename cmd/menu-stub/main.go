package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/smartmeal/internal/stub"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	defaults := stub.DefaultConfig()
	var (
		cfg         stub.Config
		catalogPath string
	)
	flag.StringVar(&cfg.HTTPAddr, "http-addr", defaults.HTTPAddr, "HTTP listen address (empty disables HTTP)")
	flag.StringVar(&cfg.GRPCAddr, "grpc-addr", defaults.GRPCAddr, "gRPC listen address (empty disables gRPC)")
	flag.StringVar(&cfg.Credentials.Username, "username", os.Getenv("SMARTMEAL_API_USERNAME"), "Basic auth username (empty disables auth)")
	flag.StringVar(&cfg.Credentials.Password, "password", os.Getenv("SMARTMEAL_API_PASSWORD"), "Basic auth password")
	flag.StringVar(&catalogPath, "catalog", "", "path to JSON catalog ({\"menuItems\": [...]}); built-in sample if empty")
	flag.Parse()

	catalog, err := loadCatalog(catalogPath)
	if err != nil {
		fail("load catalog: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.WithField("component", "menu-stub")
	logger.WithFields(log.Fields{
		"http_addr": cfg.HTTPAddr,
		"grpc_addr": cfg.GRPCAddr,
		"items":     len(catalog.Items()),
	}).Info("запускаем menu stub")

	if err := stub.Run(ctx, cfg, catalog, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("menu stub завершился с ошибкой")
	}
}

func loadCatalog(path string) (*stub.Catalog, error) {
	if path == "" {
		return stub.SampleCatalog(), nil
	}
	return stub.LoadCatalog(path)
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
