package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/thep200/a11y-miner/cfg"
	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/internal/ui"
	"github.com/thep200/a11y-miner/pkg/db"
	"github.com/thep200/a11y-miner/pkg/log"
)

func main() {
	configFile := flag.String("config", "", "Config file (default cfg/yaml/mode.yaml)")
	port := flag.Int("port", 8080, "Port for the UI server to listen on")
	flag.Parse()

	// Setup dependencies
	ctx := context.Background()
	loader, _ := cfg.NewViperLoader(*configFile, false)
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := log.NewCslLogger(config.App.LogLevel)
	mysql, _ := db.NewMysql(config)
	defer mysql.Close()
	detectionMd, _ := model.NewDetectionStore(logger, mysql)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Không có crawl nào trong process này nên /status trả 503
	handler := ui.NewHandler(logger, reg, nil, detectionMd)
	server, err := ui.NewServer(logger, handler, *port)
	if err != nil {
		logger.Error(ctx, "Failed to create server: %v", err)
		os.Exit(1)
	}

	go func() {
		logger.Info(ctx, "Starting UI server on port %d", *port)
		if err := server.Start(); err != nil {
			logger.Error(ctx, "Server failed to start: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during server shutdown: %v", err)
	}
	logger.Info(ctx, "Server shut down gracefully")
}
