package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/thep200/a11y-miner/cfg"
	"github.com/thep200/a11y-miner/internal/crawler"
	"github.com/thep200/a11y-miner/internal/metrics"
	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/internal/ui"
	"github.com/thep200/a11y-miner/pkg/db"
	"github.com/thep200/a11y-miner/pkg/log"
)

func runCrawl(cmd *cobra.Command, _ []string) error {
	loader, _ := cfg.NewViperLoader(configFile, watch)
	config, err := loader.Load()
	if err != nil {
		return err
	}
	if err := config.RequireCredentials(); err != nil {
		return err
	}
	logger, err := log.NewCslLogger(config.App.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var mysql *db.Mysql
	if config.Mysql.Enabled {
		mysql, _ = db.NewMysql(config)
		defer mysql.Close()
	}

	miner, err := crawler.FactoryMiner(ctx, logger, config, mysql, m)
	if err != nil {
		return err
	}
	loader.RegisterConfigChangeCallback(miner.Reconfigure)

	if config.Status.Enabled {
		var detections ui.DetectionLister
		if mysql != nil {
			detectionMd, _ := model.NewDetectionStore(logger, mysql)
			detections = detectionMd
		}
		handler := ui.NewHandler(logger, reg, miner.Session, detections)
		handler.Credentials = miner.Credentials
		server, _ := ui.NewServer(logger, handler, config.Status.Port)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error(ctx, "Status server failed: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Stop(shutdownCtx)
		}()
	}

	logger.Info(ctx, "Starting %s %s with %d credential(s)", config.App.Name, config.App.Version, len(config.GithubApi.Tokens))
	err = miner.Crawl(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info(ctx, "Stopped by signal, resume by running again")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info(ctx, "Successfully!")
	return nil
}
