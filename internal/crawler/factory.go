package crawler

import (
	"context"
	"fmt"

	"github.com/thep200/a11y-miner/cfg"
	"github.com/thep200/a11y-miner/internal/catalog"
	"github.com/thep200/a11y-miner/internal/classify"
	"github.com/thep200/a11y-miner/internal/credential"
	"github.com/thep200/a11y-miner/internal/detect"
	githubapi "github.com/thep200/a11y-miner/internal/github_api"
	"github.com/thep200/a11y-miner/internal/ledger"
	"github.com/thep200/a11y-miner/internal/metrics"
	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/internal/search"
	"github.com/thep200/a11y-miner/internal/store"
	"github.com/thep200/a11y-miner/pkg/db"
	"github.com/thep200/a11y-miner/pkg/kafka"
	"github.com/thep200/a11y-miner/pkg/log"
)

// FactoryMiner wires a Miner against the real GitHub API from config. mysql
// may be nil when the mirror is disabled.
func FactoryMiner(ctx context.Context, logger log.Logger, config *cfg.Config, mysql *db.Mysql, m *metrics.Metrics) (*Miner, error) {
	pool, err := credential.NewPool(config.GithubApi.Tokens)
	if err != nil {
		return nil, err
	}
	caller := githubapi.NewCaller(logger, config, pool, m)
	c := catalog.Default()

	driver, err := search.NewDriver(logger, config, caller, m)
	if err != nil {
		return nil, err
	}
	miner, err := NewMiner(logger, config, c)
	if err != nil {
		return nil, err
	}
	miner.Search = driver
	miner.Classifier = classify.NewClassifier(logger)
	miner.Detector = detect.NewDetector(logger, c)
	miner.Source = caller
	miner.Credentials = pool.Snapshot
	miner.Metrics = m
	miner.Ledger = ledger.New(config.Output.LedgerPath, c.Names(), config.Output.TrueToken, config.Output.FalseToken)
	miner.State = store.NewStateStore(config.Output.StatePath)
	miner.Processed = store.NewProcessedStore(config.Output.ProcessedPath)

	sinks, err := buildSinks(ctx, logger, config, mysql)
	if err != nil {
		return nil, err
	}
	miner.Sinks = sinks
	return miner, nil
}

func buildSinks(ctx context.Context, logger log.Logger, config *cfg.Config, mysql *db.Mysql) ([]Sink, error) {
	var sinks []Sink

	if config.Mysql.Enabled && mysql != nil {
		detectionMd, _ := model.NewDetectionStore(logger, mysql)
		if err := mysql.Migrate(&model.Detection{}); err != nil {
			return nil, fmt.Errorf("migrate detections: %w", err)
		}
		sinks = append(sinks, NewMirrorSink(detectionMd))
		logger.Info(ctx, "Mirroring detections into MySQL database %s", config.Mysql.Database)
	}

	if config.Kafka.Enabled {
		producer, err := kafka.NewProducer(config.Kafka.Brokers, config.Kafka.TopicDetection, logger)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		sinks = append(sinks, NewEventSink(producer))
		logger.Info(ctx, "Publishing detections to Kafka topic %s", config.Kafka.TopicDetection)
	}
	return sinks, nil
}
