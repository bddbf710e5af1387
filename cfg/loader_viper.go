package cfg

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	cfgIns     *Config
	cfgInsOnce sync.Once
	cfgMutex   sync.RWMutex
)

type ViperLoader struct {
	v                     *viper.Viper
	configFile            string
	watch                 bool
	configChangeCallbacks []func(*Config)
}

// NewViperLoader builds a loader for configFile; an empty path falls back to cfg/yaml/mode.yaml.
func NewViperLoader(configFile string, watch bool) (*ViperLoader, error) {
	return &ViperLoader{
		v:                     viper.New(),
		configFile:            configFile,
		watch:                 watch,
		configChangeCallbacks: make([]func(*Config), 0),
	}, nil
}

func (yl *ViperLoader) Load() (*Config, error) {
	var err error
	cfgInsOnce.Do(func() {
		err = yl.loadConfig()
		if err == nil && yl.IsWatchChange() {
			yl.v.OnConfigChange(func(e fsnotify.Event) {
				fmt.Printf("[INFO][CONFIG] Config file changed: %s\n", e.Name)
				if errReload := yl.reloadConfig(); errReload != nil {
					fmt.Printf("[ERROR][CONFIG] Failed to reload config: %v\n", errReload)
				}
			})
			yl.v.WatchConfig()
		}
	})

	if err != nil {
		return nil, err
	}

	cfgMutex.RLock()
	defer cfgMutex.RUnlock()
	return cfgIns, nil
}

func (yl *ViperLoader) IsWatchChange() bool {
	return yl.watch
}

func (yl *ViperLoader) RegisterConfigChangeCallback(callback func(*Config)) {
	cfgMutex.Lock()
	yl.configChangeCallbacks = append(yl.configChangeCallbacks, callback)
	cfgMutex.Unlock()
}

func (yl *ViperLoader) loadConfig() error {
	SetDefaults(yl.v)
	yl.v.SetEnvPrefix("MINER")
	yl.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	yl.v.AutomaticEnv()

	if yl.configFile != "" {
		yl.v.SetConfigFile(yl.configFile)
	} else {
		yl.v.AddConfigPath("cfg/yaml")
		yl.v.SetConfigName("mode")
		yl.v.SetConfigType("yaml")
	}
	if err := yl.v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || yl.configFile != "" {
			return fmt.Errorf("[ERROR][CONFIG] failed to read config file: %w", err)
		}
	}

	cfg, err := yl.unmarshal()
	if err != nil {
		return err
	}

	cfgMutex.Lock()
	cfgIns = cfg
	cfgMutex.Unlock()

	return nil
}

func (yl *ViperLoader) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := yl.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config: %w", err)
	}
	AttachTokens(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (yl *ViperLoader) reloadConfig() error {
	cfg, err := yl.unmarshal()
	if err != nil {
		return err
	}

	// Update the global instance
	cfgMutex.Lock()
	cfgIns = cfg

	// Notify all registered callbacks
	callbacks := make([]func(*Config), len(yl.configChangeCallbacks))
	copy(callbacks, yl.configChangeCallbacks)
	cfgMutex.Unlock()
	for _, callback := range callbacks {
		callback(cfg)
	}

	fmt.Println("[INFO][CONFIG] Configuration reloaded successfully")
	return nil
}

// SetDefaults registers every key with its default so env overrides and partial files work.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "a11y-miner")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.logLevel", "info")

	v.SetDefault("githubApi.restUrl", "https://api.github.com")
	v.SetDefault("githubApi.graphqlUrl", "https://api.github.com/graphql")
	v.SetDefault("githubApi.requestTimeoutSec", 30)
	v.SetDefault("githubApi.requestsPerSecond", 5.0)
	v.SetDefault("githubApi.burst", 1)
	v.SetDefault("githubApi.maxAttempts", 3)
	v.SetDefault("githubApi.quotaThreshold", 100)

	v.SetDefault("crawl.queries", []string{"accessibility", "a11y", "web app", "website"})
	v.SetDefault("crawl.cutoffDate", "2024-01-01")
	v.SetDefault("crawl.perPage", 50)
	v.SetDefault("crawl.maxPages", 20)
	v.SetDefault("crawl.minPageYield", 10)
	v.SetDefault("crawl.pageDelayMs", 2000)
	v.SetDefault("crawl.queryDelayMs", 5000)
	v.SetDefault("crawl.skipForks", true)
	v.SetDefault("crawl.skipArchived", true)
	v.SetDefault("crawl.minStars", 0)

	v.SetDefault("output.ledgerPath", "data/repositories.csv")
	v.SetDefault("output.statePath", "data/crawl_state.json")
	v.SetDefault("output.processedPath", "data/processed_repos.json")
	v.SetDefault("output.trueToken", "Sim")
	v.SetDefault("output.falseToken", "Não")

	v.SetDefault("mysql.enabled", false)
	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.database", "a11y_miner")
	v.SetDefault("mysql.maxIdleConnection", 5)
	v.SetDefault("mysql.maxOpenConnection", 10)
	v.SetDefault("mysql.maxLifeTimeConnection", 3600)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topicDetection", "a11y-detections")
	v.SetDefault("kafka.consumerGroup", "a11y-detection-consumer")

	v.SetDefault("status.enabled", false)
	v.SetDefault("status.port", 9464)
}
