package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (yl *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:     "a11y-miner",
			Version:  "0.0.1",
			LogLevel: "debug",
		},

		// GithubApi
		GithubApi: GithubApi{
			Tokens:            []string{"test-token"},
			RestUrl:           "https://api.github.com",
			GraphqlUrl:        "https://api.github.com/graphql",
			RequestTimeoutSec: 5,
			RequestsPerSecond: 1000,
			Burst:             10,
			MaxAttempts:       3,
			QuotaThreshold:    100,
		},

		// Crawl
		Crawl: Crawl{
			Queries:      []string{"accessibility audit tool"},
			CutoffDate:   "2024-01-01",
			PerPage:      50,
			MaxPages:     3,
			MinPageYield: 10,
			SkipForks:    true,
			SkipArchived: true,
		},

		// Output
		Output: Output{
			LedgerPath:    "repositories.csv",
			StatePath:     "crawl_state.json",
			ProcessedPath: "processed_repos.json",
			TrueToken:     "Sim",
			FalseToken:    "Não",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "a11y_miner",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// Kafka
		Kafka: Kafka{
			Brokers:        []string{"127.0.0.1:9092"},
			TopicDetection: "a11y-detections",
			ConsumerGroup:  "a11y-detection-consumer",
		},
	}, nil
}
