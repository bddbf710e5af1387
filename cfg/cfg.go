package cfg

import "time"

type (
	App struct {
		Name     string
		Version  string
		LogLevel string
	}

	GithubApi struct {
		Tokens            []string `mapstructure:"-"`
		RestUrl           string
		GraphqlUrl        string
		RequestTimeoutSec int
		RequestsPerSecond float64
		Burst             int
		MaxAttempts       int
		QuotaThreshold    int
	}

	Crawl struct {
		Queries      []string
		CutoffDate   string
		PerPage      int
		MaxPages     int
		MinPageYield int
		PageDelayMs  int
		QueryDelayMs int
		SkipForks    bool
		SkipArchived bool
		MinStars     int
	}

	Output struct {
		LedgerPath    string
		StatePath     string
		ProcessedPath string
		TrueToken     string
		FalseToken    string
	}

	Mysql struct {
		Enabled               bool
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	Kafka struct {
		Enabled        bool
		Brokers        []string
		TopicDetection string
		ConsumerGroup  string
	}

	Status struct {
		Enabled bool
		Port    int
	}
)

type Config struct {
	App       App
	GithubApi GithubApi
	Crawl     Crawl
	Output    Output
	Mysql     Mysql
	Kafka     Kafka
	Status    Status
}

const cutoffLayout = "2006-01-02"

// Cutoff parses CutoffDate as a UTC day.
func (c Crawl) Cutoff() (time.Time, error) {
	return time.ParseInLocation(cutoffLayout, c.CutoffDate, time.UTC)
}

func (c Crawl) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMs) * time.Millisecond
}

func (c Crawl) QueryDelay() time.Duration {
	return time.Duration(c.QueryDelayMs) * time.Millisecond
}

func (g GithubApi) RequestTimeout() time.Duration {
	return time.Duration(g.RequestTimeoutSec) * time.Second
}
