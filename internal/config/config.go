package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Topic sources. Exactly one is used per run.
const (
	SourceStatic = "static"
	SourceFeed   = "feed"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr   string
	ElasticsearchIndex  string
	ElasticsearchAPIKey string
}

// Generator holds configuration for one newsletter run.
type Generator struct {
	Common
	GeminiAPIKey   string
	GeminiBaseURL  string
	GeminiModel    string
	GeminiTimeout  time.Duration
	TopicSource    string
	TopicCount     int
	WordCount      int
	ExcerptLimit   int
	PagePath       string
	StrictPage     bool
	PersistEnabled bool
	ContentFile    string
	FeedTimeout    time.Duration
	RetryAttempts  int
	RetryBackoff   time.Duration
	KafkaBrokers   []string
	KafkaTopic     string
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr    string
	DefaultPage int
	MaxPage     int
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:   getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex:  getEnv("ELASTICSEARCH_INDEX", "newsletter_articles"),
		ElasticsearchAPIKey: getEnv("ELASTICSEARCH_API_KEY", ""),
	}
}

// LoadGenerator builds a Generator config from environment variables.
func LoadGenerator() (*Generator, error) {
	c := &Generator{
		Common:         loadCommon(),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:  getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTimeout:  getDuration("GEMINI_TIMEOUT", "90s"),
		TopicSource:    strings.ToLower(getEnv("TOPIC_SOURCE", SourceStatic)),
		TopicCount:     getInt("TOPIC_COUNT", 3),
		WordCount:      getInt("ARTICLE_WORD_COUNT", 400),
		ExcerptLimit:   getInt("EXCERPT_LIMIT", 300),
		PagePath:       getEnv("NEWSLETTER_PAGE", "public/newsletter.html"),
		StrictPage:     getBool("PAGE_STRICT", true),
		PersistEnabled: getBool("PERSIST_ENABLED", true),
		ContentFile:    getEnv("CONTENT_FILE", ""),
		FeedTimeout:    getDuration("FEED_TIMEOUT", "20s"),
		RetryAttempts:  getInt("GENERATOR_RETRY_ATTEMPTS", 3),
		RetryBackoff:   getDuration("GENERATOR_RETRY_BACKOFF", "60s"),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "newsletter_articles"),
	}

	if c.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.TopicSource != SourceStatic && c.TopicSource != SourceFeed {
		return nil, fmt.Errorf("TOPIC_SOURCE must be %q or %q", SourceStatic, SourceFeed)
	}
	if c.TopicCount <= 0 {
		return nil, fmt.Errorf("TOPIC_COUNT must be positive")
	}
	if c.WordCount <= 0 {
		return nil, fmt.Errorf("ARTICLE_WORD_COUNT must be positive")
	}
	if c.ExcerptLimit <= 0 {
		return nil, fmt.Errorf("EXCERPT_LIMIT must be positive")
	}
	if c.RetryAttempts <= 0 {
		return nil, fmt.Errorf("GENERATOR_RETRY_ATTEMPTS must be positive")
	}
	if c.RetryBackoff < 0 {
		return nil, fmt.Errorf("GENERATOR_RETRY_BACKOFF cannot be negative")
	}
	if strings.TrimSpace(c.PagePath) == "" {
		return nil, fmt.Errorf("NEWSLETTER_PAGE cannot be empty")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:      loadCommon(),
		BindAddr:    getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultPage: getInt("API_PAGE_SIZE", 20),
		MaxPage:     getInt("API_MAX_PAGE_SIZE", 100),
	}

	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "2160h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
