package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	NLU       NLUConfig       `mapstructure:"nlu"`
	NER       NERConfig       `mapstructure:"ner"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Collector CollectorConfig `mapstructure:"collector"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int `mapstructure:"write_timeout"` // seconds
}

// NLUConfig drives the fast classifier tier and the escalation gate.
type NLUConfig struct {
	ClassifierURL           string  `mapstructure:"classifier_url"`
	FastConfidenceThreshold float64 `mapstructure:"fast_confidence_threshold"`
	AgenticFallbackEnabled  bool    `mapstructure:"agentic_fallback_enabled"`
	Timeout                 int     `mapstructure:"timeout"`                 // milliseconds
	IntentRefreshInterval   int     `mapstructure:"intent_refresh_interval"` // seconds
}

type NERConfig struct {
	URL           string `mapstructure:"url"`
	Timeout       int    `mapstructure:"timeout"`        // milliseconds
	ProbeInterval int    `mapstructure:"probe_interval"` // seconds
}

type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// SearchConfig selects the catalog backend used for entity resolution.
// Backend is either "http" (search service) or "elasticsearch".
type SearchConfig struct {
	URL        string `mapstructure:"url"`
	Backend    string `mapstructure:"backend"`
	Limit      int    `mapstructure:"limit"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	StoreIndex string `mapstructure:"store_index"`
	FoodIndex  string `mapstructure:"food_index"`
}

// CacheConfig controls the LLM extraction cache. Backend is "memory" or "redis".
type CacheConfig struct {
	Backend    string `mapstructure:"backend"`
	TTL        int    `mapstructure:"ttl"` // seconds
	MaxEntries int    `mapstructure:"max_entries"`
}

type CollectorConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
