// Package config loads the concierge configuration: a JSON config file
// merged with CONCIERGE_* environment variables. All sections have working
// defaults so the binary starts with no config file at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the concierge service.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	WebSearch WebSearchConfig `mapstructure:"web_search"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Trip      TripConfig      `mapstructure:"trip"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// ProvidersConfig lists model providers. Only OpenAI is wired today.
type ProvidersConfig struct {
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

// OpenAIConfig configures the chat and embedding calls.
type OpenAIConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	ChatModel       string        `mapstructure:"chat_model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether the provider can be constructed at all.
func (o OpenAIConfig) Enabled() bool {
	return strings.TrimSpace(o.APIKey) != ""
}

// WebSearchConfig selects the web search provider used to supplement
// catalog retrieval for destinations we have no data on.
type WebSearchConfig struct {
	Provider   string `mapstructure:"provider"` // serper or brave
	APIKey     string `mapstructure:"api_key"`
	MaxResults int    `mapstructure:"max_results"`
}

func (w WebSearchConfig) Enabled() bool {
	return strings.TrimSpace(w.APIKey) != ""
}

// RetrievalConfig tunes the context lookup.
type RetrievalConfig struct {
	TopK                int     `mapstructure:"top_k"`
	ConversationTopK    int     `mapstructure:"conversation_top_k"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

func (r RetrievalConfig) Validate() error {
	if r.SimilarityThreshold < 0 || r.SimilarityThreshold > 1 {
		return fmt.Errorf("retrieval.similarity_threshold must be within [0,1]")
	}
	if r.TopK < 0 || r.ConversationTopK < 0 {
		return fmt.Errorf("retrieval top_k values must be >= 0")
	}
	return nil
}

// TripConfig tunes itinerary pricing rules.
type TripConfig struct {
	DefaultNights int `mapstructure:"default_nights"`
}

func (t TripConfig) Validate() error {
	if t.DefaultNights < 0 {
		return fmt.Errorf("trip.default_nights must be >= 0")
	}
	return nil
}

// StorageConfig contains the session and booking persistence settings.
type StorageConfig struct {
	Sessions SessionsConfig `mapstructure:"sessions"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// SessionsConfig selects the live-session backend.
type SessionsConfig struct {
	Backend string `mapstructure:"backend"` // inmemory or redis
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Addr) == "" {
		return nil
	}
	if !strings.Contains(r.Addr, ":") {
		return fmt.Errorf("storage.redis.addr must be host:port")
	}
	return nil
}

// PostgresConfig contains booking-store connection settings. An empty
// config means bookings stay in process memory.
type PostgresConfig struct {
	URL     string `mapstructure:"url"`
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
	DBName  string `mapstructure:"dbname"`
	SSLMode string `mapstructure:"sslmode"`
}

// Enabled reports whether a Postgres target is configured at all.
func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.URL) != "" || strings.TrimSpace(p.Host) != ""
}

// DSN assembles the connection string.
func (p PostgresConfig) DSN() string {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Pass, p.Host, p.Port, p.DBName, ssl)
}

func (p PostgresConfig) Validate() error {
	if !p.Enabled() || strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Port) == "" {
		return fmt.Errorf("storage.postgres.port required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// LoadConfig loads config from file, falling back to defaults plus
// environment overrides when no file is present.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("general.default_timeout", "60s")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("providers.openai.chat_model", "gpt-4o-mini")
	v.SetDefault("providers.openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("providers.openai.temperature", 0.7)
	v.SetDefault("providers.openai.max_tokens", 1000)
	v.SetDefault("providers.openai.timeout", "60s")
	v.SetDefault("web_search.provider", "serper")
	v.SetDefault("web_search.max_results", 3)
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.conversation_top_k", 10)
	v.SetDefault("retrieval.similarity_threshold", 0.3)
	v.SetDefault("trip.default_nights", 3)
	v.SetDefault("storage.sessions.backend", "inmemory")

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		v.AddConfigPath(exeDir)
		v.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("CONCIERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Retrieval.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Trip.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.Redis.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.Postgres.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
