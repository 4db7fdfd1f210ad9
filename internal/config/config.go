package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/codegraphhq/codegraph/pkg/types"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Neo4j     Neo4jConfig     `mapstructure:"neo4j"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Neo4jConfig holds graph store configuration
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// QdrantConfig holds vector index configuration
type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	Collection string `mapstructure:"collection"`
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"` // openai, ollama, local
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
	APIKey     string `mapstructure:"api_key"`
	Host       string `mapstructure:"host"`
	CacheSize  int    `mapstructure:"cache_size"`
}

// ChatConfig holds answer-synthesis model configuration
type ChatConfig struct {
	Provider string `mapstructure:"provider"` // none, openai, ollama
	Model    string `mapstructure:"model"`
	Host     string `mapstructure:"host"`
	APIKey   string `mapstructure:"api_key"`
}

// IngestConfig holds ingestion defaults
type IngestConfig struct {
	ChunkChars int `mapstructure:"chunk_chars"`
	Overlap    int `mapstructure:"overlap"` // -1 selects 20% of chunk_chars
	Workers    int `mapstructure:"workers"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Neo4j: Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Password: "neo4j",
			Database: "neo4j",
		},
		Qdrant: QdrantConfig{
			Host:       "http://localhost:6333",
			Collection: "codegraph",
		},
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			Model:      "nomic-embed-text",
			Dimensions: 768,
			Host:       "http://localhost:11434",
			CacheSize:  10000,
		},
		Chat: ChatConfig{
			Provider: "ollama",
			Model:    "qwen2.5:7b",
			Host:     "http://localhost:11434",
		},
		Ingest: IngestConfig{
			ChunkChars: 800,
			Overlap:    -1,
			Workers:    4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".codegraph"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("CODEGRAPH")
	v.AutomaticEnv()

	for key, env := range map[string]string{
		"server.host":          "CODEGRAPH_SERVER_HOST",
		"server.port":          "CODEGRAPH_SERVER_PORT",
		"neo4j.uri":            "CODEGRAPH_NEO4J_URI",
		"neo4j.username":       "CODEGRAPH_NEO4J_USERNAME",
		"neo4j.password":       "CODEGRAPH_NEO4J_PASSWORD",
		"neo4j.database":       "CODEGRAPH_NEO4J_DATABASE",
		"qdrant.host":          "CODEGRAPH_QDRANT_HOST",
		"qdrant.collection":    "CODEGRAPH_QDRANT_COLLECTION",
		"embedding.provider":   "CODEGRAPH_EMBEDDING_PROVIDER",
		"embedding.model":      "CODEGRAPH_EMBEDDING_MODEL",
		"embedding.dimensions": "CODEGRAPH_EMBEDDING_DIMENSIONS",
		"embedding.api_key":    "CODEGRAPH_EMBEDDING_API_KEY",
		"embedding.host":       "CODEGRAPH_EMBEDDING_HOST",
		"chat.provider":        "CODEGRAPH_CHAT_PROVIDER",
		"chat.model":           "CODEGRAPH_CHAT_MODEL",
		"chat.host":            "CODEGRAPH_CHAT_HOST",
		"chat.api_key":         "CODEGRAPH_CHAT_API_KEY",
		"ingest.chunk_chars":   "CODEGRAPH_INGEST_CHUNK_CHARS",
		"ingest.overlap":       "CODEGRAPH_INGEST_OVERLAP",
		"ingest.workers":       "CODEGRAPH_INGEST_WORKERS",
		"logging.level":        "CODEGRAPH_LOG_LEVEL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || configPath != "" {
			return nil, err
		}
		// no config file in the search path, defaults apply
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail much later at runtime.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", types.ErrInvalidConfig, c.Server.Port)
	}
	if c.Neo4j.URI == "" {
		return fmt.Errorf("%w: neo4j uri is required", types.ErrInvalidConfig)
	}
	if c.Qdrant.Host == "" || c.Qdrant.Collection == "" {
		return fmt.Errorf("%w: qdrant host and collection are required", types.ErrInvalidConfig)
	}
	switch c.Embedding.Provider {
	case "openai", "ollama", "local":
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", types.ErrInvalidConfig, c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding dimensions must be positive", types.ErrInvalidConfig)
	}
	switch c.Chat.Provider {
	case "", "none", "openai", "ollama":
	default:
		return fmt.Errorf("%w: unknown chat provider %q", types.ErrInvalidConfig, c.Chat.Provider)
	}
	// 0 is allowed and selects the chunker default.
	if c.Ingest.ChunkChars < 0 {
		return fmt.Errorf("%w: chunk_chars cannot be negative", types.ErrInvalidConfig)
	}
	return nil
}
