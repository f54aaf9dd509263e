package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic application metadata.
type AppInfo struct {
	Name        string `yaml:"name"`        // application name
	Version     string `yaml:"version"`     // application version
	Environment string `yaml:"environment"` // e.g. "development", "production"
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"` // listen address, e.g. ":8080"
}

// LoggerConfig holds the logger settings.
type LoggerConfig struct {
	Level string `yaml:"level"` // log level: "debug", "info", "warn", "error"
}

// MySQLConfig holds the MySQL connection settings.
type MySQLConfig struct {
	Address         string `yaml:"address"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // seconds
}

// RedisConfig holds the Redis connection settings. Redis is optional; it is
// only used to cache embedding vectors.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLHours int    `yaml:"ttlHours"` // cache entry lifetime, 0 means no expiry
}

// MinIOConfig holds the MinIO object storage settings.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// MilvusConfig holds the Milvus connection and collection settings.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
	Dim        int    `yaml:"dim"` // embedding dimension, fixed per collection
}

// VectorStoreConfig selects the vector index backend.
type VectorStoreConfig struct {
	Provider string `yaml:"provider"` // "milvus" or "memory"
}

// EmbeddingConfig holds the embedding model settings.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "openai" or "ollama"
	APIKey   string `yaml:"apiKey"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"baseURL"` // only used by the ollama provider
}

// LLMConfig holds the generation model settings.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "ollama"
	APIKey   string `yaml:"apiKey"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"baseURL"` // only used by the ollama provider
}

// RAGConfig holds the chunking and retrieval parameters.
type RAGConfig struct {
	ChunkSize    int `yaml:"chunkSize"`    // max chunk length in characters
	ChunkOverlap int `yaml:"chunkOverlap"` // carried-over tail between chunks
	TopK         int `yaml:"topK"`         // retrieval result count
}

// UploadConfig holds the upload storage settings.
type UploadConfig struct {
	Provider string `yaml:"provider"` // "local" or "minio"
	Dir      string `yaml:"dir"`      // local storage directory
	Workers  int    `yaml:"workers"`  // ingestion worker count
	Queue    int    `yaml:"queue"`    // ingestion queue capacity
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App         AppInfo           `yaml:"app"`
	Server      ServerConfig      `yaml:"server"`
	Logger      LoggerConfig      `yaml:"logger"`
	MySQL       MySQLConfig       `yaml:"mysql"`
	Redis       RedisConfig       `yaml:"redis"`
	MinIO       MinIOConfig       `yaml:"minio"`
	Milvus      MilvusConfig      `yaml:"milvus"`
	VectorStore VectorStoreConfig `yaml:"vectorStore"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	LLM         LLMConfig         `yaml:"llm"`
	RAG         RAGConfig         `yaml:"rag"`
	Upload      UploadConfig      `yaml:"upload"`
}

// LoadConfig reads and parses the YAML configuration file at path,
// applying defaults for unset RAG and upload parameters.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = 1000
	}
	if c.RAG.ChunkOverlap <= 0 {
		c.RAG.ChunkOverlap = 200
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = 5
	}
	if c.Upload.Provider == "" {
		c.Upload.Provider = "local"
	}
	if c.Upload.Dir == "" {
		c.Upload.Dir = "uploads"
	}
	if c.Upload.Workers <= 0 {
		c.Upload.Workers = 2
	}
	if c.Upload.Queue <= 0 {
		c.Upload.Queue = 64
	}
	if c.VectorStore.Provider == "" {
		c.VectorStore.Provider = "milvus"
	}
}
