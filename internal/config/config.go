package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DataConfig locates the corpus and the ingestion report.
type DataConfig struct {
	PDFDir      string `yaml:"pdf_dir"`
	FailedFiles string `yaml:"failed_files"`
}

// ChunkerConfig configures the character-window chunker. Sizes are in tokens.
type ChunkerConfig struct {
	ChunkSizeTokens int `yaml:"chunk_size_tokens"`
	OverlapTokens   int `yaml:"overlap_tokens"`
	MinChunkTokens  int `yaml:"min_chunk_tokens"`
	CharsPerToken   int `yaml:"chars_per_token"`
}

// IndexerConfig configures the reindex job.
type IndexerConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// OllamaEmbedderConfig holds configuration for the Ollama embedder.
type OllamaEmbedderConfig struct {
	Host        string `yaml:"host"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	Ollama    *OllamaEmbedderConfig `yaml:"ollama,omitempty"`
}

// BoltConfig locates the on-disk index.
type BoltConfig struct {
	Path string `yaml:"path"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type       string        `yaml:"type"`
	Collection string        `yaml:"collection"`
	Bolt       *BoltConfig   `yaml:"bolt,omitempty"`
	Qdrant     *QdrantConfig `yaml:"qdrant,omitempty"`
}

// TEIConfig points at a text-embeddings-inference rerank server.
type TEIConfig struct {
	URL         string `yaml:"url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RerankerConfig selects the cross-encoder.
type RerankerConfig struct {
	Type string     `yaml:"type"`
	TEI  *TEIConfig `yaml:"tei,omitempty"`
}

// OpenAIGeneratorConfig holds the chat completions endpoint.
type OpenAIGeneratorConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// OllamaGeneratorConfig holds the Ollama server address.
type OllamaGeneratorConfig struct {
	Host string `yaml:"host"`
}

// GeneratorConfig selects and configures answer generation.
// Type "none" disables generation.
type GeneratorConfig struct {
	Type              string                 `yaml:"type"`
	Model             string                 `yaml:"model"`
	Temperature       float64                `yaml:"temperature"`
	MaxTokens         int                    `yaml:"max_tokens"`
	TimeoutSecs       int                    `yaml:"timeout_secs"`
	MaxRetries        int                    `yaml:"max_retries"`
	RetryDelayMillis  int                    `yaml:"retry_delay_millis"`
	RequestsPerMinute int                    `yaml:"requests_per_minute"`
	OpenAI            *OpenAIGeneratorConfig `yaml:"openai,omitempty"`
	Ollama            *OllamaGeneratorConfig `yaml:"ollama,omitempty"`
}

// QueryConfig holds the query-time limits.
type QueryConfig struct {
	SearchTopK        int     `yaml:"search_top_k"`
	RerankTopK        int     `yaml:"rerank_top_k"`
	DistanceThreshold float64 `yaml:"distance_threshold"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Data        DataConfig        `yaml:"data"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Indexer     IndexerConfig     `yaml:"indexer"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Reranker    RerankerConfig    `yaml:"reranker"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Query       QueryConfig       `yaml:"query"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/pdfsearch/config.yaml.
// If neither exists, it writes defaults to ~/.config/pdfsearch/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings no component can run with.
func (c *AppConfig) Validate() error {
	var errs []error
	ch := c.Chunker
	if ch.ChunkSizeTokens <= 0 || ch.MinChunkTokens <= 0 || ch.CharsPerToken <= 0 {
		errs = append(errs, errors.New("chunker sizes must be positive"))
	}
	if ch.OverlapTokens < 0 || ch.OverlapTokens >= ch.ChunkSizeTokens {
		errs = append(errs, fmt.Errorf("chunker overlap %d must be in [0, %d)", ch.OverlapTokens, ch.ChunkSizeTokens))
	}
	if c.Indexer.BatchSize <= 0 {
		errs = append(errs, errors.New("indexer batch_size must be positive"))
	}
	if c.Query.SearchTopK <= 0 || c.Query.RerankTopK <= 0 {
		errs = append(errs, errors.New("query top_k values must be positive"))
	}
	if c.Query.DistanceThreshold <= 0 {
		errs = append(errs, errors.New("query distance_threshold must be positive"))
	}
	if err := oneOf("embedder.type", c.Embedder.Type, "hashing", "openai", "ollama"); err != nil {
		errs = append(errs, err)
	}
	if err := oneOf("vector_store.type", c.VectorStore.Type, "bolt", "memory", "qdrant"); err != nil {
		errs = append(errs, err)
	}
	if err := oneOf("reranker.type", c.Reranker.Type, "lexical", "tei"); err != nil {
		errs = append(errs, err)
	}
	if c.Reranker.Type == "tei" && (c.Reranker.TEI == nil || c.Reranker.TEI.URL == "") {
		errs = append(errs, errors.New("reranker.tei.url is required for the tei reranker"))
	}
	if err := oneOf("generator.type", c.Generator.Type, "openai", "ollama", "none"); err != nil {
		errs = append(errs, err)
	}
	if err := oneOf("log.format", c.Log.Format, "text", "json"); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s %q is not one of %s", field, value, strings.Join(allowed, ", "))
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pdfsearch", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Data:        DataConfig{PDFDir: filepath.Join("data", "pdfs"), FailedFiles: filepath.Join("data", "failed_files.txt")},
		Chunker:     ChunkerConfig{ChunkSizeTokens: 512, OverlapTokens: 50, MinChunkTokens: 50, CharsPerToken: 4},
		Indexer:     IndexerConfig{BatchSize: 100},
		Embedder:    EmbedderConfig{Type: "hashing"},
		VectorStore: VectorStoreConfig{Type: "bolt"},
		Reranker:    RerankerConfig{Type: "lexical"},
		Generator:   GeneratorConfig{Type: "openai"},
		Log:         LogConfig{Level: "info", Format: "text"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Data.PDFDir == "" {
		cfg.Data.PDFDir = filepath.Join("data", "pdfs")
	}
	if cfg.Data.FailedFiles == "" {
		cfg.Data.FailedFiles = filepath.Join("data", "failed_files.txt")
	}

	if cfg.Chunker.ChunkSizeTokens == 0 {
		cfg.Chunker.ChunkSizeTokens = 512
	}
	if cfg.Chunker.OverlapTokens == 0 {
		cfg.Chunker.OverlapTokens = 50
	}
	if cfg.Chunker.MinChunkTokens == 0 {
		cfg.Chunker.MinChunkTokens = 50
	}
	if cfg.Chunker.CharsPerToken == 0 {
		cfg.Chunker.CharsPerToken = 4
	}
	if cfg.Indexer.BatchSize == 0 {
		cfg.Indexer.BatchSize = 100
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.MaxRetries == 0 {
			cfg.Embedder.OpenAI.MaxRetries = 3
		}
	}
	if cfg.Embedder.Type == "ollama" {
		if cfg.Embedder.Ollama == nil {
			cfg.Embedder.Ollama = &OllamaEmbedderConfig{}
		}
		if cfg.Embedder.Ollama.Host == "" {
			cfg.Embedder.Ollama.Host = "http://localhost:11434"
		}
		if cfg.Embedder.Ollama.Model == "" {
			cfg.Embedder.Ollama.Model = "nomic-embed-text"
		}
		if cfg.Embedder.Ollama.TimeoutSecs == 0 {
			cfg.Embedder.Ollama.TimeoutSecs = 30
		}
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "bolt"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "pdf_chunks"
	}
	if cfg.VectorStore.Type == "bolt" {
		if cfg.VectorStore.Bolt == nil {
			cfg.VectorStore.Bolt = &BoltConfig{}
		}
		if cfg.VectorStore.Bolt.Path == "" {
			cfg.VectorStore.Bolt.Path = filepath.Join("data", "index.db")
		}
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.Host == "" {
			cfg.VectorStore.Qdrant.Host = "localhost"
		}
		if cfg.VectorStore.Qdrant.Port == 0 {
			cfg.VectorStore.Qdrant.Port = 6334
		}
	}

	if cfg.Reranker.Type == "" {
		cfg.Reranker.Type = "lexical"
	}
	if cfg.Reranker.Type == "tei" && cfg.Reranker.TEI != nil && cfg.Reranker.TEI.TimeoutSecs == 0 {
		cfg.Reranker.TEI.TimeoutSecs = 30
	}

	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "openai"
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.3
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 500
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 60
	}
	if cfg.Generator.MaxRetries == 0 {
		cfg.Generator.MaxRetries = 3
	}
	if cfg.Generator.RetryDelayMillis == 0 {
		cfg.Generator.RetryDelayMillis = 1000
	}
	switch cfg.Generator.Type {
	case "openai":
		if cfg.Generator.Model == "" {
			cfg.Generator.Model = "gpt-4o-mini"
		}
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIGeneratorConfig{}
		}
		if cfg.Generator.OpenAI.BaseURL == "" {
			cfg.Generator.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Generator.OpenAI.APIKeyEnv == "" {
			cfg.Generator.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
	case "ollama":
		if cfg.Generator.Model == "" {
			cfg.Generator.Model = "llama3"
		}
		if cfg.Generator.Ollama == nil {
			cfg.Generator.Ollama = &OllamaGeneratorConfig{}
		}
		if cfg.Generator.Ollama.Host == "" {
			cfg.Generator.Ollama.Host = "http://localhost:11434"
		}
	}

	if cfg.Query.SearchTopK == 0 {
		cfg.Query.SearchTopK = 20
	}
	if cfg.Query.RerankTopK == 0 {
		cfg.Query.RerankTopK = 5
	}
	if cfg.Query.DistanceThreshold == 0 {
		cfg.Query.DistanceThreshold = 1.0
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
