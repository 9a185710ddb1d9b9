package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig carries the tunables that may differ per deployment. Everything it
// does not cover keeps the compile-time defaults above. Secrets (API keys,
// redis password) never live in the file; they come from the environment.
type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	Embedding struct {
		Provider  string `yaml:"provider"` //"gemini" or "openai"
		Model     string `yaml:"model"`
		Dimension int32  `yaml:"dimension"`
	} `yaml:"embedding"`

	Index struct {
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		UseTLS     bool   `yaml:"use_tls"`
		Collection string `yaml:"collection"`
	} `yaml:"index"`

	LLM struct {
		Model string `yaml:"model"`
	} `yaml:"llm"`

	Sync struct {
		IntervalSecs int `yaml:"interval_secs"`
		BatchLimit   int `yaml:"batch_limit"`
		Workers      int `yaml:"workers"`
	} `yaml:"sync"`

	Chunk struct {
		MaxLength int `yaml:"max_length"`
		Overlap   int `yaml:"overlap"`
	} `yaml:"chunk"`
}

// Load reads a config from path. A missing file is not an error: defaults apply.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultAppConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func (c *AppConfig) SyncInterval() time.Duration {
	return time.Duration(c.Sync.IntervalSecs) * time.Second
}

func defaultAppConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ServerListenAddr
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = ReviewDBPath
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "gemini"
	}
	if cfg.Embedding.Model == "" {
		if cfg.Embedding.Provider == "openai" {
			cfg.Embedding.Model = OpenAIEmbeddingModel
		} else {
			cfg.Embedding.Model = GoogleEmbeddingModel
		}
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = EmbeddingOutputDimensionality
	}
	if cfg.Index.Host == "" {
		cfg.Index.Host = QdrantHost
	}
	if cfg.Index.Port == 0 {
		cfg.Index.Port = QdrantGrpcPort
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = IndexCollectionName
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = GeminiModelName
	}
	if cfg.Sync.IntervalSecs == 0 {
		cfg.Sync.IntervalSecs = int(SyncInterval / time.Second)
	}
	if cfg.Sync.BatchLimit == 0 {
		cfg.Sync.BatchLimit = SyncBatchLimit
	}
	if cfg.Sync.Workers == 0 {
		cfg.Sync.Workers = SyncWorkerCount
	}
	if cfg.Chunk.MaxLength == 0 {
		cfg.Chunk.MaxLength = ChunkMaxLength
	}
	if cfg.Chunk.Overlap == 0 {
		cfg.Chunk.Overlap = ChunkOverlap
	}
}
