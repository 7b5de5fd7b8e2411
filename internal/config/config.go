package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the config file.
const (
	EnvTextModel   = "TERM_AI_TEXT_MODEL"
	EnvLLMURL      = "TERM_AI_LLM_URL"
	EnvLLMKey      = "TERM_AI_LLM_KEY"
	EnvEmbedModel  = "TERM_AI_EMBED_MODEL"
	EnvDataDir     = "TERM_AI_DATA_DIR"
	EnvDatabaseDSN = "TERM_AI_DATABASE_DSN"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	BackendChromem  = "chromem"
	BackendPgvector = "pgvector"
)

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	EmbedLLM  LLMConfig       `yaml:"embed_llm"`
	RAG       RAGConfig       `yaml:"rag"`
	Summarize SummarizeConfig `yaml:"summarize"`
	Limits    LimitsConfig    `yaml:"limits"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
}

// LLMConfig describes one model endpoint. Sampling fields are ignored for
// embedding models.
type LLMConfig struct {
	Provider    string  `yaml:"provider" json:"provider" validate:"oneof=ollama openai"`
	BaseURL     string  `yaml:"base_url" json:"base_url" validate:"required,url"`
	Model       string  `yaml:"model" json:"model" validate:"required"`
	Key         string  `yaml:"key" json:"-"`
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"gte=0,lte=2"`
	TopP        float64 `yaml:"top_p" json:"top_p" validate:"gte=0,lte=1"`
	TopK        int     `yaml:"top_k" json:"top_k" validate:"gte=0"`
}

type RAGConfig struct {
	DataDir       string `yaml:"data_dir" validate:"required"`
	Backend       string `yaml:"backend" validate:"oneof=chromem pgvector"`
	DBPath        string `yaml:"db_path"`
	Collection    string `yaml:"collection" validate:"required"`
	EncryptionKey string `yaml:"encryption_key" json:"-" validate:"omitempty,len=32"`
	ImportFile    string `yaml:"import_file"`
	TopK          int    `yaml:"top_k" validate:"gt=0"`
	ChunkSize     int    `yaml:"chunk_size" validate:"gt=0"`
	ChunkOverlap  int    `yaml:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
}

type SummarizeConfig struct {
	ChunkSize   int `yaml:"chunk_size" validate:"gt=0"`
	Concurrency int `yaml:"concurrency" validate:"gt=0"`
}

// LimitsConfig holds the maximum output length, in tokens, for each kind of
// completion call.
type LimitsConfig struct {
	Generate         int `yaml:"generate" validate:"gt=0"`
	ChunkSummary     int `yaml:"chunk_summary" validate:"gt=0"`
	CombineSummaries int `yaml:"combine_summaries" validate:"gt=0"`
	RAGAnswer        int `yaml:"rag_answer" validate:"gt=0"`
	Reasoning        int `yaml:"reasoning" validate:"gt=0"`
	FinalAnswer      int `yaml:"final_answer" validate:"gt=0"`
	Refine           int `yaml:"refine" validate:"gt=0"`
}

type DatabaseConfig struct {
	DSN        string `yaml:"dsn" json:"-"`
	Password   string `yaml:"password" json:"-"`
	Debug      bool   `yaml:"debug"`
	VectorSize int    `yaml:"vector_size" validate:"gte=0"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderOllama,
			BaseURL:     "http://localhost:11434",
			Model:       "llama3.2",
			Temperature: 0.9,
			TopP:        0.95,
			TopK:        50,
		},
		EmbedLLM: LLMConfig{
			Provider: ProviderOllama,
			BaseURL:  "http://localhost:11434",
			Model:    "nomic-embed-text",
		},
		RAG: RAGConfig{
			DataDir:      "data",
			Backend:      BackendChromem,
			Collection:   "term_ai_infinity_docs",
			TopK:         3,
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Summarize: SummarizeConfig{
			ChunkSize:   500,
			Concurrency: 4,
		},
		Limits: LimitsConfig{
			Generate:         100,
			ChunkSummary:     150,
			CombineSummaries: 200,
			RAGAnswer:        200,
			Reasoning:        250,
			FinalAnswer:      150,
			Refine:           200,
		},
		Database: DatabaseConfig{
			VectorSize: 768,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig builds the configuration from defaults, the YAML file at path
// (skipped when it does not exist), a .env file and environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		EnvTextModel:   &cfg.LLM.Model,
		EnvLLMURL:      &cfg.LLM.BaseURL,
		EnvLLMKey:      &cfg.LLM.Key,
		EnvEmbedModel:  &cfg.EmbedLLM.Model,
		EnvDataDir:     &cfg.RAG.DataDir,
		EnvDatabaseDSN: &cfg.Database.DSN,
	}
	for env, field := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}
}

// Validate checks the struct tags and the rules that span sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.RAG.Backend == BackendPgvector {
		if c.Database.DSN == "" {
			return errors.New("invalid config: database.dsn is required for the pgvector backend")
		}
		if c.Database.VectorSize <= 0 {
			return errors.New("invalid config: database.vector_size must be positive for the pgvector backend")
		}
	}
	return nil
}
