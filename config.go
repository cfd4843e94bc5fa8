package main

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// ──────────────────────────────────────────────
// Configuration
// ──────────────────────────────────────────────

// Config collects every tunable of the service. All values have working
// defaults so the binary boots with no config file and no environment.
type Config struct {
	Port        string `mapstructure:"port"`
	DatabaseURL string `mapstructure:"database_url"`

	KnowledgePath string `mapstructure:"knowledge_path"`
	ModelPath     string `mapstructure:"model_path"`
	LabelsPath    string `mapstructure:"labels_path"`

	LLMBaseURL string        `mapstructure:"llm_base_url"`
	LLMModel   string        `mapstructure:"llm_model"`
	LLMAPIKey  string        `mapstructure:"llm_api_key"`
	LLMTimeout time.Duration `mapstructure:"llm_timeout"`
}

// LoadConfig reads cropadvisor-config.{yaml,json} from the working
// directory if present, then lets environment variables (PORT,
// DATABASE_URL, MODEL_PATH, LLM_API_KEY, ...) override it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("cropadvisor-config")
	v.AddConfigPath(".")

	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "")
	v.SetDefault("knowledge_path", "data/crop_knowledge.json")
	v.SetDefault("model_path", "data/crop_model.json")
	v.SetDefault("labels_path", "data/crop_labels.json")
	v.SetDefault("llm_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm_model", "gpt-3.5-turbo")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_timeout", 15*time.Second)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine, we run on defaults + env.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
