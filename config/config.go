// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type LLMConfig struct {
	Provider string
	Model    string
}

type EmbeddingsConfig struct {
	Provider  string
	Model     string
	Dimension int
}

type Config struct {
	Port        string
	PostgresDSN string
	PDFBackend  string

	LLM        LLMConfig
	Embeddings EmbeddingsConfig

	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaHost    string
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:        getEnv("PORT", "8080"),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		PDFBackend:  getEnv("PDF_BACKEND", "pagetext"),
		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", ProviderGemini),
			Model:    getEnv("LLM_MODEL", "gemini-1.5-flash"),
		},
		Embeddings: EmbeddingsConfig{
			Provider:  getEnv("EMBEDDINGS_PROVIDER", ProviderOpenAI),
			Model:     getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small"),
			Dimension: getEnvInt("EMBEDDINGS_DIMENSION", 1536),
		},
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
