package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	DataDir  string `yaml:"data_dir"`
	DBPath   string `yaml:"db_path"`
	WebDir   string `yaml:"web_dir"`

	AppName     string `yaml:"app_name"`
	DefaultUser string `yaml:"default_user"`

	LLMProvider string `yaml:"llm_provider"`
	LLMModel    string `yaml:"llm_model"`
	LLMAPIKey   string `yaml:"-"`

	TavilyAPIKey string `yaml:"-"`
}

// Load builds the daemon configuration. Precedence, lowest to highest:
// built-in defaults, studio.yaml (if present), environment variables.
// A .env file in the working directory is loaded first so the env layer
// sees it.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:    ":8080",
		DataDir:     "data",
		WebDir:      "web",
		AppName:     "content-studio",
		DefaultUser: "strategist",
		LLMProvider: "openai-responses",
	}
	loadYAML("studio.yaml", &cfg)

	cfg.HTTPAddr = getEnv("STUDIO_HTTP_ADDR", cfg.HTTPAddr)
	cfg.DataDir = getEnv("STUDIO_DATA_DIR", cfg.DataDir)
	cfg.DBPath = getEnv("STUDIO_DB_PATH", cfg.DBPath)
	cfg.WebDir = getEnv("STUDIO_WEB_DIR", cfg.WebDir)
	cfg.AppName = getEnv("STUDIO_APP_NAME", cfg.AppName)
	cfg.DefaultUser = getEnv("STUDIO_DEFAULT_USER", cfg.DefaultUser)
	cfg.LLMProvider = getEnv("STUDIO_LLM_PROVIDER", cfg.LLMProvider)
	cfg.LLMModel = getEnv("STUDIO_LLM_MODEL", cfg.LLMModel)
	cfg.LLMAPIKey = getEnv("STUDIO_LLM_API_KEY", cfg.LLMAPIKey)
	cfg.TavilyAPIKey = getEnv("TAVILY_API_KEY", cfg.TavilyAPIKey)

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "studio.db")
	}
	return cfg
}

func loadYAML(path string, cfg *Config) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = yaml.Unmarshal(data, cfg)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
