package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	DBPath     string

	// AIBackend selects the single-food classification backend:
	// "openrouter" (default) or "anthropic".
	AIBackend string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string

	AnthropicAPIKey string
	AnthropicModel  string

	// RequestInterval is the token-bucket refill interval shaping outbound
	// model requests.
	RequestInterval time.Duration
	MaxMenuDishes   int

	LogLevel string
	LogFile  string
}

// Load reads configuration from the environment, after loading a .env file
// if one is present in the working directory.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		DBPath:            getEnv("DB_PATH", "gotacheck.db"),
		AIBackend:         getEnv("AI_BACKEND", "openrouter"),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", ""),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		RequestInterval:   getDuration("REQUEST_INTERVAL", 300*time.Millisecond),
		MaxMenuDishes:     getInt("MAX_MENU_DISHES", 20),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
