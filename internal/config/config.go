package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LLM provider selections accepted by LLM_PROVIDER.
const (
	LLMProviderAuto    = "auto"
	LLMProviderGemini  = "gemini"
	LLMProviderBedrock = "bedrock"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	APISecretKey string

	LLMProvider    string
	GeminiAPIKey   string
	GeminiModelID  string
	BedrockModelID string
	LLMTimeout     time.Duration

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	CallbackURL            string
	CallbackTimeout        time.Duration
	CallbackQueueURL       string
	CallbackWorkers        int
	CallbackQueueBuffer    int
	MinMessagesForCallback int

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	RedisAddr          string
	RedisPassword      string
	RateLimitPerMinute int
	RateLimitBurst     int
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", "json"))),

		APISecretKey: getEnv("API_SECRET_KEY", ""),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", LLMProviderAuto))),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.0-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 20*time.Second),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		CallbackURL:            getEnv("CALLBACK_URL", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
		CallbackTimeout:        getEnvAsDuration("CALLBACK_TIMEOUT", 5*time.Second),
		CallbackQueueURL:       getEnv("CALLBACK_QUEUE_URL", ""),
		CallbackWorkers:        getEnvAsInt("CALLBACK_WORKERS", 2),
		CallbackQueueBuffer:    getEnvAsInt("CALLBACK_QUEUE_BUFFER", 256),
		MinMessagesForCallback: getEnvAsInt("MIN_MESSAGES_FOR_CALLBACK", 5),

		SessionTTL:           getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		SessionSweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 0),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// LoadDotEnv populates unset environment variables from the given files
// (".env" when none are named). Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Validate rejects settings the process cannot run with.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case LLMProviderAuto, LLMProviderGemini, LLMProviderBedrock:
	default:
		return fmt.Errorf("config: unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.MinMessagesForCallback <= 0 {
		return fmt.Errorf("config: MIN_MESSAGES_FOR_CALLBACK must be positive, got %d", c.MinMessagesForCallback)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("config: SESSION_TTL cannot be negative")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
