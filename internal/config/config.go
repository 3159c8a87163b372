package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	LiveKitURL       string `envconfig:"LIVEKIT_URL"`
	LiveKitAPIKey    string `envconfig:"LIVEKIT_API_KEY"`
	LiveKitAPISecret string `envconfig:"LIVEKIT_API_SECRET"`

	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
	GroqAPIKey        string `envconfig:"GROQ_API_KEY"`
	SiliconFlowAPIKey string `envconfig:"SILICONFLOW_API_KEY"`
	DeepgramAPIKey    string `envconfig:"DEEPGRAM_API_KEY"`
	ElevenLabsAPIKey  string `envconfig:"ELEVENLABS_API_KEY"`
	CartesiaAPIKey    string `envconfig:"CARTESIA_API_KEY"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"forge-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	WorkerBinary string `envconfig:"WORKER_BINARY" default:"forge-agent-worker"`

	RateLimitRequests int `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	RateLimitWindowS  int `envconfig:"RATE_LIMIT_WINDOW_SECONDS" default:"60"`

	BreakerFailureThreshold int `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"5"`
	BreakerSuccessThreshold int `envconfig:"BREAKER_SUCCESS_THRESHOLD" default:"2"`
	BreakerOpenTimeoutS     int `envconfig:"BREAKER_OPEN_TIMEOUT_SECONDS" default:"30"`

	// Bootstrap: create initial client and API key on startup
	InitClientSlug string `envconfig:"INIT_CLIENT_SLUG"`
	InitAPIKey     string `envconfig:"INIT_API_KEY"`
}

// ConfigurationError reports a missing or malformed setting. The policy is
// fail fast: a broken provider key stops startup instead of degrading at
// request time.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FORGE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasLiveKit() bool {
	return c.LiveKitURL != "" && c.LiveKitAPIKey != "" && c.LiveKitAPISecret != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// ValidateProviders checks the shape of every configured provider key.
// A key that is set but malformed is a hard error, never a silent fallback.
func (c *Config) ValidateProviders() error {
	checks := []struct {
		field  string
		value  string
		prefix string
		minLen int
	}{
		{"OPENAI_API_KEY", c.OpenAIAPIKey, "sk-", 20},
		{"GROQ_API_KEY", c.GroqAPIKey, "gsk_", 20},
		{"SILICONFLOW_API_KEY", c.SiliconFlowAPIKey, "sk-", 20},
		{"ELEVENLABS_API_KEY", c.ElevenLabsAPIKey, "", 20},
		{"DEEPGRAM_API_KEY", c.DeepgramAPIKey, "", 20},
		{"CARTESIA_API_KEY", c.CartesiaAPIKey, "", 20},
	}

	for _, check := range checks {
		if check.value == "" {
			continue
		}
		if check.prefix != "" && !strings.HasPrefix(check.value, check.prefix) {
			return &ConfigurationError{Field: check.field, Reason: fmt.Sprintf("expected prefix %q", check.prefix)}
		}
		if len(check.value) < check.minLen {
			return &ConfigurationError{Field: check.field, Reason: "key is too short"}
		}
		if strings.ContainsAny(check.value, " \t\n") {
			return &ConfigurationError{Field: check.field, Reason: "key contains whitespace"}
		}
	}

	if c.LiveKitURL != "" || c.LiveKitAPIKey != "" || c.LiveKitAPISecret != "" {
		if !c.HasLiveKit() {
			return &ConfigurationError{Field: "LIVEKIT_URL", Reason: "LIVEKIT_URL, LIVEKIT_API_KEY and LIVEKIT_API_SECRET must all be set"}
		}
		if !strings.HasPrefix(c.LiveKitURL, "ws://") && !strings.HasPrefix(c.LiveKitURL, "wss://") &&
			!strings.HasPrefix(c.LiveKitURL, "http://") && !strings.HasPrefix(c.LiveKitURL, "https://") {
			return &ConfigurationError{Field: "LIVEKIT_URL", Reason: "must be a ws(s):// or http(s):// URL"}
		}
	}

	return nil
}
