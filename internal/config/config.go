package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/cloudlab-api/internal/grading"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	AdminEmails            []string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	AnalysisTTL            time.Duration
	StatsCacheTTL          time.Duration
	WeatherCacheTTL        time.Duration
	AIProvider             string
	AIModel                string
	OpenAIAPIKey           string
	AnthropicAPIKey        string
	KMAAPIKey              string
	KMABaseURL             string
	MatchMode              grading.MatchMode
	AnalyzeRateLimit       int
	DemoSeed               uint64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CLOUDLAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CloudLab API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "cloudlab/observations")
	v.SetDefault("cache.analysis_ttl", "30m")
	v.SetDefault("cache.stats_ttl", "5m")
	v.SetDefault("cache.weather_ttl", "10m")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("grading.match_mode", string(grading.MatchLiteral))
	v.SetDefault("analyze.rate_limit", 10)

	analysisTTL, err := duration(v, "cache.analysis_ttl")
	if err != nil {
		return Config{}, err
	}
	statsTTL, err := duration(v, "cache.stats_ttl")
	if err != nil {
		return Config{}, err
	}
	weatherTTL, err := duration(v, "cache.weather_ttl")
	if err != nil {
		return Config{}, err
	}

	matchMode, err := grading.ParseMatchMode(v.GetString("grading.match_mode"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		AdminEmails:            splitList(v.GetString("auth.admin_emails")),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		AnalysisTTL:            analysisTTL,
		StatsCacheTTL:          statsTTL,
		WeatherCacheTTL:        weatherTTL,
		AIProvider:             strings.ToLower(v.GetString("ai.provider")),
		AIModel:                v.GetString("ai.model"),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		AnthropicAPIKey:        v.GetString("anthropic_api_key"),
		KMAAPIKey:              v.GetString("kma.api_key"),
		KMABaseURL:             v.GetString("kma.base_url"),
		MatchMode:              matchMode,
		AnalyzeRateLimit:       v.GetInt("analyze.rate_limit"),
		DemoSeed:               v.GetUint64("demo.seed"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.AIProvider {
	case "openai", "anthropic":
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	if cfg.AnalyzeRateLimit <= 0 {
		cfg.AnalyzeRateLimit = 10
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	value, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return value, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
