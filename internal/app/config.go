package app

import (
	"strings"
	"time"

	"github.com/yungbote/northstar-backend/internal/data/db"
	"github.com/yungbote/northstar-backend/internal/modules/habits/generation"
	"github.com/yungbote/northstar-backend/internal/platform/envutil"
	"github.com/yungbote/northstar-backend/internal/platform/gemini"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
	"github.com/yungbote/northstar-backend/internal/platform/openai"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port         string
	Environment  string
	ServiceName  string
	JWTSecretKey string
	CORSOrigins  []string

	DB        db.Config
	RedisAddr string
	// OnboardingTTL bounds how long an idle onboarding blob lives in Redis.
	OnboardingTTL time.Duration

	AIProvider       string
	UseMockAI        bool
	OpenAIEnabled    bool
	OpenAI           openai.Config
	Gemini           gemini.Config
	GenerationConfig generation.Config

	GenerateRatePerMinute int
	GenerateRateBurst     int
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:         envutil.String("PORT", "3000"),
		Environment:  envutil.String("APP_ENV", "development"),
		ServiceName:  envutil.String("OTEL_SERVICE_NAME", "northstar-api"),
		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		CORSOrigins:  splitList(envutil.String("CORS_ORIGINS", "")),

		DB:            db.ConfigFromEnv(),
		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		OnboardingTTL: envutil.Duration("ONBOARDING_STATE_TTL", 30*24*time.Hour),

		AIProvider:    strings.ToLower(envutil.String("HABIT_AI_PROVIDER", ProviderOpenAI)),
		UseMockAI:     envutil.Bool("USE_MOCK_AI", false),
		OpenAIEnabled: envutil.Bool("OPENAI_ENABLED", true),
		OpenAI:        openai.ConfigFromEnv(),
		Gemini:        gemini.ConfigFromEnv(),
		GenerationConfig: generation.Config{
			MaxOutputTokens: envutil.Int("GENERATION_MAX_OUTPUT_TOKENS", generation.DefaultMaxOutputTokens),
			Timeout:         envutil.Duration("GENERATION_TIMEOUT", generation.DefaultTimeout),
		},

		GenerateRatePerMinute: envutil.Int("GENERATE_RATE_PER_MINUTE", 6),
		GenerateRateBurst:     envutil.Int("GENERATE_RATE_BURST", 3),
	}
	cfg.GenerationConfig.Mock = cfg.UseMockAI

	if cfg.JWTSecretKey == "" && log != nil {
		log.Warn("JWT_SECRET_KEY is not set; every authenticated request will be rejected")
	}
	switch cfg.AIProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		if log != nil {
			log.Warn("Unknown HABIT_AI_PROVIDER, using openai", "provider", cfg.AIProvider)
		}
		cfg.AIProvider = ProviderOpenAI
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
