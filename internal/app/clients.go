package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/northstar-backend/internal/modules/habits/generation"
	"github.com/yungbote/northstar-backend/internal/platform/gemini"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
	"github.com/yungbote/northstar-backend/internal/platform/openai"
)

type Clients struct {
	// Text is nil when generation must use the built-in habit set.
	Text  generation.TextGenerator
	Redis goredis.UniversalClient
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	var out Clients
	out.Text = selectTextGenerator(ctx, log, cfg)

	// Redis
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:        cfg.RedisAddr,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("redis ping: %w", err)
		}
		out.Redis = rdb
	}
	return out, nil
}

// selectTextGenerator returns nil when the mock flag is set, the backend is
// disabled, or its client cannot be built; the gateway then falls back.
func selectTextGenerator(ctx context.Context, log *logger.Logger, cfg Config) generation.TextGenerator {
	if cfg.UseMockAI {
		log.Info("USE_MOCK_AI set; habit generation uses the built-in set")
		return nil
	}
	switch cfg.AIProvider {
	case ProviderGemini:
		c, err := gemini.NewClient(ctx, log, cfg.Gemini)
		if err != nil {
			log.Warn("Gemini client unavailable, generation will fall back", "error", err)
			return nil
		}
		return c
	default:
		if !cfg.OpenAIEnabled {
			log.Info("OPENAI_ENABLED=false; habit generation uses the built-in set")
			return nil
		}
		c, err := openai.NewClient(log, cfg.OpenAI)
		if err != nil {
			log.Warn("OpenAI client unavailable, generation will fall back", "error", err)
			return nil
		}
		return c
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
