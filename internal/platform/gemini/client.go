package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/northstar-backend/internal/platform/envutil"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type Config struct {
	APIKey string
	Model  string
}

func ConfigFromEnv() Config {
	return Config{
		APIKey: envutil.String("GEMINI_API_KEY", ""),
		Model:  envutil.String("GEMINI_MODEL", "gemini-2.5-flash"),
	}
}

// Client generates text through the Gemini API.
type Client struct {
	log    *logger.Logger
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if log == nil {
		log = logger.Nop()
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{log: log.With("client", "GeminiClient"), client: c, model: model}, nil
}

func (c *Client) GenerateText(ctx context.Context, system, user string, maxOutputTokens int) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if maxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(maxOutputTokens)
	}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}
