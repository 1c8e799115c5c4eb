package generation

import (
	"context"
	"errors"
	"time"

	"github.com/yungbote/northstar-backend/internal/modules/habits/normalize"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

// Sources reported on Result. Anything other than SourceModel is a fallback.
const (
	SourceModel    = "model"
	SourceMock     = "mock"
	SourceNoClient = "no_client"
	SourceError    = "error"
	SourceNoJSON   = "no_json"
	SourceBadJSON  = "bad_json"
	SourceEmpty    = "empty"
)

const (
	DefaultMaxOutputTokens = 2048
	DefaultTimeout         = 45 * time.Second
)

// TextGenerator is the external text backend.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, user string, maxOutputTokens int) (string, error)
}

// Recorder observes each generation outcome.
type Recorder interface {
	RecordGeneration(ctx context.Context, source string, dur time.Duration)
}

type Config struct {
	Mock            bool
	MaxOutputTokens int
	Timeout         time.Duration
}

// Result is always non-empty.
type Result struct {
	Habits []normalize.RawHabit `json:"habits"`
	Source string               `json:"-"`
}

// Gateway turns a goal into candidate habits. It never returns an error:
// every backend failure degrades to the built-in set.
type Gateway struct {
	log      *logger.Logger
	gen      TextGenerator
	recorder Recorder
	cfg      Config
}

// NewGateway builds a gateway. gen may be nil when no backend is configured
// or its construction failed.
func NewGateway(log *logger.Logger, gen TextGenerator, recorder Recorder, cfg Config) *Gateway {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Gateway{log: log.With("component", "GenerationGateway"), gen: gen, recorder: recorder, cfg: cfg}
}

func (g *Gateway) Generate(ctx context.Context, req Request) Result {
	start := time.Now()
	res := g.generate(ctx, req)
	if g.recorder != nil {
		g.recorder.RecordGeneration(ctx, res.Source, time.Since(start))
	}
	return res
}

func (g *Gateway) generate(ctx context.Context, req Request) Result {
	if g.cfg.Mock {
		g.log.Info("Using mock habit generation")
		return fallback(SourceMock)
	}
	if g.gen == nil {
		g.log.Info("No text generator configured, using built-in habits")
		return fallback(SourceNoClient)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	text, err := g.gen.GenerateText(callCtx, "", BuildPrompt(req), g.cfg.MaxOutputTokens)
	if err != nil {
		g.log.Error("Habit generation failed, falling back to built-in habits",
			"error", err,
			"timed_out", errors.Is(err, context.DeadlineExceeded),
		)
		return fallback(SourceError)
	}
	payload, err := ExtractJSON(text)
	if err != nil {
		g.log.Warn("Could not find JSON in generator output, using built-in habits", "output_len", len(text))
		return fallback(SourceNoJSON)
	}
	raw, err := DecodeHabits(payload)
	if err != nil {
		g.log.Warn("Could not parse generator output, using built-in habits", "error", err)
		return fallback(SourceBadJSON)
	}
	if len(raw) == 0 {
		g.log.Warn("Generator returned no habits, using built-in habits")
		return fallback(SourceEmpty)
	}

	normalized := normalize.NormalizeGenerated(raw)
	out := make([]normalize.RawHabit, 0, len(normalized))
	for _, h := range normalized {
		out = append(out, h.Raw())
	}
	return Result{Habits: out, Source: SourceModel}
}

func fallback(source string) Result {
	return Result{Habits: Fallback(), Source: source}
}
