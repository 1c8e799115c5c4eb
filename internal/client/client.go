package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/northstar-backend/internal/modules/habits/generation"
	"github.com/yungbote/northstar-backend/internal/modules/habits/journey"
	"github.com/yungbote/northstar-backend/internal/services"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// UserMessage is the text shown to a person: the first field message for
// validation errors, otherwise the server message.
func (e *APIError) UserMessage() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return e.Fields[keys[0]]
	}
	return e.Message
}

// Client talks to the northstar HTTP API with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var env struct {
			Error struct {
				Message string            `json:"message"`
				Code    string            `json:"code"`
				Fields  map[string]string `json:"fields"`
			} `json:"error"`
		}
		if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Fields = env.Error.Fields
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthcheck", nil, nil)
}

func (c *Client) Generate(ctx context.Context, req generation.Request) (*services.GenerateResult, error) {
	var out services.GenerateResult
	if err := c.do(ctx, http.MethodPost, "/api/generate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPlan(ctx context.Context, planID uuid.UUID) (*services.PlanDetails, error) {
	var out services.PlanDetails
	if err := c.do(ctx, http.MethodGet, "/api/plan/"+planID.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPlans(ctx context.Context) ([]services.PlanListItem, error) {
	var out struct {
		Plans []services.PlanListItem `json:"plans"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/plans", nil, &out); err != nil {
		return nil, err
	}
	return out.Plans, nil
}

const generateFailedMessage = "Failed to generate habits"

// Generator adapts the API to the onboarding machine: it assembles a plan on
// the server and buckets the returned habits by category.
type Generator struct {
	Client *Client
	// LastPlanID is the id of the most recently assembled plan.
	LastPlanID uuid.UUID
}

func (g *Generator) Generate(ctx context.Context, goal string, barriers []string) (journey.Layers, error) {
	req := generation.Request{GoalTitle: goal}
	for _, b := range barriers {
		req.Barriers = append(req.Barriers, generation.BarrierInput{Title: b})
	}
	res, err := g.Client.Generate(ctx, req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return journey.Layers{}, errors.New(apiErr.UserMessage())
		}
		return journey.Layers{}, errors.New(generateFailedMessage)
	}
	g.LastPlanID = res.PlanID
	return services.LayersFromViews(res.Habits), nil
}
