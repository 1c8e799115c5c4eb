package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/modules/habits/generation"
	"github.com/yungbote/northstar-backend/internal/services"
)

func TestGenerateSendsBearerAndDecodes(t *testing.T) {
	planID := uuid.New()
	var got generation.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(services.GenerateResult{
			PlanID: planID,
			Habits: []services.HabitView{
				{ID: uuid.New(), Title: "Morning Reflection", Category: habits.CategoryFoundational},
				{ID: uuid.New(), Title: "Goal-Aligned Action", Category: habits.CategoryGoalSpecific},
				{ID: uuid.New(), Title: "Obstacle Mitigation", Category: habits.CategoryBarrierTargeting},
			},
		})
	}))
	defer srv.Close()

	gen := &Generator{Client: New(srv.URL+"/", "tok", time.Second)}
	layers, err := gen.Generate(context.Background(), "Get Fit", []string{"Lack of time", "Stress"})
	require.NoError(t, err)

	assert.Equal(t, "Get Fit", got.GoalTitle)
	require.Len(t, got.Barriers, 2)
	assert.Equal(t, "Stress", got.Barriers[1].Title)
	assert.Equal(t, planID, gen.LastPlanID)
	assert.Len(t, layers.Foundational, 1)
	assert.Len(t, layers.GoalSpecific, 1)
	assert.Len(t, layers.BarrierTargeting, 1)
}

func TestGenerateErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"validation", http.StatusBadRequest, `{"error":{"message":"request validation failed","code":"invalid_request","fields":{"goalTitle":"Goal title is required"}}}`, "Goal title is required"},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"missing or invalid token","code":"unauthorized"}}`, "missing or invalid token"},
		{"server", http.StatusInternalServerError, `{"error":{"message":"internal server error","code":"plan_habits_failed"}}`, "Failed to generate habits"},
		{"not json", http.StatusBadGateway, `bad gateway`, "Failed to generate habits"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			gen := &Generator{Client: New(srv.URL, "", time.Second)}
			_, err := gen.Generate(context.Background(), "Get Fit", []string{"x"})
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"plan not found","code":"plan_not_found"}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "tok", time.Second).GetPlan(context.Background(), uuid.New())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "plan_not_found", apiErr.Code)
	assert.Equal(t, "plan not found", apiErr.UserMessage())
}
