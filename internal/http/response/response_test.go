package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/northstar-backend/internal/platform/apierr"
)

func render(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestRespondAPIErrorValidation(t *testing.T) {
	rec, env := render(t, func(c *gin.Context) {
		RespondValidation(c, map[string]string{"goalTitle": "Goal title is required"})
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d", rec.Code)
	}
	if env.Error.Code != "invalid_request" || env.Error.Fields["goalTitle"] == "" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestRespondAPIErrorHidesServerDetails(t *testing.T) {
	base := apierr.New(http.StatusInternalServerError, "plan_habits_failed", errors.New("pq: relation habits does not exist"))
	rec, env := render(t, func(c *gin.Context) {
		RespondAPIError(c, fmt.Errorf("assemble: %w", base))
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got=%d", rec.Code)
	}
	if env.Error.Code != "plan_habits_failed" || env.Error.Message != internalMessage {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestRespondAPIErrorPlainError(t *testing.T) {
	rec, env := render(t, func(c *gin.Context) {
		RespondAPIError(c, errors.New("boom"))
	})
	if rec.Code != http.StatusInternalServerError || env.Error.Code != "internal_error" {
		t.Fatalf("unexpected: %d %+v", rec.Code, env)
	}
}

func TestRespondErrorKeepsClientMessage(t *testing.T) {
	rec, env := render(t, func(c *gin.Context) {
		RespondError(c, http.StatusNotFound, "plan_not_found", errors.New("plan not found"))
	})
	if rec.Code != http.StatusNotFound || env.Error.Message != "plan not found" {
		t.Fatalf("unexpected: %d %+v", rec.Code, env)
	}
}
