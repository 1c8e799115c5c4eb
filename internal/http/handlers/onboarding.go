package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/northstar-backend/internal/http/response"
	"github.com/yungbote/northstar-backend/internal/modules/onboarding"
	"github.com/yungbote/northstar-backend/internal/services"
)

type OnboardingHandler struct {
	svc services.OnboardingService
}

func NewOnboardingHandler(svc services.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{svc: svc}
}

type onboardingOp func(ctx context.Context, userID uuid.UUID) (onboarding.View, error)

func (h *OnboardingHandler) run(c *gin.Context, op onboardingOp) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	view, err := op(c.Request.Context(), caller.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// runValue binds {"value": "..."} and applies op to it.
func (h *OnboardingHandler) runValue(c *gin.Context, field string, op func(ctx context.Context, userID uuid.UUID, v string) (onboarding.View, error)) {
	var req struct {
		Value *string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		response.RespondValidation(c, map[string]string{field: "value is required"})
		return
	}
	h.run(c, func(ctx context.Context, userID uuid.UUID) (onboarding.View, error) {
		return op(ctx, userID, *req.Value)
	})
}

// GET /api/onboarding
func (h *OnboardingHandler) Get(c *gin.Context) { h.run(c, h.svc.Get) }

// POST /api/onboarding/goal  body: { "value": "..." }
func (h *OnboardingHandler) SetGoal(c *gin.Context) { h.runValue(c, "goal", h.svc.SetGoal) }

// POST /api/onboarding/barriers/toggle  body: { "value": "..." }
func (h *OnboardingHandler) ToggleBarrier(c *gin.Context) {
	h.runValue(c, "barrier", h.svc.ToggleBarrier)
}

// POST /api/onboarding/barriers/custom  body: { "value": "..." }
func (h *OnboardingHandler) AddCustomBarrier(c *gin.Context) {
	h.runValue(c, "barrier", h.svc.AddCustomBarrier)
}

// DELETE /api/onboarding/barriers/custom  body: { "value": "..." }
func (h *OnboardingHandler) RemoveCustomBarrier(c *gin.Context) {
	h.runValue(c, "barrier", h.svc.RemoveCustomBarrier)
}

func (h *OnboardingHandler) Next(c *gin.Context)     { h.run(c, h.svc.Next) }
func (h *OnboardingHandler) Prev(c *gin.Context)     { h.run(c, h.svc.Prev) }
func (h *OnboardingHandler) Retry(c *gin.Context)    { h.run(c, h.svc.Retry) }
func (h *OnboardingHandler) Complete(c *gin.Context) { h.run(c, h.svc.Complete) }

// DELETE /api/onboarding
func (h *OnboardingHandler) Reset(c *gin.Context) { h.run(c, h.svc.Reset) }
