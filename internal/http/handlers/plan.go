package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/northstar-backend/internal/domain/habits"
	"github.com/yungbote/northstar-backend/internal/http/response"
	"github.com/yungbote/northstar-backend/internal/modules/habits/generation"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
	"github.com/yungbote/northstar-backend/internal/services"
)

type PlanHandler struct {
	log   *logger.Logger
	plans services.PlanService
}

func NewPlanHandler(log *logger.Logger, plans services.PlanService) *PlanHandler {
	return &PlanHandler{log: log.With("handler", "PlanHandler"), plans: plans}
}

// POST /api/generate
// body: { "goalTitle": "...", "goalDescription"?: "...", "goalCategory"?: "...", "barriers": [{ "title": "..." }] }
func (h *PlanHandler) Generate(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	var req generation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidation(c, map[string]string{"body": "Request body must be valid JSON"})
		return
	}
	res, err := h.plans.Assemble(c.Request.Context(), req, caller)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	h.log.Info("Plan generated",
		"plan_id", res.PlanID.String(),
		"source", res.Source,
		"habit_count", res.Summary.TotalCount,
	)
	response.RespondCreated(c, res)
}

// GET /api/plan/:planId
func (h *PlanHandler) GetPlan(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	planID, err := uuid.Parse(c.Param("planId"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "plan_not_found", services.ErrPlanNotFound)
		return
	}
	details, err := h.plans.GetPlan(c.Request.Context(), planID, caller.UserID)
	if err != nil {
		h.respondPlanErr(c, err)
		return
	}
	response.RespondOK(c, details)
}

// GET /api/plans
func (h *PlanHandler) ListPlans(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	plans, err := h.plans.ListPlans(c.Request.Context(), caller.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"plans": plans})
}

// PATCH /api/plan/:planId/phases/:phase
// body: { "status": "pending" | "active" | "completed" | "skipped" }
func (h *PlanHandler) UpdatePhaseStatus(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	planID, err := uuid.Parse(c.Param("planId"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "plan_not_found", services.ErrPlanNotFound)
		return
	}
	n, err := strconv.Atoi(c.Param("phase"))
	if err != nil {
		response.RespondValidation(c, map[string]string{"phase": "Phase must be between 1 and 4"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidation(c, map[string]string{"status": "Status is required"})
		return
	}
	phase, err := h.plans.UpdatePhaseStatus(c.Request.Context(), planID, caller.UserID, habits.Phase(n), habits.PhaseStatus(req.Status))
	if err != nil {
		h.respondPlanErr(c, err)
		return
	}
	response.RespondOK(c, phase)
}

func (h *PlanHandler) respondPlanErr(c *gin.Context, err error) {
	if errors.Is(err, services.ErrPlanNotFound) {
		response.RespondError(c, http.StatusNotFound, "plan_not_found", err)
		return
	}
	response.RespondAPIError(c, err)
}
