package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/northstar-backend/internal/http/handlers"
	httpMW "github.com/yungbote/northstar-backend/internal/http/middleware"
	"github.com/yungbote/northstar-backend/internal/observability"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware
	// GenerateLimiter guards POST /api/generate and onboarding transitions
	// that can trigger generation.
	GenerateLimiter *httpMW.RateLimiter

	PlanHandler       *httpH.PlanHandler
	OnboardingHandler *httpH.OnboardingHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.Observe(cfg.Log, cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	protected := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	limited := []gin.HandlerFunc{}
	if cfg.GenerateLimiter != nil {
		limited = append(limited, cfg.GenerateLimiter.Middleware())
	}
	with := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, limited...), h)
	}

	// Plans
	if cfg.PlanHandler != nil {
		protected.POST("/generate", with(cfg.PlanHandler.Generate)...)
		protected.GET("/plans", cfg.PlanHandler.ListPlans)
		protected.GET("/plan/:planId", cfg.PlanHandler.GetPlan)
		protected.PATCH("/plan/:planId/phases/:phase", cfg.PlanHandler.UpdatePhaseStatus)
	}

	// Onboarding
	if cfg.OnboardingHandler != nil {
		ob := protected.Group("/onboarding")
		ob.GET("", cfg.OnboardingHandler.Get)
		ob.DELETE("", cfg.OnboardingHandler.Reset)
		ob.POST("/goal", cfg.OnboardingHandler.SetGoal)
		ob.POST("/barriers/toggle", cfg.OnboardingHandler.ToggleBarrier)
		ob.POST("/barriers/custom", cfg.OnboardingHandler.AddCustomBarrier)
		ob.DELETE("/barriers/custom", cfg.OnboardingHandler.RemoveCustomBarrier)
		ob.POST("/next", with(cfg.OnboardingHandler.Next)...)
		ob.POST("/prev", cfg.OnboardingHandler.Prev)
		ob.POST("/retry", with(cfg.OnboardingHandler.Retry)...)
		ob.POST("/complete", cfg.OnboardingHandler.Complete)
	}

	return r
}
