package app

import (
	nshttp "github.com/yungbote/northstar-backend/internal/http"
	httpH "github.com/yungbote/northstar-backend/internal/http/handlers"
	httpMW "github.com/yungbote/northstar-backend/internal/http/middleware"
	"github.com/yungbote/northstar-backend/internal/observability"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

type Middleware struct {
	Auth            *httpMW.AuthMiddleware
	GenerateLimiter *httpMW.RateLimiter
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Plan       *httpH.PlanHandler
	Onboarding *httpH.OnboardingHandler
}

func wireHandlers(log *logger.Logger, services Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(db),
		Plan:       httpH.NewPlanHandler(log, services.Plan),
		Onboarding: httpH.NewOnboardingHandler(services.Onboarding),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	mw := Middleware{Auth: httpMW.NewAuthMiddleware(log, services.Auth)}
	if cfg.GenerateRatePerMinute > 0 {
		mw.GenerateLimiter = httpMW.NewRateLimiter(cfg.GenerateRatePerMinute, cfg.GenerateRateBurst)
	}
	return mw
}

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) nshttp.RouterConfig {
	return nshttp.RouterConfig{
		Log:               log,
		ServiceName:       cfg.ServiceName,
		CORSOrigins:       cfg.CORSOrigins,
		Metrics:           metrics,
		AuthMiddleware:    middleware.Auth,
		GenerateLimiter:   middleware.GenerateLimiter,
		PlanHandler:       handlers.Plan,
		OnboardingHandler: handlers.Onboarding,
		HealthHandler:     handlers.Health,
	}
}
