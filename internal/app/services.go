package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/northstar-backend/internal/modules/habits/generation"
	"github.com/yungbote/northstar-backend/internal/modules/habits/normalize"
	"github.com/yungbote/northstar-backend/internal/modules/onboarding"
	"github.com/yungbote/northstar-backend/internal/observability"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
	"github.com/yungbote/northstar-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Plan       services.PlanService
	Onboarding services.OnboardingService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	validator, err := generation.NewValidator()
	if err != nil {
		return Services{}, fmt.Errorf("compile generation schema: %w", err)
	}
	// A nil *Metrics records nothing; keep the interfaces nil in that case.
	var (
		genRecorder  generation.Recorder
		gapRecorder  normalize.GapRecorder
		planRecorder services.PlanRecorder
	)
	if metrics != nil {
		genRecorder, gapRecorder, planRecorder = metrics, metrics, metrics
	}

	gateway := generation.NewGateway(log, clients.Text, genRecorder, cfg.GenerationConfig)
	plans := services.NewPlanService(log, services.PlanServiceDeps{
		DB:          db,
		UserRepo:    reposet.User,
		GoalRepo:    reposet.Goal,
		BarrierRepo: reposet.Barrier,
		PlanRepo:    reposet.Plan,
		PhaseRepo:   reposet.Phase,
		HabitRepo:   reposet.Habit,
		Generator:   gateway,
		Validator:   validator,
		Normalizer:  normalize.New(log, gapRecorder),
		Recorder:    planRecorder,
	})

	var store onboarding.Store
	if clients.Redis != nil {
		log.Info("Onboarding state stored in redis")
		store = onboarding.NewRedisStore(clients.Redis, "northstar:", cfg.OnboardingTTL)
	} else {
		store = onboarding.NewGormStore(db)
	}

	return Services{
		Auth:       services.NewAuthService(log, cfg.JWTSecretKey),
		Plan:       plans,
		Onboarding: services.NewOnboardingService(log, store, plans),
	}, nil
}
