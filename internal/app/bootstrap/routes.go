// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	enrollfeature "github.com/dalemusser/coachhub/internal/app/features/enroll"
	healthfeature "github.com/dalemusser/coachhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/coachhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/coachhub/internal/app/features/logout"
	programsfeature "github.com/dalemusser/coachhub/internal/app/features/programs"
	coachingstore "github.com/dalemusser/coachhub/internal/app/store/coaching"
	cohortstore "github.com/dalemusser/coachhub/internal/app/store/cohorts"
	discountstore "github.com/dalemusser/coachhub/internal/app/store/discounts"
	enrollmentstore "github.com/dalemusser/coachhub/internal/app/store/enrollments"
	organizationstore "github.com/dalemusser/coachhub/internal/app/store/organizations"
	programstore "github.com/dalemusser/coachhub/internal/app/store/programs"
	squadstore "github.com/dalemusser/coachhub/internal/app/store/squads"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/allocation"
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/app/system/coaching"
	"github.com/dalemusser/coachhub/internal/app/system/comms"
	"github.com/dalemusser/coachhub/internal/app/system/discount"
	"github.com/dalemusser/coachhub/internal/app/system/enrollment"
	"github.com/dalemusser/coachhub/internal/app/system/payments"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. CoachHub assembles its stores, the
// discount resolver, the squad allocator, the coaching provisioner, and the
// enrollment orchestrator here, then mounts the feature routers on top.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	users := userstore.New(db)
	orgs := organizationstore.New(db)
	programs := programstore.New(db)
	cohorts := cohortstore.New(db)
	squads := squadstore.New(db)
	enrollments := enrollmentstore.New(db)
	discounts := discountstore.New(db)
	relationships := coachingstore.New(db)

	provisioner := comms.FromConfig(appCfg.CommsMode, logger)
	paymentProvider, err := payments.FromConfig(appCfg.PaymentProvider, appCfg.PaymentBaseURL, logger)
	if err != nil {
		return nil, err
	}

	allocator := allocation.New(squads, users, provisioner, logger)
	coachProvisioner := coaching.New(users, relationships, squads, provisioner, logger)
	resolver := discount.New(discounts, logger)
	lifecycle := enrollment.NewLifecycle(enrollments, cohorts, allocator, coachProvisioner, logger)
	orchestrator := enrollment.NewOrchestrator(enrollment.OrchestratorDeps{
		Programs:    programs,
		Cohorts:     cohorts,
		Enrollments: enrollments,
		Discounts:   discounts,
		Orgs:        orgs,
		Users:       users,
		Resolver:    resolver,
		Lifecycle:   lifecycle,
		Payments:    paymentProvider,
		ReturnURL:   appCfg.PaymentReturnURL,
	}, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(users, sessionMgr, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Program catalog
	programsHandler := programsfeature.NewHandler(programs, cohorts, logger)
	r.With(sessionMgr.RequireSignedIn).Mount("/programs", programsfeature.Routes(programsHandler))

	// Enrollment
	enrollHandler := enrollfeature.NewHandler(orchestrator, users, appCfg.PaymentConfirmSecret, logger)
	r.Mount("/enroll", enrollfeature.Routes(enrollHandler, sessionMgr.RequireSignedIn))

	return r, nil
}
