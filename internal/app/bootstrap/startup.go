// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	enrollmentstore "github.com/dalemusser/coachhub/internal/app/store/enrollments"
	"github.com/dalemusser/coachhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// activationWorker is held here so Shutdown can stop it.
var activationWorker *workers.EnrollmentActivation

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. CoachHub
// starts the enrollment activation sweep here.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	interval, err := time.ParseDuration(appCfg.ActivationInterval)
	if err != nil {
		return err
	}

	activationWorker = workers.NewEnrollmentActivation(
		enrollmentstore.New(deps.MongoDatabase), logger, interval)
	activationWorker.Start()
	return nil
}
