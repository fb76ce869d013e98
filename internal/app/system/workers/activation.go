// internal/app/system/workers/activation.go
package workers

import (
	"context"
	"sync"
	"time"

	enrollmentstore "github.com/dalemusser/coachhub/internal/app/store/enrollments"
	"go.uber.org/zap"
)

// EnrollmentActivation is a background worker that flips upcoming
// enrollments to active once their start date arrives.
type EnrollmentActivation struct {
	enrollments *enrollmentstore.Store
	log         *zap.Logger
	interval    time.Duration
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewEnrollmentActivation creates a new activation worker.
//
// Parameters:
//   - enrollStore: the enrollments store
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 1 minute)
func NewEnrollmentActivation(enrollStore *enrollmentstore.Store, logger *zap.Logger, interval time.Duration) *EnrollmentActivation {
	return &EnrollmentActivation{
		enrollments: enrollStore,
		log:         logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the background activation loop.
func (w *EnrollmentActivation) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("enrollment activation worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *EnrollmentActivation) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("enrollment activation worker stopped")
}

func (w *EnrollmentActivation) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *EnrollmentActivation) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.enrollments.ActivateDue(ctx, time.Now().UTC())
	if err != nil {
		w.log.Error("failed to activate due enrollments", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("activated due enrollments", zap.Int64("count", count))
	}
}
