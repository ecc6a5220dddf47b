package cleanup

import (
	"context"
	"log"
	"time"

	"github.com/iamasit07/connect4-engine/internal/service/game"
)

type Worker struct {
	SessionManager *game.SessionManager
	MaxIdle        time.Duration
	Interval       time.Duration
}

func NewWorker(sm *game.SessionManager, maxIdle time.Duration) *Worker {
	interval := maxIdle / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Worker{SessionManager: sm, MaxIdle: maxIdle, Interval: interval}
}

// Start runs a cleanup right away and then on every tick until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.runCleanup()

	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("[CLEANUP] Background worker stopped")
				return
			case <-ticker.C:
				w.runCleanup()
			}
		}
	}()
	log.Printf("[CLEANUP] Background worker started, sessions idle for %s are removed", w.MaxIdle)
}

func (w *Worker) runCleanup() int {
	removed := w.SessionManager.CleanupIdleSessions(w.MaxIdle)
	if removed > 0 {
		log.Printf("[CLEANUP] Removed %d idle sessions", removed)
	}
	return removed
}
