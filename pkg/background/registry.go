package background

import (
	"context"
	"sync"

	"portfolio-intro-be/internal/pkg/logger"
)

// Registry tracks fire-and-forget work (async cache population and similar)
// so the host process can wait for it during shutdown instead of dropping it.
type Registry struct {
	wg  sync.WaitGroup
	log logger.ILogger
}

func NewRegistry(log logger.ILogger) *Registry {
	return &Registry{
		log: log,
	}
}

// Go schedules fn on its own goroutine. Panics are recovered and logged; a
// background task must never take the request path down with it.
func (r *Registry) Go(name string, fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("background", "Background task panicked", map[string]interface{}{
					"task":  name,
					"panic": rec,
				})
			}
		}()
		fn()
	}()
}

// Wait blocks until all scheduled tasks settle or ctx expires.
func (r *Registry) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
