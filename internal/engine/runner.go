package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/deltasync/internal/core/observability/log"
	"github.com/zeusync/deltasync/internal/core/protocol"
)

// Service runs alongside the frame loop until ctx is cancelled.
type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context) error

func (f ServiceFunc) Run(ctx context.Context) error { return f(ctx) }

// Runner joins the network goroutine, the frame loop and any extra services.
// The first of them to fail stops the others. A session that stops serving
// (a client left the lobby) stops the runner too.
type Runner struct {
	engine    *Context
	transport protocol.Transport
	services  []Service
}

// NewRunner binds c to tr. tr may be nil for an offline context.
func NewRunner(c *Context, tr protocol.Transport, services ...Service) *Runner {
	return &Runner{engine: c, transport: tr, services: services}
}

func (r *Runner) Run(ctx context.Context) error {
	if err := r.engine.Init(); err != nil {
		return err
	}
	defer r.engine.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if s := r.engine.Session(); s != nil && r.transport != nil {
		g.Go(func() error {
			defer cancel()
			return s.Serve(ctx, r.transport)
		})
	}
	g.Go(func() error { return r.loop(ctx) })
	for _, svc := range r.services {
		g.Go(func() error { return svc.Run(ctx) })
	}

	err := g.Wait()
	r.engine.logger.Info("Engine stopped", log.Uint64("frames", r.engine.Status().Frame))
	return err
}

func (r *Runner) loop(ctx context.Context) error {
	interval := r.engine.cfg.TickInterval()
	r.engine.logger.Info("Frame loop started", log.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.engine.Frame(); err != nil {
				return err
			}
		}
	}
}
