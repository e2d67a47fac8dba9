package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/transithub/internal/ctxlog"
	"github.com/specialistvlad/transithub/internal/hub"
	"github.com/specialistvlad/transithub/internal/roadstore"
	"golang.org/x/sync/errgroup"
)

// Run connects the bus and runs the hub, plus the health check server when a
// port is configured, until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	opts := a.busOptions()
	bus, err := a.dial(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect %s bus: %w", opts.Kind, err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			a.logger.Warn("Closing bus failed", "error", err)
		}
	}()

	h := hub.New(roadstore.New(), bus,
		hub.WithMetrics(a.metrics),
		hub.WithReplyTimeout(a.config.Bus.ReplyTimeout),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.Run(gctx)
	})
	if port := a.config.Healthcheck.Port; port > 0 {
		g.Go(func() error {
			return a.serveHealthcheck(gctx, port)
		})
	} else {
		a.logger.Warn("Health check server not started: disabled")
	}

	a.logger.Info("🚀 Transportation hub running.", "bus", opts.Kind, "question_event", opts.QuestionEvent, "judge_event", opts.JudgeEvent)
	if err := g.Wait(); err != nil {
		return fmt.Errorf("hub stopped: %w", err)
	}
	a.logger.Info("🏁 Transportation hub stopped.")
	return nil
}
