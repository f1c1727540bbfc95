// Package reaper retires sandboxes whose projects went idle past their TTL
// and reconciles persisted sandbox state with the backend at startup.
package reaper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/p-arndt/werkbank/internal/lifecycle"
	"github.com/p-arndt/werkbank/internal/store"
)

// Lifecycle is the slice of the lifecycle manager the reaper needs.
type Lifecycle interface {
	Teardown(ctx context.Context, id string) error
	Reconcile(ctx context.Context) error
}

// ProjectSource lists candidates for reaping.
type ProjectSource interface {
	ListIdleProjects(cutoff time.Time) ([]*store.Project, error)
}

type Reaper struct {
	manager  Lifecycle
	projects ProjectSource
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

func New(manager Lifecycle, projects ProjectSource, ttl, interval time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		manager:  manager,
		projects: projects,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
	}
}

// Run reconciles once, then sweeps on every tick until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	if err := r.manager.Reconcile(ctx); err != nil {
		r.logger.Error("startup reconciliation failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep tears down every sandbox idle past the TTL. A project busy with an
// operation is skipped and picked up on a later sweep.
func (r *Reaper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-r.ttl)
	idle, err := r.projects.ListIdleProjects(cutoff)
	if err != nil {
		r.logger.Error("listing idle projects failed", "error", err)
		return
	}

	for _, p := range idle {
		r.logger.Info("reaping idle sandbox",
			"project_id", p.ID, "sandbox_id", p.SandboxID, "last_activity", p.LastActivity)
		if err := r.manager.Teardown(ctx, p.ID); err != nil {
			if errors.Is(err, lifecycle.ErrBusy) {
				r.logger.Debug("project busy, skipping reap", "project_id", p.ID)
				continue
			}
			r.logger.Error("reap failed", "project_id", p.ID, "error", err)
		}
	}
}
