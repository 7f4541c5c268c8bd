// Package admin provides administrative operations against the backend.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/trainer/internal/core"
)

// ResetTimeout bounds a reset when the caller's context has no deadline.
const ResetTimeout = 30 * time.Second

// Backend is the part of the gateway client a reset needs.
type Backend interface {
	Reset(ctx context.Context) error
	BaseURL() string
}

// Resetter restores the backend's demo data set. Every customer and
// training is replaced, so a successful reset is audited as critical.
type Resetter struct {
	backend Backend
	audit   core.AuditStore
	log     *slog.Logger
}

// NewResetter creates a Resetter. audit may be nil.
func NewResetter(backend Backend, audit core.AuditStore, log *slog.Logger) *Resetter {
	if log == nil {
		log = slog.Default()
	}
	return &Resetter{backend: backend, audit: audit, log: log.With("component", "admin")}
}

type resetStep struct {
	name string
	run  func(ctx context.Context) error
}

// Reset calls the backend reset endpoint and records the outcome.
func (r *Resetter) Reset(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ResetTimeout)
		defer cancel()
	}

	start := time.Now()
	r.log.WarnContext(ctx, "resetting backend data", "backend", r.backend.BaseURL())

	if err := r.runSteps(ctx, []resetStep{
		{name: "backend", run: r.backend.Reset},
		{name: "audit", run: r.record},
	}); err != nil {
		return err
	}

	r.log.InfoContext(ctx, "backend data reset", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (r *Resetter) runSteps(ctx context.Context, steps []resetStep) error {
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			um := core.MapError(err)
			r.log.ErrorContext(ctx, "reset step failed", "step", step.name, "code", um.Code, "error", err)
			return fmt.Errorf("reset %s: %w", step.name, err)
		}
	}
	return nil
}

// record writes the audit entry. A failing audit store does not undo the
// reset, so its error is logged and swallowed.
func (r *Resetter) record(ctx context.Context) error {
	if r.audit == nil {
		return nil
	}
	entry := core.NewAuditEntry(ctx, core.ActionReset, "backend", 0, "demo data restored at "+r.backend.BaseURL())
	if err := r.audit.Record(ctx, entry); err != nil {
		r.log.WarnContext(ctx, "audit record failed", "action", core.ActionReset, "error", err)
	}
	return nil
}
