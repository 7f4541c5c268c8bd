package core

// screen.go runs list refresh and mutations for one entity kind.
//
// Consistency: every successful create, update or delete is followed by a
// full re-fetch of the collection. The held list is never patched locally,
// so what is shown is always what the backend last returned.
//
// Errors stop here. They are logged with their support code and turned into
// the kind's per-operation banner message; callers only see a Phase.
//
// Overlapping submissions of the same dialog are not coordinated. Each one
// reaches the backend.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Resource is the backend contract for one entity kind.
type Resource[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T) error
	Update(ctx context.Context, locator string, rec T) error
	Delete(ctx context.Context, locator string) error
}

// Phase is the progress of one operation.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
	PhaseCancelled  Phase = "cancelled"
)

// Dialog is the state of an add or edit form.
type Dialog[T any] struct {
	Open   bool
	Target int64 // 0 creates, otherwise the id being edited
	Values T
	Errors map[string]string // Field messages from validation
	Phase  Phase
}

// NewDialog opens a dialog for creating (target 0) or editing a record.
func NewDialog[T any](target int64, values T) *Dialog[T] {
	return &Dialog[T]{Open: true, Target: target, Values: values, Phase: PhaseIdle}
}

// Editing reports whether the dialog updates an existing record.
func (d *Dialog[T]) Editing() bool {
	return d.Target != 0
}

// Screen pairs the list state of one kind with its backend resource.
type Screen[T any] struct {
	state *ListState[T]
	res   Resource[T]
	audit AuditStore
	log   *slog.Logger
}

// ScreenOption configures a Screen.
type ScreenOption[T any] func(*Screen[T])

// WithAudit records successful mutations to store.
func WithAudit[T any](store AuditStore) ScreenOption[T] {
	return func(s *Screen[T]) { s.audit = store }
}

// WithLogger sets the logger used for failures.
func WithLogger[T any](l *slog.Logger) ScreenOption[T] {
	return func(s *Screen[T]) {
		if l != nil {
			s.log = l
		}
	}
}

// NewScreen creates a screen over res with an empty list.
func NewScreen[T any](kind *Kind[T], res Resource[T], opts ...ScreenOption[T]) *Screen[T] {
	s := &Screen[T]{
		state: NewListState(kind),
		res:   res,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("kind", kind.Key)
	return s
}

// State returns the list state for search, sort and rendering.
func (s *Screen[T]) State() *ListState[T] {
	return s.state
}

// Refresh replaces the held collection with the backend's. On failure the
// previous collection stays and the fetch banner is shown.
func (s *Screen[T]) Refresh(ctx context.Context) bool {
	items, err := s.res.List(ctx)
	if err != nil {
		s.fail(ctx, "fetch", err, s.state.Kind().Messages.FetchFailed)
		return false
	}
	s.state.SetItems(items)
	s.state.ClearError()
	return true
}

// Save submits the dialog. On success the dialog closes and the list is
// re-fetched. On failure the dialog stays open with its values intact.
func (s *Screen[T]) Save(ctx context.Context, d *Dialog[T]) Phase {
	kind := s.state.Kind()
	d.Phase = PhaseSubmitting
	d.Errors = nil

	if kind.Validate != nil {
		if err := kind.Validate(d.Values); err != nil {
			var verrs ValidationErrors
			if errors.As(err, &verrs) {
				d.Errors = verrs.ByField()
			}
			s.log.Debug("dialog validation failed", "error", err)
			d.Phase = PhaseFailed
			return d.Phase
		}
	}

	action := ActionCreate
	var err error
	if d.Editing() {
		action = ActionUpdate
		err = s.update(ctx, d.Target, d.Values)
	} else {
		err = s.res.Create(ctx, d.Values)
	}
	if err != nil {
		s.fail(ctx, string(action), err, kind.Messages.SaveFailed)
		d.Phase = PhaseFailed
		return d.Phase
	}

	d.Phase = PhaseDone
	d.Open = false
	s.record(ctx, action, d.Target, kind.Describe(d.Values))
	s.Refresh(ctx)
	return d.Phase
}

func (s *Screen[T]) update(ctx context.Context, id int64, values T) error {
	held, ok := s.state.Find(id)
	if !ok {
		return fmt.Errorf("update %s %d: %w", s.state.Kind().Singular, id, ErrNotInList)
	}
	locator := s.state.Kind().Locator(held)
	if locator == "" {
		return fmt.Errorf("update %s %d: %w", s.state.Kind().Singular, id, ErrMissingLocator)
	}
	return s.res.Update(ctx, locator, values)
}

// Delete removes the held record with the given id after confirm approves
// it. A nil confirm or a declined confirmation cancels without contacting
// the backend.
func (s *Screen[T]) Delete(ctx context.Context, id int64, confirm func(T) bool) Phase {
	kind := s.state.Kind()
	held, ok := s.state.Find(id)
	if !ok {
		err := fmt.Errorf("delete %s %d: %w", kind.Singular, id, ErrNotInList)
		s.fail(ctx, "delete", err, kind.Messages.DeleteFailed)
		return PhaseFailed
	}
	if confirm == nil || !confirm(held) {
		return PhaseCancelled
	}

	locator := kind.Locator(held)
	if locator == "" {
		err := fmt.Errorf("delete %s %d: %w", kind.Singular, id, ErrMissingLocator)
		s.fail(ctx, "delete", err, kind.Messages.DeleteFailed)
		return PhaseFailed
	}
	if err := s.res.Delete(ctx, locator); err != nil {
		s.fail(ctx, "delete", err, kind.Messages.DeleteFailed)
		return PhaseFailed
	}

	s.record(ctx, ActionDelete, id, kind.Describe(held))
	s.Refresh(ctx)
	return PhaseDone
}

func (s *Screen[T]) fail(ctx context.Context, op string, err error, banner string) {
	um := MapError(err)
	s.log.ErrorContext(ctx, "operation failed",
		"op", op,
		"code", um.Code,
		"error", err,
	)
	s.state.SetError(banner)
}

func (s *Screen[T]) record(ctx context.Context, action AuditAction, id int64, summary string) {
	if s.audit == nil {
		return
	}
	entry := NewAuditEntry(ctx, action, s.state.Kind().Key, id, summary)
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.WarnContext(ctx, "audit record failed", "action", action, "error", err)
	}
}
