package mutation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/alert"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/listquery"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

// ErrNotConfirmed is returned when the user declines a delete. Nothing is
// dispatched.
var ErrNotConfirmed = errors.New("mutation: not confirmed")

// RefreshError means the mutation itself succeeded but bringing the views
// up to date afterwards failed.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string { return "mutation applied, refresh failed: " + e.Err.Error() }

func (e *RefreshError) Unwrap() error { return e.Err }

// Recomputer is the alert aggregate.
type Recomputer interface {
	Recompute(ctx context.Context) error
}

// Confirmer asks the user once before a delete.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// Always is a Confirmer for callers that already obtained consent.
var Always Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Target describes what to bring up to date after a successful mutation.
type Target struct {
	Refresh       func(ctx context.Context) error
	Invalidate    func()
	AffectsAlerts bool
	// After runs last, e.g. to reload the tenant list after a hotel change.
	After func(ctx context.Context) error
}

type Refresher interface {
	Refresh(ctx context.Context) error
	Invalidate()
}

// For targets a list controller.
func For(r Refresher, affectsAlerts bool) Target {
	return Target{Refresh: r.Refresh, Invalidate: r.Invalidate, AffectsAlerts: affectsAlerts}
}

// Runner dispatches mutations and runs the refresh protocol on success.
type Runner struct {
	doer   dispatch.Doer
	alerts Recomputer
	logger *zap.SugaredLogger
}

type Option func(*Runner)

func WithLogger(l *zap.SugaredLogger) Option { return func(r *Runner) { r.logger = l } }

// New builds a Runner. alerts may be nil.
func New(d dispatch.Doer, alerts Recomputer, opts ...Option) *Runner {
	r := &Runner{doer: d, alerts: alerts}
	for _, o := range opts {
		o(r)
	}
	r.logger = utilities.OrNop(r.logger)
	RegisterMetrics(nil)
	return r
}

func (r *Runner) Create(ctx context.Context, path string, body, out any, t Target) error {
	return r.Do(ctx, dispatch.Request{Method: http.MethodPost, Path: path, Body: body}, out, t)
}

func (r *Runner) Update(ctx context.Context, path string, body, out any, t Target) error {
	return r.Do(ctx, dispatch.Request{Method: http.MethodPut, Path: path, Body: body}, out, t)
}

// Delete asks c exactly once, then dispatches a single DELETE.
func (r *Runner) Delete(ctx context.Context, path string, c Confirmer, prompt string, t Target) error {
	if c == nil {
		return ErrNotConfirmed
	}
	ok, err := c.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		countMutation(http.MethodDelete, "declined")
		return ErrNotConfirmed
	}
	return r.Do(ctx, dispatch.Request{Method: http.MethodDelete, Path: path}, nil, t)
}

// Do sends req and, only if it succeeds, refreshes t.
func (r *Runner) Do(ctx context.Context, req dispatch.Request, out any, t Target) error {
	if err := r.doer.Do(ctx, req, out); err != nil {
		countMutation(req.Method, "failed")
		r.logger.Warnw("mutation failed", "method", req.Method, "path", req.Path, "error", err)
		return err
	}
	countMutation(req.Method, "ok")
	r.logger.Infow("mutation applied", "method", req.Method, "path", req.Path)

	if err := r.refresh(ctx, t); err != nil {
		r.logger.Warnw("refresh after mutation failed", "method", req.Method, "path", req.Path, "error", err)
		return &RefreshError{Err: err}
	}
	return nil
}

func (r *Runner) refresh(ctx context.Context, t Target) error {
	var errs []error
	if t.Invalidate != nil {
		t.Invalidate()
	}
	if t.Refresh != nil {
		if err := t.Refresh(ctx); err != nil && !errors.Is(err, listquery.ErrSuperseded) {
			errs = append(errs, err)
		}
	}
	if t.AffectsAlerts && r.alerts != nil {
		if err := r.alerts.Recompute(ctx); err != nil && !errors.Is(err, alert.ErrSuperseded) {
			errs = append(errs, fmt.Errorf("recompute alerts: %w", err))
		}
	}
	if t.After != nil {
		if err := t.After(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
