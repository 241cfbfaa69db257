package crud

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/listquery"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

var (
	ErrMissingID = errors.New("crud: missing id")
	ErrReadOnly  = errors.New("crud: resource is read-only")
)

// Config describes one backend collection.
type Config struct {
	Path        string
	FeedsAlerts bool
	ReadOnly    bool
	// After runs after every successful mutation, following the list refresh.
	After       func(ctx context.Context) error
	ListOptions []listquery.Option
	Logger      *zap.SugaredLogger
}

// Resource is a typed client for one collection. It owns the list
// controller of the primary view and routes every write through the
// mutation runner so that view is refreshed afterwards.
type Resource[T any] struct {
	cfg    Config
	doer   dispatch.Doer
	runner *mutation.Runner
	list   *listquery.Controller[T]
	logger *zap.SugaredLogger
}

func New[T any](d dispatch.Doer, runner *mutation.Runner, cfg Config) *Resource[T] {
	logger := utilities.OrNop(cfg.Logger)
	opts := append([]listquery.Option{listquery.WithLogger(logger)}, cfg.ListOptions...)
	return &Resource[T]{
		cfg:    cfg,
		doer:   d,
		runner: runner,
		list:   listquery.New[T](d, cfg.Path, opts...),
		logger: logger,
	}
}

func (r *Resource[T]) Path() string { return r.cfg.Path }

func (r *Resource[T]) ReadOnly() bool { return r.cfg.ReadOnly }

// List is the controller of the primary list view.
func (r *Resource[T]) List() *listquery.Controller[T] { return r.list }

// NewList builds an extra controller over the same collection, e.g. a
// picker with its own paging.
func (r *Resource[T]) NewList(opts ...listquery.Option) *listquery.Controller[T] {
	opts = append([]listquery.Option{listquery.WithLogger(r.logger)}, opts...)
	return listquery.New[T](r.doer, r.cfg.Path, opts...)
}

// Bind ties the primary list to scope changes.
func (r *Resource[T]) Bind(ctx context.Context, src listquery.ScopeSource) (unbind func()) {
	return r.list.Bind(ctx, src)
}

func (r *Resource[T]) ItemPath(id int64) string { return fmt.Sprintf("%s/%d", r.cfg.Path, id) }

func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	if id <= 0 {
		return out, ErrMissingID
	}
	err := r.doer.Do(ctx, dispatch.Request{Method: http.MethodGet, Path: r.ItemPath(id)}, &out)
	return out, err
}

func (r *Resource[T]) Create(ctx context.Context, in any) (T, error) {
	var out T
	if r.cfg.ReadOnly {
		return out, ErrReadOnly
	}
	err := r.runner.Create(ctx, r.cfg.Path, in, &out, r.Target())
	return out, err
}

func (r *Resource[T]) Update(ctx context.Context, id int64, in any) (T, error) {
	var out T
	if r.cfg.ReadOnly {
		return out, ErrReadOnly
	}
	if id <= 0 {
		return out, ErrMissingID
	}
	err := r.runner.Update(ctx, r.ItemPath(id), in, &out, r.Target())
	return out, err
}

func (r *Resource[T]) Delete(ctx context.Context, id int64, c mutation.Confirmer) error {
	if r.cfg.ReadOnly {
		return ErrReadOnly
	}
	if id <= 0 {
		return ErrMissingID
	}
	prompt := fmt.Sprintf("Delete %s/%d?", r.cfg.Path, id)
	return r.runner.Delete(ctx, r.ItemPath(id), c, prompt, r.Target())
}

// Run sends a custom write for this collection (e.g. a state transition)
// with the same refresh protocol as Create/Update/Delete.
func (r *Resource[T]) Run(ctx context.Context, req dispatch.Request, out any) error {
	if r.cfg.ReadOnly {
		return ErrReadOnly
	}
	return r.runner.Do(ctx, req, out, r.Target())
}

// Target is what a mutation of this collection must bring up to date.
func (r *Resource[T]) Target() mutation.Target {
	t := mutation.For(r.list, r.cfg.FeedsAlerts)
	t.After = r.cfg.After
	return t
}
