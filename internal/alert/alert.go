package alert

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/listquery"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

const DefaultPath = "/alerts/summary"

// ErrSuperseded is returned by a recompute whose response arrived after a
// newer one was applied.
var ErrSuperseded = errors.New("alert: response superseded by a newer request")

// Summary is the cross-view alert badge.
type Summary struct {
	WarrantyExpiring   int `json:"warrantyExpiring"`
	PendingMaintenance int `json:"pendingMaintenance"`
	OverdueMaintenance int `json:"overdueMaintenance"`
}

func (s Summary) Total() int {
	return s.WarrantyExpiring + s.PendingMaintenance + s.OverdueMaintenance
}

// Aggregate holds the last applied Summary for the active scope.
type Aggregate struct {
	doer   dispatch.Doer
	path   string
	logger *zap.SugaredLogger

	mu      sync.Mutex
	summary Summary
	loaded  bool
	err     error
	issued  uint64
	applied uint64

	lmu       sync.Mutex
	listeners map[int]func(Summary)
	nextID    int

	bg sync.WaitGroup
}

type Option func(*Aggregate)

func WithLogger(l *zap.SugaredLogger) Option { return func(a *Aggregate) { a.logger = l } }

func WithPath(p string) Option { return func(a *Aggregate) { a.path = p } }

func New(d dispatch.Doer, opts ...Option) *Aggregate {
	a := &Aggregate{
		doer:      d,
		path:      DefaultPath,
		listeners: map[int]func(Summary){},
	}
	for _, o := range opts {
		o(a)
	}
	a.logger = utilities.OrNop(a.logger)
	return a
}

// Recompute fetches the counts. Responses are applied in issue order.
func (a *Aggregate) Recompute(ctx context.Context) error {
	a.mu.Lock()
	a.issued++
	seq := a.issued
	a.mu.Unlock()

	var s Summary
	err := a.doer.Do(ctx, dispatch.Request{Method: "GET", Path: a.path}, &s)

	a.mu.Lock()
	if seq < a.applied {
		a.mu.Unlock()
		return ErrSuperseded
	}
	a.applied = seq
	if err != nil {
		a.err = err
		a.mu.Unlock()
		a.logger.Warnw("alert recompute failed", "error", err)
		return err
	}
	a.summary = s
	a.loaded = true
	a.err = nil
	a.mu.Unlock()

	a.emit(s)
	return nil
}

// Current returns the last applied summary and whether one was ever loaded.
func (a *Aggregate) Current() (Summary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary, a.loaded
}

// Err is the error of the last applied recompute, if it failed.
func (a *Aggregate) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Subscribe registers fn for every applied summary.
func (a *Aggregate) Subscribe(fn func(Summary)) (cancel func()) {
	a.lmu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.lmu.Unlock()
	return func() {
		a.lmu.Lock()
		delete(a.listeners, id)
		a.lmu.Unlock()
	}
}

func (a *Aggregate) emit(s Summary) {
	a.lmu.Lock()
	fns := make([]func(Summary), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.lmu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// Bind recomputes whenever the scope changes and clears on logout.
func (a *Aggregate) Bind(ctx context.Context, src listquery.ScopeSource) (unbind func()) {
	return src.Subscribe(func(ch session.Change) {
		if ch.Kind == session.ChangeLogout {
			a.reset()
			return
		}
		if !ch.ScopeChanged() && ch.Kind != session.ChangeLogin {
			return
		}
		a.bg.Add(1)
		go func() {
			defer a.bg.Done()
			_ = a.Recompute(ctx)
		}()
	})
}

// Wait blocks until recomputes started by Bind have finished.
func (a *Aggregate) Wait() { a.bg.Wait() }

func (a *Aggregate) reset() {
	a.mu.Lock()
	a.summary = Summary{}
	a.loaded = false
	a.err = nil
	a.issued++
	a.applied = a.issued
	a.mu.Unlock()
}
