package listquery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

const DefaultPageSize = 10

// ErrSuperseded is returned by Fetch when a newer request was applied first
// and this response was dropped.
var ErrSuperseded = errors.New("listquery: response superseded by a newer request")

// state is the query the user controls. page is 0-based.
type state struct {
	page     int
	pageSize int
	sort     SortConfig
	search   string
	filters  map[string]string
}

func (s state) clone() state {
	out := s
	if s.filters != nil {
		out.filters = make(map[string]string, len(s.filters))
		for k, v := range s.filters {
			out.filters[k] = v
		}
	}
	return out
}

// query renders the wire parameters. The backend numbers pages from 1.
func (s state) query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(s.page+1))
	q.Set("limit", strconv.Itoa(s.pageSize))
	if s.sort.Key != "" {
		q.Set("sortBy", s.sort.Key)
		q.Set("order", string(s.sort.Direction))
	}
	if s.search != "" {
		q.Set("search", s.search)
	}
	for k, v := range s.filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// View is what a list screen renders.
type View[T any] struct {
	Rows         []T               `json:"rows"`
	Total        int               `json:"total"`
	TotalTrusted bool              `json:"total_trusted"`
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
	Sort         SortConfig        `json:"sort"`
	Search       string            `json:"search,omitempty"`
	Filters      map[string]string `json:"filters,omitempty"`
	Loaded       bool              `json:"loaded"`
	Err          error             `json:"-"`
	Error        string            `json:"error,omitempty"`
	Seq          uint64            `json:"seq"`
}

// Pages is the page count implied by Total, at least 1.
func (v View[T]) Pages() int {
	if v.PageSize <= 0 || v.Total <= 0 {
		return 1
	}
	return (v.Total + v.PageSize - 1) / v.PageSize
}

// Controller owns one list screen: its query state, the rows of the last
// applied response and the sequence guard that orders responses.
type Controller[T any] struct {
	doer   dispatch.Doer
	path   string
	logger *zap.SugaredLogger

	mu      sync.Mutex
	st      state
	rows    []T
	total   int
	trusted bool
	loaded  bool
	err     error
	issued  uint64
	applied uint64

	bg sync.WaitGroup
}

type Option func(*config)

type config struct {
	pageSize int
	sort     SortConfig
	filters  map[string]string
	logger   *zap.SugaredLogger
}

func WithPageSize(n int) Option { return func(c *config) { c.pageSize = n } }

func WithSort(s SortConfig) Option { return func(c *config) { c.sort = s } }

// WithFilter sets a fixed filter sent with every request.
func WithFilter(key, value string) Option {
	return func(c *config) {
		if c.filters == nil {
			c.filters = map[string]string{}
		}
		c.filters[key] = value
	}
}

func WithLogger(l *zap.SugaredLogger) Option { return func(c *config) { c.logger = l } }

// New builds a controller for the collection at path.
func New[T any](d dispatch.Doer, path string, opts ...Option) *Controller[T] {
	cfg := config{pageSize: DefaultPageSize}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.pageSize <= 0 {
		cfg.pageSize = DefaultPageSize
	}
	if cfg.sort.Key != "" && cfg.sort.Direction == "" {
		cfg.sort.Direction = Asc
	}
	RegisterMetrics(nil)
	return &Controller[T]{
		doer:   d,
		path:   path,
		logger: utilities.OrNop(cfg.logger),
		st: state{
			pageSize: cfg.pageSize,
			sort:     cfg.sort,
			filters:  cfg.filters,
		}.clone(),
	}
}

func (c *Controller[T]) Path() string { return c.path }

// View returns a copy of the current state.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.st.clone()
	v := View[T]{
		Rows:         append([]T(nil), c.rows...),
		Total:        c.total,
		TotalTrusted: c.trusted,
		Page:         st.page,
		PageSize:     st.pageSize,
		Sort:         st.sort,
		Search:       st.search,
		Filters:      st.filters,
		Loaded:       c.loaded,
		Err:          c.err,
		Seq:          c.applied,
	}
	if v.Rows == nil {
		v.Rows = []T{}
	}
	if c.err != nil {
		v.Error = dispatch.MessageOf(c.err)
	}
	return v
}

// Fetch issues one request for the current state and applies the response
// unless a newer one was applied first.
func (c *Controller[T]) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	st := c.st.clone()
	c.mu.Unlock()

	var raw json.RawMessage
	err := c.doer.Do(ctx, dispatch.Request{Method: http.MethodGet, Path: c.path, Query: st.query()}, &raw)
	var pg page[T]
	if err == nil {
		pg, err = decodePage[T](raw, st)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.applied {
		countStale(c.path)
		c.logger.Debugw("stale list response dropped", "path", c.path, "seq", seq, "applied", c.applied)
		return ErrSuperseded
	}
	c.applied = seq
	if err != nil {
		c.err = err
		if !c.loaded {
			c.rows = nil
			c.total = 0
		}
		c.logger.Warnw("list fetch failed", "path", c.path, "seq", seq, "error", err)
		return err
	}
	c.rows = pg.rows
	c.total = pg.total
	c.trusted = pg.trusted
	c.loaded = true
	c.err = nil
	return nil
}

// Refresh refetches the current page. If the page came back empty while
// rows still exist before it (the last row of a trailing page was
// deleted), it steps back to the new last page.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	if err := c.Fetch(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	last := 0
	if c.st.pageSize > 0 && c.total > 0 {
		last = (c.total - 1) / c.st.pageSize
	}
	behind := len(c.rows) == 0 && c.total > 0 && c.st.page > last
	if behind {
		c.st.page = last
	}
	c.mu.Unlock()
	if !behind {
		return nil
	}
	return c.Fetch(ctx)
}

// Invalidate marks the displayed total as no longer authoritative until
// the next applied response.
func (c *Controller[T]) Invalidate() {
	c.mu.Lock()
	c.trusted = false
	c.mu.Unlock()
}

// SetPage moves to page (0-based). It is the only change that keeps the
// current position instead of resetting to the first page.
func (c *Controller[T]) SetPage(ctx context.Context, page int) error {
	if page < 0 {
		page = 0
	}
	c.mu.Lock()
	c.st.page = page
	c.mu.Unlock()
	return c.Fetch(ctx)
}

func (c *Controller[T]) SetPageSize(ctx context.Context, n int) error {
	if n <= 0 {
		n = DefaultPageSize
	}
	return c.mutate(ctx, func(s *state) { s.pageSize = n })
}

// RequestSort applies the toggle rule for key and returns the new config.
func (c *Controller[T]) RequestSort(ctx context.Context, key string) (SortConfig, error) {
	var next SortConfig
	err := c.mutate(ctx, func(s *state) {
		s.sort = s.sort.Request(key)
		next = s.sort
	})
	return next, err
}

func (c *Controller[T]) SetSearch(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	return c.mutate(ctx, func(s *state) { s.search = term })
}

// SetFilter sets or, with an empty value, clears one filter.
func (c *Controller[T]) SetFilter(ctx context.Context, key, value string) error {
	return c.mutate(ctx, func(s *state) {
		if value == "" {
			delete(s.filters, key)
			return
		}
		if s.filters == nil {
			s.filters = map[string]string{}
		}
		s.filters[key] = value
	})
}

// Update is a batch of changes applied with a single fetch.
type Update struct {
	Page     *int
	PageSize *int
	Sort     *SortConfig
	Search   *string
	Filters  map[string]string
	// Toggle requests a sort by key after Sort is applied, flipping the
	// direction when key is already active.
	Toggle string
}

// Apply merges u into the state. If anything other than the page changed,
// the page goes back to 0 regardless of u.Page.
func (c *Controller[T]) Apply(ctx context.Context, u Update) error {
	c.mu.Lock()
	old := c.st.clone()
	next := old.clone()
	if u.PageSize != nil && *u.PageSize > 0 {
		next.pageSize = *u.PageSize
	}
	if u.Sort != nil {
		s := *u.Sort
		if s.Key != "" && s.Direction == "" {
			s.Direction = Asc
		}
		if s.Key == "" {
			s = SortConfig{}
		}
		next.sort = s
	}
	if u.Toggle != "" {
		next.sort = next.sort.Request(u.Toggle)
	}
	if u.Search != nil {
		next.search = strings.TrimSpace(*u.Search)
	}
	for k, v := range u.Filters {
		if v == "" {
			delete(next.filters, k)
			continue
		}
		if next.filters == nil {
			next.filters = map[string]string{}
		}
		next.filters[k] = v
	}
	if u.Page != nil && *u.Page >= 0 {
		next.page = *u.Page
	}
	if !sameQuery(old, next) {
		next.page = 0
	}
	c.st = next
	c.mu.Unlock()
	return c.Fetch(ctx)
}

// mutate applies fn and resets the page before fetching.
func (c *Controller[T]) mutate(ctx context.Context, fn func(*state)) error {
	c.mu.Lock()
	fn(&c.st)
	c.st.page = 0
	c.mu.Unlock()
	return c.Fetch(ctx)
}

// ScopeSource is the part of the session store a controller listens to.
type ScopeSource interface {
	Subscribe(fn func(session.Change)) (cancel func())
}

// Bind resets and refetches the list whenever the active scope changes.
// The page reset happens before the refetch is issued. Logout drops the
// rows entirely.
func (c *Controller[T]) Bind(ctx context.Context, src ScopeSource) (unbind func()) {
	return src.Subscribe(func(ch session.Change) {
		if ch.Kind == session.ChangeLogout {
			c.reset()
			return
		}
		if !ch.ScopeChanged() {
			return
		}
		c.mu.Lock()
		c.st.page = 0
		c.mu.Unlock()
		c.bg.Add(1)
		go func() {
			defer c.bg.Done()
			if err := c.Fetch(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
				c.logger.Debugw("refetch after scope change failed", "path", c.path, "error", err)
			}
		}()
	})
}

// Wait blocks until background refetches started by Bind have finished.
func (c *Controller[T]) Wait() { c.bg.Wait() }

func (c *Controller[T]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.page = 0
	c.rows = nil
	c.total = 0
	c.trusted = false
	c.loaded = false
	c.err = nil
	// Anything still in flight belongs to the old session.
	c.issued++
	c.applied = c.issued
}

func sameQuery(a, b state) bool {
	if a.pageSize != b.pageSize || a.sort != b.sort || a.search != b.search {
		return false
	}
	if len(a.filters) != len(b.filters) {
		return false
	}
	for k, v := range a.filters {
		if b.filters[k] != v {
			return false
		}
	}
	return true
}
