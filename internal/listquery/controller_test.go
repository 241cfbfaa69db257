package listquery

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
)

type row struct {
	ID     int     `json:"id"`
	Nombre *string `json:"nombre"`
}

// stubDoer answers every call with fn and records the requests.
type stubDoer struct {
	mu   sync.Mutex
	reqs []dispatch.Request
	fn   func(req dispatch.Request) (string, error)
}

func (s *stubDoer) Do(_ context.Context, req dispatch.Request, out any) error {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	body, err := s.fn(req)
	if err != nil {
		return err
	}
	*(out.(*json.RawMessage)) = json.RawMessage(body)
	return nil
}

func (s *stubDoer) last() dispatch.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reqs[len(s.reqs)-1]
}

func (s *stubDoer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reqs)
}

func fixed(body string) *stubDoer {
	return &stubDoer{fn: func(dispatch.Request) (string, error) { return body, nil }}
}

// gatedDoer blocks each call until the test releases it.
type gatedDoer struct {
	calls chan *gatedCall
}

type gatedCall struct {
	req     dispatch.Request
	release chan gatedReply
}

type gatedReply struct {
	body string
	err  error
}

func newGated() *gatedDoer { return &gatedDoer{calls: make(chan *gatedCall, 8)} }

func (g *gatedDoer) Do(_ context.Context, req dispatch.Request, out any) error {
	c := &gatedCall{req: req, release: make(chan gatedReply, 1)}
	g.calls <- c
	r := <-c.release
	if r.err != nil {
		return r.err
	}
	*(out.(*json.RawMessage)) = json.RawMessage(r.body)
	return nil
}

func (g *gatedDoer) next(t *testing.T) *gatedCall {
	t.Helper()
	select {
	case c := <-g.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no request issued")
		return nil
	}
}

func TestFetch_EnvelopeResponse(t *testing.T) {
	d := fixed(`{"data":[{"id":1},{"id":2}],"totalCount":42}`)
	c := New[row](d, "/devices", WithPageSize(2))

	require.NoError(t, c.Fetch(context.Background()))

	v := c.View()
	assert.Len(t, v.Rows, 2)
	assert.Equal(t, 42, v.Total)
	assert.True(t, v.TotalTrusted)
	assert.True(t, v.Loaded)
	assert.Equal(t, 21, v.Pages())

	q := d.last().Query
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "2", q.Get("limit"))
	assert.Equal(t, "/devices", d.last().Path)
}

func TestFetch_BareArraySortedAndPaged(t *testing.T) {
	d := fixed(`[{"id":1,"nombre":"B"},{"id":2,"nombre":null},{"id":3,"nombre":"A"},{"id":4,"nombre":"c"}]`)
	c := New[row](d, "/users", WithPageSize(2), WithSort(SortConfig{Key: "nombre"}))

	require.NoError(t, c.Fetch(context.Background()))
	v := c.View()
	assert.Equal(t, 4, v.Total)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, 3, v.Rows[0].ID)
	assert.Equal(t, 1, v.Rows[1].ID)

	require.NoError(t, c.SetPage(context.Background(), 1))
	v = c.View()
	require.Len(t, v.Rows, 2)
	assert.Equal(t, 4, v.Rows[0].ID)
	assert.Equal(t, 2, v.Rows[1].ID)
	assert.Equal(t, "2", d.last().Query.Get("page"))
}

func TestFetch_BareArraySearch(t *testing.T) {
	d := fixed(`[{"id":1,"nombre":"Lobby"},{"id":2,"nombre":"Cocina"}]`)
	c := New[row](d, "/users")

	require.NoError(t, c.SetSearch(context.Background(), "coc"))
	v := c.View()
	assert.Equal(t, 1, v.Total)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, 2, v.Rows[0].ID)
	assert.Equal(t, "coc", d.last().Query.Get("search"))
}

func TestFetch_TotalFollowsLastResponse(t *testing.T) {
	totals := []string{
		`{"data":[],"totalCount":7}`,
		`{"data":[],"totalCount":3}`,
	}
	i := 0
	d := &stubDoer{fn: func(dispatch.Request) (string, error) {
		b := totals[i]
		i++
		return b, nil
	}}
	c := New[row](d, "/devices")

	require.NoError(t, c.Fetch(context.Background()))
	assert.Equal(t, 7, c.View().Total)
	require.NoError(t, c.Fetch(context.Background()))
	assert.Equal(t, 3, c.View().Total)
}

func TestFetch_StaleResponseDiscarded(t *testing.T) {
	g := newGated()
	c := New[row](g, "/devices")
	ctx := context.Background()

	errA := make(chan error, 1)
	go func() { errA <- c.Fetch(ctx) }()
	callA := g.next(t)

	errB := make(chan error, 1)
	go func() { errB <- c.SetSearch(ctx, "lobby") }()
	callB := g.next(t)

	callB.release <- gatedReply{body: `{"data":[{"id":2}],"totalCount":1}`}
	require.NoError(t, <-errB)

	callA.release <- gatedReply{body: `{"data":[{"id":1},{"id":9}],"totalCount":50}`}
	assert.ErrorIs(t, <-errA, ErrSuperseded)

	v := c.View()
	assert.Equal(t, 1, v.Total)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, 2, v.Rows[0].ID)
	assert.Equal(t, uint64(2), v.Seq)
}

func TestFetch_StaleFailureDiscarded(t *testing.T) {
	g := newGated()
	c := New[row](g, "/devices")
	ctx := context.Background()

	errA := make(chan error, 1)
	go func() { errA <- c.Fetch(ctx) }()
	callA := g.next(t)
	errB := make(chan error, 1)
	go func() { errB <- c.Fetch(ctx) }()
	callB := g.next(t)

	callB.release <- gatedReply{body: `{"data":[{"id":2}],"totalCount":1}`}
	require.NoError(t, <-errB)
	callA.release <- gatedReply{err: errors.New("boom")}
	assert.ErrorIs(t, <-errA, ErrSuperseded)

	v := c.View()
	assert.NoError(t, v.Err)
	assert.Len(t, v.Rows, 1)
}

func TestFetch_FirstFailureClearsRows(t *testing.T) {
	d := &stubDoer{fn: func(dispatch.Request) (string, error) {
		return "", &dispatch.Error{Kind: dispatch.KindHTTP, Status: 500, Message: "Error interno"}
	}}
	c := New[row](d, "/devices")

	err := c.Fetch(context.Background())
	require.Error(t, err)

	v := c.View()
	assert.False(t, v.Loaded)
	assert.Empty(t, v.Rows)
	assert.Equal(t, 0, v.Total)
	assert.Equal(t, "Error interno", v.Error)
}

func TestFetch_LaterFailureKeepsRows(t *testing.T) {
	fail := false
	d := &stubDoer{fn: func(dispatch.Request) (string, error) {
		if fail {
			return "", &dispatch.Error{Kind: dispatch.KindNetwork, Err: errors.New("connection refused")}
		}
		return `{"data":[{"id":1},{"id":2}],"totalCount":2}`, nil
	}}
	c := New[row](d, "/devices")
	require.NoError(t, c.Fetch(context.Background()))

	fail = true
	require.Error(t, c.SetPage(context.Background(), 1))

	v := c.View()
	assert.True(t, v.Loaded)
	assert.Len(t, v.Rows, 2)
	assert.Equal(t, 2, v.Total)
	assert.Error(t, v.Err)
	assert.Equal(t, 1, v.Page)
}

func TestSetters_ResetPage(t *testing.T) {
	ctx := context.Background()
	d := fixed(`{"data":[],"totalCount":100}`)
	c := New[row](d, "/devices")

	cases := []struct {
		name string
		fn   func() error
	}{
		{"page size", func() error { return c.SetPageSize(ctx, 25) }},
		{"sort", func() error { _, err := c.RequestSort(ctx, "serial"); return err }},
		{"search", func() error { return c.SetSearch(ctx, "sn") }},
		{"filter", func() error { return c.SetFilter(ctx, "status", "active") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, c.SetPage(ctx, 3))
			assert.Equal(t, "4", d.last().Query.Get("page"))

			require.NoError(t, tc.fn())
			assert.Equal(t, 0, c.View().Page)
			assert.Equal(t, "1", d.last().Query.Get("page"))
		})
	}
}

func TestRequestSort_TogglesAndSendsOrder(t *testing.T) {
	ctx := context.Background()
	d := fixed(`{"data":[],"totalCount":0}`)
	c := New[row](d, "/users", WithSort(SortConfig{Key: "nombre", Direction: Asc}))

	cfg, err := c.RequestSort(ctx, "nombre")
	require.NoError(t, err)
	assert.Equal(t, SortConfig{Key: "nombre", Direction: Desc}, cfg)
	assert.Equal(t, "desc", d.last().Query.Get("order"))

	cfg, err = c.RequestSort(ctx, "rol")
	require.NoError(t, err)
	assert.Equal(t, SortConfig{Key: "rol", Direction: Asc}, cfg)
	assert.Equal(t, "rol", d.last().Query.Get("sortBy"))
	assert.Equal(t, "asc", d.last().Query.Get("order"))
}

func TestApply_PageOnlyKeepsPage(t *testing.T) {
	ctx := context.Background()
	d := fixed(`{"data":[],"totalCount":0}`)
	c := New[row](d, "/devices")

	page := 2
	require.NoError(t, c.Apply(ctx, Update{Page: &page}))
	assert.Equal(t, 2, c.View().Page)

	search := "sn"
	page = 5
	require.NoError(t, c.Apply(ctx, Update{Page: &page, Search: &search}))
	assert.Equal(t, 0, c.View().Page)
	assert.Equal(t, 2, d.count())
}

func TestInvalidate(t *testing.T) {
	d := fixed(`{"data":[],"totalCount":4}`)
	c := New[row](d, "/devices")
	require.NoError(t, c.Fetch(context.Background()))

	c.Invalidate()
	assert.False(t, c.View().TotalTrusted)
	require.NoError(t, c.Refresh(context.Background()))
	assert.True(t, c.View().TotalTrusted)
}

func TestBind_ScopeChangeResetsPage(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(nil, nil)
	require.NoError(t, store.Login(ctx, "tok", &entity.Identity{ID: 1, Role: entity.RoleHotelAdmin, Hotels: []int64{1, 2}}))

	d := fixed(`{"data":[{"id":1}],"totalCount":40}`)
	c := New[row](d, "/devices")
	unbind := c.Bind(ctx, store)
	defer unbind()

	require.NoError(t, c.SetPage(ctx, 3))
	assert.Equal(t, "4", d.last().Query.Get("page"))

	require.NoError(t, store.ChangeScope(ctx, 2))
	assert.Equal(t, 0, c.View().Page)
	c.Wait()

	assert.Equal(t, 2, d.count())
	assert.Equal(t, "1", d.last().Query.Get("page"))
}

func TestBind_LogoutDropsRows(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(nil, nil)
	require.NoError(t, store.Login(ctx, "tok", &entity.Identity{ID: 1, Role: entity.RoleSuperAdmin}))

	d := fixed(`{"data":[{"id":1}],"totalCount":1}`)
	c := New[row](d, "/devices")
	defer c.Bind(ctx, store)()
	require.NoError(t, c.Fetch(ctx))

	store.Logout(ctx)
	v := c.View()
	assert.False(t, v.Loaded)
	assert.Empty(t, v.Rows)
	assert.Equal(t, 1, d.count())
}

func TestRefresh_StepsBackFromEmptyTrailingPage(t *testing.T) {
	ctx := context.Background()
	total := 11
	d := &stubDoer{fn: func(req dispatch.Request) (string, error) {
		if req.Query.Get("page") == "2" && total == 10 {
			return `{"data":[],"totalCount":10}`, nil
		}
		if total == 10 {
			return `{"data":[{"id":1},{"id":2},{"id":3},{"id":4},{"id":5},{"id":6},{"id":7},{"id":8},{"id":9},{"id":10}],"totalCount":10}`, nil
		}
		return `{"data":[{"id":11}],"totalCount":11}`, nil
	}}
	c := New[row](d, "/devices", WithPageSize(10))
	require.NoError(t, c.SetPage(ctx, 1))
	assert.Len(t, c.View().Rows, 1)

	total = 10
	require.NoError(t, c.Refresh(ctx))

	v := c.View()
	assert.Equal(t, 0, v.Page)
	assert.Len(t, v.Rows, 10)
	assert.Equal(t, 10, v.Total)
	assert.Equal(t, 3, d.count())
}

func TestFetch_EnvelopeWithoutTotalIsUntrusted(t *testing.T) {
	d := fixed(`{"data":[{"id":1},{"id":2}]}`)
	c := New[row](d, "/devices", WithPageSize(2))

	require.NoError(t, c.Fetch(context.Background()))

	v := c.View()
	assert.Len(t, v.Rows, 2)
	assert.Equal(t, 2, v.Total)
	assert.False(t, v.TotalTrusted)
	assert.True(t, v.Loaded)
}

func TestApply_ToggleSortsInOneFetch(t *testing.T) {
	ctx := context.Background()
	d := fixed(`{"data":[],"totalCount":0}`)
	c := New[row](d, "/users", WithSort(SortConfig{Key: "nombre", Direction: Asc}))

	limit := 5
	require.NoError(t, c.Apply(ctx, Update{PageSize: &limit, Toggle: "nombre"}))
	assert.Equal(t, 1, d.count())
	v := c.View()
	assert.Equal(t, SortConfig{Key: "nombre", Direction: Desc}, v.Sort)
	assert.Equal(t, 5, v.PageSize)
	assert.Equal(t, "desc", d.last().Query.Get("order"))
	assert.Equal(t, "5", d.last().Query.Get("limit"))
}
