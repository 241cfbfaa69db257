package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/repo"
)

type recorder struct {
	mu     sync.Mutex
	scopes map[string][]string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.scopes[req.URL.Path] = append(r.scopes[req.URL.Path], req.Header.Get(dispatch.DefaultScopeHeader))
	r.mu.Unlock()
	switch req.URL.Path {
	case "/auth/login":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok",
			"user":  entity.Identity{ID: 7, Username: "marta", Role: entity.RoleHotelAdmin, Hotels: []int64{1, 2}},
		})
	case "/alerts/summary":
		_, _ = w.Write([]byte(`{"warrantyExpiring":1,"pendingMaintenance":0,"overdueMaintenance":0}`))
	default:
		_, _ = w.Write([]byte(`{"data":[],"totalCount":0}`))
	}
}

func (r *recorder) last(path string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.scopes[path]
	if len(s) == 0 {
		return "<none>"
	}
	return s[len(s)-1]
}

func TestApp_ScopeSwitchRefetchesBoundViews(t *testing.T) {
	rec := &recorder{scopes: map[string][]string{}}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	ctx := context.Background()
	mem := repo.NewMemory()
	a, err := NewWithRepo(ctx, Config{Dispatch: dispatch.Config{BaseURL: srv.URL}}, mem, nil)
	require.NoError(t, err)
	a.Bind(ctx)
	defer a.Close()

	require.NoError(t, a.Login(ctx, "marta", "pw"))
	a.Wait()
	assert.Equal(t, int64(0), a.Store.ActiveScope())
	assert.Equal(t, "", rec.last("/alerts/summary"))

	require.NoError(t, a.Devices.List().SetPage(ctx, 3))
	require.NoError(t, a.Store.ChangeScope(ctx, 2))
	a.Wait()

	assert.Equal(t, 0, a.Devices.List().View().Page)
	assert.Equal(t, "2", rec.last("/devices"))
	assert.Equal(t, "2", rec.last("/maintenances"))
	assert.Equal(t, "2", rec.last("/alerts/summary"))
}

func TestApp_RestoresPersistedSession(t *testing.T) {
	ctx := context.Background()
	mem := repo.NewMemory()
	require.NoError(t, mem.Save(ctx, entity.Snapshot{
		Credential:  "tok",
		Identity:    &entity.Identity{ID: 1, Role: entity.RoleSuperAdmin},
		ActiveScope: 4,
	}))

	a, err := NewWithRepo(ctx, Config{Dispatch: dispatch.Config{BaseURL: "http://127.0.0.1:1"}}, mem, nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, int64(4), a.Store.ActiveScope())
	assert.Equal(t, "tok", a.Store.Credential())
}
