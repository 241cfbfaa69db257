package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
)

type backend struct {
	url     string
	deletes atomic.Int32
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok",
			"user":  entity.Identity{ID: 3, Username: "luis", Role: entity.RoleHotelAux, Hotels: []int64{1, 2}},
		})
	})
	mux.HandleFunc("/hotels/accessible", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"Playa","code":"PLY","active":true},{"id":2,"name":"Sierra","code":"SRA","active":true}]`))
	})
	mux.HandleFunc("/alerts/summary", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"warrantyExpiring":2,"pendingMaintenance":1,"overdueMaintenance":0}`))
	})
	mux.HandleFunc("/devices", func(w http.ResponseWriter, r *http.Request) {
		scope := r.Header.Get(dispatch.DefaultScopeHeader)
		if scope == "" {
			scope = "0"
		}
		_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"AP","serial":"S1","hotelId":` + scope + `}],"totalCount":1}`))
	})
	mux.HandleFunc("/devices/1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			b.deletes.Add(1)
			w.WriteHeader(http.StatusNoContent)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	b.url = srv.URL
	return b
}

// run executes one hotelctl invocation against the shared state file.
func run(t *testing.T, b *backend, state, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &out)
	root.SetArgs(append([]string{"--api-url", b.url, "--state", "file", "--state-file", state}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_SessionSurvivesInvocations(t *testing.T) {
	b := newBackend(t)
	state := filepath.Join(t.TempDir(), "session.json")

	out, err := run(t, b, state, "", "login", "-u", "luis", "-p", "secreto")
	require.NoError(t, err)
	assert.Contains(t, out, "luis (hotel_aux, id 3)")

	out, err = run(t, b, state, "", "hotels")
	require.NoError(t, err)
	assert.Contains(t, out, "Sierra (SRA)")
	assert.NotContains(t, out, "all hotels")

	_, err = run(t, b, state, "", "scope", "set", "9")
	assert.Error(t, err)

	out, err = run(t, b, state, "", "scope", "set", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "scope: hotel 2")

	out, err = run(t, b, state, "", "--out", "json", "devices", "list")
	require.NoError(t, err)
	var view struct {
		Rows []struct {
			HotelID int64 `json:"hotelId"`
		} `json:"rows"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Rows, 1)
	assert.Equal(t, int64(2), view.Rows[0].HotelID)

	out, err = run(t, b, state, "", "alerts")
	require.NoError(t, err)
	assert.Contains(t, out, "warranty expiring:    2")

	_, err = run(t, b, state, "", "scope", "clear")
	assert.Error(t, err)

	out, err = run(t, b, state, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "logged out")

	out, err = run(t, b, state, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")
}

func TestCLI_DeleteAsksFirst(t *testing.T) {
	b := newBackend(t)
	state := filepath.Join(t.TempDir(), "session.json")
	_, err := run(t, b, state, "", "login", "-u", "luis", "-p", "secreto")
	require.NoError(t, err)

	out, err := run(t, b, state, "n\n", "devices", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "cancelled")
	assert.Equal(t, int32(0), b.deletes.Load())

	out, err = run(t, b, state, "", "devices", "delete", "1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted device/1")
	assert.Equal(t, int32(1), b.deletes.Load())
}

func TestCLI_ReadOnlyAudit(t *testing.T) {
	b := newBackend(t)
	state := filepath.Join(t.TempDir(), "session.json")
	_, err := run(t, b, state, "", "audit", "delete", "4", "-y")
	assert.ErrorContains(t, err, "audit is read-only")
}
