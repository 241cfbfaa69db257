package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
)

func TestAuditService_ListNewestFirstAndFilter(t *testing.T) {
	var mu sync.Mutex
	var last url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		last = r.URL.Query()
		mu.Unlock()
		_, _ = w.Write([]byte(`{"data":[{"id":1,"action":"delete","entity":"device","createdAt":"2026-01-02T10:00:00Z"}],"totalCount":1}`))
	}))
	defer srv.Close()

	svc := NewAuditService(dispatch.New(dispatch.Config{BaseURL: srv.URL}, nil), nil)
	ctx := context.Background()
	require.NoError(t, svc.List().Fetch(ctx))
	mu.Lock()
	assert.Equal(t, "createdAt", last.Get("sortBy"))
	assert.Equal(t, "desc", last.Get("order"))
	mu.Unlock()

	require.NoError(t, svc.FilterEntity(ctx, "device"))
	mu.Lock()
	assert.Equal(t, "device", last.Get("entity"))
	mu.Unlock()

	v := svc.List().View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "delete", v.Rows[0].Action)
	assert.Equal(t, 2026, v.Rows[0].CreatedAt.Year())
}

func TestAuditService_ReadOnly(t *testing.T) {
	svc := NewAuditService(dispatch.New(dispatch.Config{BaseURL: "http://127.0.0.1:1"}, nil), nil)
	_, err := svc.Resource().Create(context.Background(), map[string]string{})
	assert.ErrorIs(t, err, crud.ErrReadOnly)
}
