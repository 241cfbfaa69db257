package hotel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/hotel/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
	sessionentity "github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
)

type tenants struct {
	n   int
	err error
}

func (t *tenants) RefreshTenants(context.Context) ([]sessionentity.Tenant, error) {
	t.n++
	return nil, t.err
}

func newService(t *testing.T, status int, tr TenantRefresher) *HotelService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`[{"id":1,"name":"Playa","code":"PLY","active":true}]`))
			return
		}
		w.WriteHeader(status)
		if status >= 400 {
			_, _ = w.Write([]byte(`{"message":"Código duplicado"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":2,"name":"Sierra","code":"SRA","active":true}`))
	}))
	t.Cleanup(srv.Close)
	client := dispatch.New(dispatch.Config{BaseURL: srv.URL}, nil)
	return NewHotelService(client, mutation.New(client, nil), tr, nil)
}

func TestCreate_RefreshesTenants(t *testing.T) {
	tr := &tenants{}
	svc := newService(t, http.StatusCreated, tr)

	h, err := svc.Create(context.Background(), entity.Input{Name: "Sierra", Code: "SRA"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), h.ID)
	assert.Equal(t, 1, tr.n)
	assert.Equal(t, 1, svc.List().View().Total)
}

func TestCreate_FailureLeavesTenants(t *testing.T) {
	tr := &tenants{}
	svc := newService(t, http.StatusConflict, tr)

	_, err := svc.Create(context.Background(), entity.Input{Name: "Sierra", Code: "SRA"})
	require.Error(t, err)
	assert.Equal(t, "Código duplicado", dispatch.MessageOf(err))
	assert.Equal(t, 0, tr.n)
}

func TestDelete_TenantRefreshFailure(t *testing.T) {
	tr := &tenants{err: errors.New("offline")}
	svc := newService(t, http.StatusNoContent, tr)

	err := svc.Delete(context.Background(), 1, mutation.Always)
	var re *mutation.RefreshError
	assert.ErrorAs(t, err, &re)
}

func TestValidateInput(t *testing.T) {
	assert.NoError(t, validateInput(entity.Input{Name: "Playa", Code: "PLY-01"}, false))
	assert.Error(t, validateInput(entity.Input{Name: "Playa", Code: "ply"}, false))
	assert.Error(t, validateInput(entity.Input{Code: "PLY"}, false))
}
