package user

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
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session"
	sessionentity "github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/user/entity"
)

func TestValidateInput(t *testing.T) {
	admin := entity.Input{Name: "Root", Username: "root", Role: sessionentity.RoleSuperAdmin, Password: "s3cretpass"}
	assert.NoError(t, validateInput(admin, false))

	noPass := admin
	noPass.Password = ""
	assert.EqualError(t, validateInput(noPass, false), "password must have at least 8 characters")
	assert.NoError(t, validateInput(noPass, true))

	short := admin
	short.Password = "abc"
	assert.Error(t, validateInput(short, true))

	scoped := admin
	scoped.Role = sessionentity.RoleHotelAux
	assert.EqualError(t, validateInput(scoped, false), "hotels must list at least one hotel for this role")
	scoped.Hotels = []int64{3}
	assert.NoError(t, validateInput(scoped, false))

	badRole := admin
	badRole.Role = "owner"
	assert.Error(t, validateInput(badRole, false))

	badUser := admin
	badUser.Username = "a b"
	assert.Error(t, validateInput(badUser, false))
}

func TestSetActive(t *testing.T) {
	var mu sync.Mutex
	var got entity.StatusChange
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			mu.Lock()
			path = r.URL.Path
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			mu.Unlock()
			_ = json.NewEncoder(w).Encode(entity.User{ID: 4, Active: got.Active})
			return
		}
		_, _ = w.Write([]byte(`{"data":[],"totalCount":0}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	store := session.NewStore(nil, nil)
	require.NoError(t, store.Login(ctx, "tok", &sessionentity.Identity{ID: 1, Role: sessionentity.RoleSuperAdmin}))
	client := dispatch.New(dispatch.Config{BaseURL: srv.URL}, store)
	svc := NewUserService(client, mutation.New(client, nil), store, nil)

	u, err := svc.SetActive(ctx, 4, false)
	require.NoError(t, err)
	assert.False(t, u.Active)
	mu.Lock()
	assert.Equal(t, "/users/4/status", path)
	mu.Unlock()

	_, err = svc.SetActive(ctx, 1, false)
	assert.ErrorIs(t, err, ErrSelfDisable)
	assert.ErrorIs(t, svc.Delete(ctx, 1, mutation.Always), ErrSelfDisable)
}
