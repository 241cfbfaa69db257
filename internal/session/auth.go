package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
)

// AuthClient talks to the backend's auth and hotel-access endpoints.
type AuthClient struct {
	d dispatch.Doer
}

func NewAuthClient(d dispatch.Doer) *AuthClient { return &AuthClient{d: d} }

// LoginRequest login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer credential and the identity it belongs to.
type LoginResponse struct {
	Token string          `json:"token"`
	User  entity.Identity `json:"user"`
}

func (a *AuthClient) Authenticate(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := a.d.Do(ctx, dispatch.Request{Method: http.MethodPost, Path: "/auth/login", Body: LoginRequest{Username: username, Password: password}}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login response without token")
	}
	return &out, nil
}

// Profile fetches the identity behind the current credential.
func (a *AuthClient) Profile(ctx context.Context) (*entity.Identity, error) {
	var out entity.Identity
	if err := a.d.Do(ctx, dispatch.Request{Method: http.MethodGet, Path: "/auth/profile"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AccessibleTenants implements TenantFetcher. The backend answers either a
// bare array or {"data": [...]}.
func (a *AuthClient) AccessibleTenants(ctx context.Context) ([]entity.Tenant, error) {
	var raw json.RawMessage
	if err := a.d.Do(ctx, dispatch.Request{Method: http.MethodGet, Path: "/hotels/accessible"}, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var list []entity.Tenant
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Data []entity.Tenant `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode hotels: %w", err)
	}
	return wrapped.Data, nil
}

// Login authenticates against the backend and stores the result.
func Login(ctx context.Context, auth *AuthClient, store *Store, username, password string) (*entity.Identity, error) {
	resp, err := auth.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := store.Login(ctx, resp.Token, &resp.User); err != nil {
		return nil, err
	}
	return store.Identity(), nil
}

// RefreshProfile reloads the identity from the backend into the store.
func RefreshProfile(ctx context.Context, auth *AuthClient, store *Store) (*entity.Identity, error) {
	id, err := auth.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.RefreshProfile(ctx, id); err != nil {
		return nil, err
	}
	return store.Identity(), nil
}
