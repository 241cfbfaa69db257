package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/app"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

type sessionHandler struct {
	app    *app.App
	logger *zap.SugaredLogger
}

func newSessionHandler(a *app.App, logger *zap.SugaredLogger) *sessionHandler {
	return &sessionHandler{app: a, logger: utilities.OrNop(logger)}
}

// requireSession rejects requests while nobody is logged in.
func requireSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.Snapshot().LoggedIn() {
				crud.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": session.ErrNotLoggedIn.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *sessionHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		crud.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}
	if err := h.app.Login(r.Context(), req.Username, req.Password); err != nil {
		h.logger.Debugw("login failed", "username", req.Username, "err", err)
		crud.WriteError(w, err)
		return
	}
	crud.WriteJSON(w, http.StatusOK, h.app.Store.Status())
}

func (h *sessionHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.app.Store.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *sessionHandler) status(w http.ResponseWriter, r *http.Request) {
	crud.WriteJSON(w, http.StatusOK, h.app.Store.Status())
}

type scopeRequest struct {
	HotelID int64 `json:"hotel_id"`
}

// changeScope only accepts choices the identity may pick; 0 clears.
func (h *sessionHandler) changeScope(w http.ResponseWriter, r *http.Request) {
	var req scopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HotelID < 0 {
		crud.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	store := h.app.Store
	if err := store.ValidateScope(r.Context(), req.HotelID); err != nil {
		writeSessionError(w, err)
		return
	}
	if req.HotelID == 0 {
		if id := store.Identity(); id != nil && !id.Role.IsGlobal() {
			writeSessionError(w, session.ErrInvalidScope)
			return
		}
	}
	if err := store.ChangeScope(r.Context(), req.HotelID); err != nil {
		writeSessionError(w, err)
		return
	}
	crud.WriteJSON(w, http.StatusOK, store.Status())
}

func (h *sessionHandler) tenants(w http.ResponseWriter, r *http.Request) {
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		if _, err := h.app.Store.RefreshTenants(r.Context()); err != nil {
			writeSessionError(w, err)
			return
		}
	}
	c, err := h.app.Store.ScopeChoices(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	crud.WriteJSON(w, http.StatusOK, c)
}

type alertsResponse struct {
	WarrantyExpiring   int    `json:"warranty_expiring"`
	PendingMaintenance int    `json:"pending_maintenance"`
	OverdueMaintenance int    `json:"overdue_maintenance"`
	Total              int    `json:"total"`
	Loaded             bool   `json:"loaded"`
	Error              string `json:"error,omitempty"`
}

func (h *sessionHandler) alerts(w http.ResponseWriter, r *http.Request) {
	agg := h.app.Alerts
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	if _, loaded := agg.Current(); refresh || !loaded {
		if err := agg.Recompute(r.Context()); err != nil {
			h.logger.Debugw("alert recompute failed", "err", err)
		}
	}
	s, loaded := agg.Current()
	resp := alertsResponse{
		WarrantyExpiring:   s.WarrantyExpiring,
		PendingMaintenance: s.PendingMaintenance,
		OverdueMaintenance: s.OverdueMaintenance,
		Total:              s.Total(),
		Loaded:             loaded,
	}
	if err := agg.Err(); err != nil {
		resp.Error = dispatch.MessageOf(err)
		if !loaded {
			crud.WriteJSON(w, crud.StatusFor(err), resp)
			return
		}
	}
	crud.WriteJSON(w, http.StatusOK, resp)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		crud.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, session.ErrInvalidScope), errors.Is(err, session.ErrNoAffiliation):
		crud.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		crud.WriteError(w, err)
	}
}
