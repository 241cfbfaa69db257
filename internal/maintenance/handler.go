package maintenance

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/maintenance/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

// Handler adds the completion route to the generic resource routes.
type Handler struct {
	*crud.Handler[entity.Maintenance]
	svc    *MaintenanceService
	logger *zap.SugaredLogger
}

func NewHandler(svc *MaintenanceService, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		Handler: crud.NewHandler(svc.Resource(), logger,
			crud.WithValidator[entity.Maintenance](crud.DecodeAndValidate(validateInput))),
		svc:    svc,
		logger: utilities.OrNop(logger),
	}
}

func (h *Handler) Register(r chi.Router) {
	h.Handler.Register(r)
	r.Post("/{id}/complete", h.Complete)
}

// CompleteRequest is the optional body of the completion route.
type CompleteRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		crud.WriteError(w, crud.ErrMissingID)
		return
	}
	var req CompleteRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Debugw("invalid complete payload", "err", err)
			crud.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
	}
	m, err := h.svc.Complete(r.Context(), id, req.Notes)
	crud.WriteMutation(w, http.StatusOK, m, err)
}
