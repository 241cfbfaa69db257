package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

// Handler exposes account administration on top of the resource routes.
type Handler struct {
	*crud.Handler[entity.User]
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		Handler: crud.NewHandler(svc.Resource(), logger,
			crud.WithValidator[entity.User](crud.DecodeAndValidate(validateInput))),
		svc:    svc,
		logger: utilities.OrNop(logger),
	}
}

func (h *Handler) Register(r chi.Router) {
	h.Handler.Register(r)
	r.Put("/{id}/status", h.SetStatus)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		crud.WriteError(w, crud.ErrMissingID)
		return
	}
	var req entity.StatusChange
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid status payload", "err", err)
		crud.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	u, err := h.svc.SetActive(r.Context(), id, req.Active)
	if errors.Is(err, ErrSelfDisable) {
		crud.WriteJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	crud.WriteMutation(w, http.StatusOK, u, err)
}
