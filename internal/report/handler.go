package report

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

type Handler struct {
	svc    *ReportService
	logger *zap.SugaredLogger
}

func NewHandler(svc *ReportService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: utilities.OrNop(logger)}
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s, err := h.svc.Summary(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		h.logger.Debugw("report failed", "err", err)
		crud.WriteError(w, err)
		return
	}
	crud.WriteJSON(w, http.StatusOK, s)
}
