package audit

import (
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
)

// NewHandler registers only the read routes.
func NewHandler(svc *AuditService, logger *zap.SugaredLogger) *crud.Handler[entity.Entry] {
	return crud.NewHandler(svc.Resource(), logger)
}
