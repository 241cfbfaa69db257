package staff

import (
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/staff/entity"
)

func NewHandler(svc *StaffService, logger *zap.SugaredLogger) *crud.Handler[entity.Staff] {
	return crud.NewHandler(svc.Resource(), logger,
		crud.WithValidator[entity.Staff](crud.DecodeAndValidate(validateInput)))
}
