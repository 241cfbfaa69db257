package device

import (
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/device/entity"
)

func NewHandler(svc *DeviceService, logger *zap.SugaredLogger) *crud.Handler[entity.Device] {
	return crud.NewHandler(svc.Resource(), logger,
		crud.WithValidator[entity.Device](crud.DecodeAndValidate(validateInput)))
}
