package hotel

import (
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/hotel/entity"
)

func NewHandler(svc *HotelService, logger *zap.SugaredLogger) *crud.Handler[entity.Hotel] {
	return crud.NewHandler(svc.Resource(), logger,
		crud.WithValidator[entity.Hotel](crud.DecodeAndValidate(validateInput)))
}
