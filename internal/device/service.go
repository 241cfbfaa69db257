package device

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/device/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/listquery"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
)

const Path = "/devices"

// DeviceService manages the hotel device inventory. Device writes feed the
// warranty alert, so every mutation recomputes it.
type DeviceService struct {
	res *crud.Resource[entity.Device]
}

func NewDeviceService(d dispatch.Doer, runner *mutation.Runner, logger *zap.SugaredLogger) *DeviceService {
	return &DeviceService{res: crud.New[entity.Device](d, runner, crud.Config{
		Path:        Path,
		FeedsAlerts: true,
		Logger:      logger,
		ListOptions: []listquery.Option{listquery.WithSort(listquery.SortConfig{Key: "name", Direction: listquery.Asc})},
	})}
}

func (s *DeviceService) Resource() *crud.Resource[entity.Device] { return s.res }

func (s *DeviceService) List() *listquery.Controller[entity.Device] { return s.res.List() }

func (s *DeviceService) Get(ctx context.Context, id int64) (entity.Device, error) {
	return s.res.Get(ctx, id)
}

func (s *DeviceService) Create(ctx context.Context, in entity.Input) (entity.Device, error) {
	if err := validateInput(in, false); err != nil {
		return entity.Device{}, err
	}
	return s.res.Create(ctx, in)
}

func (s *DeviceService) Update(ctx context.Context, id int64, in entity.Input) (entity.Device, error) {
	if err := validateInput(in, true); err != nil {
		return entity.Device{}, err
	}
	return s.res.Update(ctx, id, in)
}

func (s *DeviceService) Delete(ctx context.Context, id int64, c mutation.Confirmer) error {
	return s.res.Delete(ctx, id, c)
}

func validateInput(in entity.Input, update bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return crud.Invalid("name", "is required")
	}
	if strings.TrimSpace(in.Serial) == "" {
		return crud.Invalid("serial", "is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		return crud.Invalid("status", "must be one of active, maintenance, broken, retired")
	}
	for field, v := range map[string]string{"purchaseDate": in.PurchaseDate, "warrantyExpiry": in.WarrantyExpiry} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(entity.DateLayout, v); err != nil {
			return crud.Invalid(field, "must be YYYY-MM-DD")
		}
	}
	if in.PurchaseDate != "" && in.WarrantyExpiry != "" && in.WarrantyExpiry < in.PurchaseDate {
		return crud.Invalid("warrantyExpiry", "is before purchaseDate")
	}
	return nil
}
