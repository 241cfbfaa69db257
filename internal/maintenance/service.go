package maintenance

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/listquery"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/maintenance/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
)

const Path = "/maintenances"

type MaintenanceService struct {
	res *crud.Resource[entity.Maintenance]
	now func() time.Time
}

func NewMaintenanceService(d dispatch.Doer, runner *mutation.Runner, logger *zap.SugaredLogger) *MaintenanceService {
	return &MaintenanceService{
		res: crud.New[entity.Maintenance](d, runner, crud.Config{
			Path:        Path,
			FeedsAlerts: true,
			Logger:      logger,
			ListOptions: []listquery.Option{listquery.WithSort(listquery.SortConfig{Key: "scheduledDate", Direction: listquery.Asc})},
		}),
		now: time.Now,
	}
}

func (s *MaintenanceService) Resource() *crud.Resource[entity.Maintenance] { return s.res }

func (s *MaintenanceService) List() *listquery.Controller[entity.Maintenance] { return s.res.List() }

func (s *MaintenanceService) Get(ctx context.Context, id int64) (entity.Maintenance, error) {
	return s.res.Get(ctx, id)
}

func (s *MaintenanceService) Create(ctx context.Context, in entity.Input) (entity.Maintenance, error) {
	if err := validateInput(in, false); err != nil {
		return entity.Maintenance{}, err
	}
	return s.res.Create(ctx, in)
}

func (s *MaintenanceService) Update(ctx context.Context, id int64, in entity.Input) (entity.Maintenance, error) {
	if err := validateInput(in, true); err != nil {
		return entity.Maintenance{}, err
	}
	return s.res.Update(ctx, id, in)
}

func (s *MaintenanceService) Delete(ctx context.Context, id int64, c mutation.Confirmer) error {
	return s.res.Delete(ctx, id, c)
}

// Complete marks a job as done today. It goes through the same refresh
// protocol as any other write, so the pending and overdue counts update.
func (s *MaintenanceService) Complete(ctx context.Context, id int64, notes string) (entity.Maintenance, error) {
	var out entity.Maintenance
	if id <= 0 {
		return out, crud.ErrMissingID
	}
	body := entity.Completion{
		Status:        entity.StatusCompleted,
		CompletedDate: s.now().Format(entity.DateLayout),
		Notes:         strings.TrimSpace(notes),
	}
	req := dispatch.Request{Method: http.MethodPut, Path: fmt.Sprintf("%s/status", s.res.ItemPath(id)), Body: body}
	err := s.res.Run(ctx, req, &out)
	return out, err
}

func validateInput(in entity.Input, update bool) error {
	if in.DeviceID <= 0 {
		return crud.Invalid("deviceId", "is required")
	}
	switch in.Type {
	case entity.KindPreventive, entity.KindCorrective:
	default:
		return crud.Invalid("type", "must be preventive or corrective")
	}
	if strings.TrimSpace(in.Description) == "" {
		return crud.Invalid("description", "is required")
	}
	if _, err := time.Parse(entity.DateLayout, in.ScheduledDate); err != nil {
		return crud.Invalid("scheduledDate", "must be YYYY-MM-DD")
	}
	if in.Status != "" && !in.Status.Valid() {
		return crud.Invalid("status", "is not a known status")
	}
	if !update && in.Status == entity.StatusCompleted {
		return crud.Invalid("status", "a new job cannot start completed")
	}
	return nil
}
