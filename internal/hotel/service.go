package hotel

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/hotel/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/listquery"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
	sessionentity "github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
)

const Path = "/hotels"

// TenantRefresher reloads the session's tenant list. session.Store
// implements it.
type TenantRefresher interface {
	RefreshTenants(ctx context.Context) ([]sessionentity.Tenant, error)
}

// HotelService manages tenants. Every successful write reloads the
// session's tenant list since nothing else tells it the set changed.
type HotelService struct {
	res *crud.Resource[entity.Hotel]
}

func NewHotelService(d dispatch.Doer, runner *mutation.Runner, tenants TenantRefresher, logger *zap.SugaredLogger) *HotelService {
	cfg := crud.Config{
		Path:        Path,
		Logger:      logger,
		ListOptions: []listquery.Option{listquery.WithSort(listquery.SortConfig{Key: "name", Direction: listquery.Asc})},
	}
	if tenants != nil {
		cfg.After = func(ctx context.Context) error {
			_, err := tenants.RefreshTenants(ctx)
			return err
		}
	}
	return &HotelService{res: crud.New[entity.Hotel](d, runner, cfg)}
}

func (s *HotelService) Resource() *crud.Resource[entity.Hotel] { return s.res }

func (s *HotelService) List() *listquery.Controller[entity.Hotel] { return s.res.List() }

func (s *HotelService) Get(ctx context.Context, id int64) (entity.Hotel, error) {
	return s.res.Get(ctx, id)
}

func (s *HotelService) Create(ctx context.Context, in entity.Input) (entity.Hotel, error) {
	if err := validateInput(in, false); err != nil {
		return entity.Hotel{}, err
	}
	return s.res.Create(ctx, in)
}

func (s *HotelService) Update(ctx context.Context, id int64, in entity.Input) (entity.Hotel, error) {
	if err := validateInput(in, true); err != nil {
		return entity.Hotel{}, err
	}
	return s.res.Update(ctx, id, in)
}

func (s *HotelService) Delete(ctx context.Context, id int64, c mutation.Confirmer) error {
	return s.res.Delete(ctx, id, c)
}

var codePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{1,15}$`)

func validateInput(in entity.Input, _ bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return crud.Invalid("name", "is required")
	}
	if !codePattern.MatchString(in.Code) {
		return crud.Invalid("code", "must be 2-16 uppercase letters, digits, '-' or '_'")
	}
	return nil
}
