package staff

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/listquery"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/staff/entity"
)

const Path = "/staff"

type StaffService struct {
	res *crud.Resource[entity.Staff]
}

func NewStaffService(d dispatch.Doer, runner *mutation.Runner, logger *zap.SugaredLogger) *StaffService {
	return &StaffService{res: crud.New[entity.Staff](d, runner, crud.Config{Path: Path, Logger: logger})}
}

func (s *StaffService) Resource() *crud.Resource[entity.Staff] { return s.res }

func (s *StaffService) List() *listquery.Controller[entity.Staff] { return s.res.List() }

func (s *StaffService) Get(ctx context.Context, id int64) (entity.Staff, error) {
	return s.res.Get(ctx, id)
}

func (s *StaffService) Create(ctx context.Context, in entity.Input) (entity.Staff, error) {
	if err := validateInput(in, false); err != nil {
		return entity.Staff{}, err
	}
	return s.res.Create(ctx, in)
}

func (s *StaffService) Update(ctx context.Context, id int64, in entity.Input) (entity.Staff, error) {
	if err := validateInput(in, true); err != nil {
		return entity.Staff{}, err
	}
	return s.res.Update(ctx, id, in)
}

func (s *StaffService) Delete(ctx context.Context, id int64, c mutation.Confirmer) error {
	return s.res.Delete(ctx, id, c)
}

func validateInput(in entity.Input, _ bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return crud.Invalid("name", "is required")
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return crud.Invalid("email", "is not a valid address")
		}
	}
	return nil
}
