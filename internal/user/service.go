package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/listquery"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
	sessionentity "github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/user/entity"
)

const (
	Path              = "/users"
	MinPasswordLength = 8
)

var ErrSelfDisable = errors.New("user: cannot disable the logged-in account")

// Self reports the logged-in identity. session.Store implements it.
type Self interface {
	Identity() *sessionentity.Identity
}

// UserService administers console accounts.
type UserService struct {
	res  *crud.Resource[entity.User]
	self Self
}

func NewUserService(d dispatch.Doer, runner *mutation.Runner, self Self, logger *zap.SugaredLogger) *UserService {
	return &UserService{
		res: crud.New[entity.User](d, runner, crud.Config{
			Path:        Path,
			Logger:      logger,
			ListOptions: []listquery.Option{listquery.WithSort(listquery.SortConfig{Key: "name", Direction: listquery.Asc})},
		}),
		self: self,
	}
}

func (s *UserService) Resource() *crud.Resource[entity.User] { return s.res }

func (s *UserService) List() *listquery.Controller[entity.User] { return s.res.List() }

func (s *UserService) Get(ctx context.Context, id int64) (entity.User, error) {
	return s.res.Get(ctx, id)
}

func (s *UserService) Create(ctx context.Context, in entity.Input) (entity.User, error) {
	if err := validateInput(in, false); err != nil {
		return entity.User{}, err
	}
	return s.res.Create(ctx, in)
}

func (s *UserService) Update(ctx context.Context, id int64, in entity.Input) (entity.User, error) {
	if err := validateInput(in, true); err != nil {
		return entity.User{}, err
	}
	return s.res.Update(ctx, id, in)
}

func (s *UserService) Delete(ctx context.Context, id int64, c mutation.Confirmer) error {
	if s.isSelf(id) {
		return ErrSelfDisable
	}
	return s.res.Delete(ctx, id, c)
}

// SetActive enables or disables an account without touching the rest.
func (s *UserService) SetActive(ctx context.Context, id int64, active bool) (entity.User, error) {
	var out entity.User
	if id <= 0 {
		return out, crud.ErrMissingID
	}
	if !active && s.isSelf(id) {
		return out, ErrSelfDisable
	}
	req := dispatch.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("%s/status", s.res.ItemPath(id)),
		Body:   entity.StatusChange{Active: active},
	}
	err := s.res.Run(ctx, req, &out)
	return out, err
}

func (s *UserService) isSelf(id int64) bool {
	if s.self == nil {
		return false
	}
	me := s.self.Identity()
	return me != nil && me.ID == id
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,32}$`)

func validateInput(in entity.Input, update bool) error {
	if strings.TrimSpace(in.Name) == "" {
		return crud.Invalid("name", "is required")
	}
	if !usernamePattern.MatchString(in.Username) {
		return crud.Invalid("username", "must be 3-32 letters, digits, '.', '_' or '-'")
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return crud.Invalid("email", "is not a valid address")
		}
	}
	if !in.Role.Valid() {
		return crud.Invalid("role", "is not a known role")
	}
	// Hotel-scoped roles need at least one affiliation to act at all.
	if !in.Role.IsGlobal() && len(in.Hotels) == 0 {
		return crud.Invalid("hotels", "must list at least one hotel for this role")
	}
	if !update && len(in.Password) < MinPasswordLength {
		return crud.Invalid("password", fmt.Sprintf("must have at least %d characters", MinPasswordLength))
	}
	if update && in.Password != "" && len(in.Password) < MinPasswordLength {
		return crud.Invalid("password", fmt.Sprintf("must have at least %d characters", MinPasswordLength))
	}
	return nil
}
