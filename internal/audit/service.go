package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/listquery"
)

const Path = "/audit-logs"

// AuditService reads the audit trail, newest first.
type AuditService struct {
	res *crud.Resource[entity.Entry]
}

func NewAuditService(d dispatch.Doer, logger *zap.SugaredLogger) *AuditService {
	return &AuditService{res: crud.New[entity.Entry](d, nil, crud.Config{
		Path:        Path,
		ReadOnly:    true,
		Logger:      logger,
		ListOptions: []listquery.Option{listquery.WithSort(listquery.SortConfig{Key: "createdAt", Direction: listquery.Desc})},
	})}
}

func (s *AuditService) Resource() *crud.Resource[entity.Entry] { return s.res }

func (s *AuditService) List() *listquery.Controller[entity.Entry] { return s.res.List() }

func (s *AuditService) Get(ctx context.Context, id int64) (entity.Entry, error) {
	return s.res.Get(ctx, id)
}

// FilterEntity narrows the list to one entity type ("device", "hotel", ...).
func (s *AuditService) FilterEntity(ctx context.Context, name string) error {
	return s.res.List().SetFilter(ctx, "entity", name)
}
