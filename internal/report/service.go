package report

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/report/entity"
)

const Path = "/reports/summary"

// ReportService reads the summary report for the active scope.
type ReportService struct {
	doer dispatch.Doer
}

func NewReportService(d dispatch.Doer) *ReportService { return &ReportService{doer: d} }

// Summary fetches the report. from and to (YYYY-MM-DD) bound the
// maintenance counts when set.
func (s *ReportService) Summary(ctx context.Context, from, to string) (entity.Summary, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	var out entity.Summary
	err := s.doer.Do(ctx, dispatch.Request{Method: http.MethodGet, Path: Path, Query: q}, &out)
	if out.DevicesByStatus == nil {
		out.DevicesByStatus = map[string]int{}
	}
	return out, err
}
