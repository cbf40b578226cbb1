package analytics

import (
	"context"

	"github.com/google/uuid"

	"github.com/Shashankphatkure/equico-app/internal/analytics"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
)

type testAnalyticsService struct {
	owner     uuid.UUID
	period    enums.AnalyticsPeriod
	dashboard *analytics.Dashboard
	rows      []analytics.DayRow
	err       error
}

func (s *testAnalyticsService) Dashboard(ctx context.Context, ownerID uuid.UUID, period enums.AnalyticsPeriod) (*analytics.Dashboard, error) {
	s.owner, s.period = ownerID, period
	if s.err != nil {
		return nil, s.err
	}
	if s.dashboard == nil {
		s.dashboard = &analytics.Dashboard{}
	}
	return s.dashboard, nil
}

func (s *testAnalyticsService) Export(ctx context.Context, ownerID uuid.UUID, period enums.AnalyticsPeriod) ([]analytics.DayRow, error) {
	s.owner, s.period = ownerID, period
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *testAnalyticsService) called() bool {
	return s.owner != uuid.Nil
}
