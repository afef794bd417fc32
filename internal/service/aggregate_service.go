package service

import (
	"context"

	"crime-dashboard/internal/catalog"
	"crime-dashboard/internal/model"
	"crime-dashboard/internal/repository"
)

type Dashboard struct {
	Year        int              `json:"year"`
	Semester    int              `json:"semester"`
	Aggregate   CommandAggregate `json:"aggregate"`
	Comparisons []Comparison     `json:"comparisons"`
}

type UnitDashboard struct {
	Unit        string                `json:"unit"`
	Year        int                   `json:"year"`
	Semester    int                   `json:"semester"`
	Aggregate   UnitAggregate         `json:"aggregate"`
	Comparisons []Comparison          `json:"comparisons"`
	Peers       []UnitAggregate       `json:"peers"`
	Area        catalog.UnitArea      `json:"area"`
	HeatMap     []model.HeatMapBucket `json:"heat_map"`
}

type AggregateService struct {
	incidentRepo  *repository.IncidentRepository
	targetService *TargetService
}

func NewAggregateService(incidentRepo *repository.IncidentRepository, targetService *TargetService) *AggregateService {
	return &AggregateService{
		incidentRepo:  incidentRepo,
		targetService: targetService,
	}
}

// CommandDashboard aggregates every unit of the command and compares the
// result with the semester's targets.
func (s *AggregateService) CommandDashboard(ctx context.Context, year, semester int) (*Dashboard, error) {
	targets, err := s.targetService.List(ctx, year, semester)
	if err != nil {
		return nil, err
	}
	records, err := s.incidentRepo.ListByUnits(ctx, catalog.Units)
	if err != nil {
		return nil, err
	}

	agg := commandAggregate(records)
	return &Dashboard{
		Year:        year,
		Semester:    semester,
		Aggregate:   agg,
		Comparisons: Compare(agg, targets),
	}, nil
}

// UnitDashboard is one unit's aggregate, target comparison and heat map,
// plus the other units' totals for side-by-side charts.
func (s *AggregateService) UnitDashboard(ctx context.Context, rawUnit string, year, semester int) (*UnitDashboard, error) {
	unit, ok := catalog.CanonicalUnit(rawUnit)
	if !ok || !catalog.IsUnit(unit) {
		return nil, ErrNotFound
	}

	targets, err := s.targetService.List(ctx, year, semester)
	if err != nil {
		return nil, err
	}
	records, err := s.incidentRepo.ListByUnits(ctx, catalog.Units)
	if err != nil {
		return nil, err
	}

	agg := commandAggregate(records)
	own, _ := agg.Unit(unit)
	area, _ := catalog.AreaOf(unit)

	return &UnitDashboard{
		Unit:        unit,
		Year:        year,
		Semester:    semester,
		Aggregate:   own,
		Comparisons: CompareUnit(own, targets),
		Peers:       agg.Units,
		Area:        area,
		HeatMap:     BuildHeatMap(unit, records),
	}, nil
}

func (s *AggregateService) HeatMap(ctx context.Context, rawUnit string) ([]model.HeatMapBucket, error) {
	unit, ok := catalog.CanonicalUnit(rawUnit)
	if !ok || !catalog.IsUnit(unit) {
		return nil, ErrNotFound
	}
	records, err := s.incidentRepo.ListByUnits(ctx, []string{unit})
	if err != nil {
		return nil, err
	}
	return BuildHeatMap(unit, records), nil
}
