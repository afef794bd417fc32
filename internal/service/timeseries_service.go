package service

import (
	"context"
	"strings"
	"time"

	"crime-dashboard/internal/catalog"
	"crime-dashboard/internal/model"
	"crime-dashboard/internal/repository"
)

var seriesRanges = map[string]int{
	"7D":  7,
	"30D": 30,
	"90D": 90,
}

const defaultSeriesRange = "30D"

type Series struct {
	Unit   string             `json:"unit,omitempty"`
	Range  string             `json:"range"`
	From   *time.Time         `json:"from"`
	To     *time.Time         `json:"to"`
	Points []model.DailyCount `json:"points"`
}

type TimeseriesService struct {
	dailyRepo *repository.DailyCountRepository
}

func NewTimeseriesService(dailyRepo *repository.DailyCountRepository) *TimeseriesService {
	return &TimeseriesService{dailyRepo: dailyRepo}
}

// Series returns daily counts over a window that ends at the most recent
// day on record. An empty unit covers every unit.
func (s *TimeseriesService) Series(ctx context.Context, rawUnit, rangeKey string) (*Series, error) {
	rangeKey = strings.ToUpper(strings.TrimSpace(rangeKey))
	if rangeKey == "" {
		rangeKey = defaultSeriesRange
	}
	days, ok := seriesRanges[rangeKey]
	if !ok {
		return nil, ErrInvalidInput
	}

	var unit *string
	out := &Series{Range: rangeKey, Points: []model.DailyCount{}}
	if strings.TrimSpace(rawUnit) != "" {
		canonical, ok := catalog.CanonicalUnit(rawUnit)
		if !ok || !catalog.IsUnit(canonical) {
			return nil, ErrNotFound
		}
		unit = &canonical
		out.Unit = canonical
	}

	latest, err := s.dailyRepo.LatestDate(ctx, unit)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return out, nil
	}

	from := latest.AddDate(0, 0, -(days - 1))
	points, err := s.dailyRepo.List(ctx, repository.DailyCountFilter{Unit: unit, From: &from, To: latest})
	if err != nil {
		return nil, err
	}

	out.From = &from
	out.To = latest
	out.Points = points
	return out, nil
}
