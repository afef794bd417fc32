package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"crime-dashboard/internal/metrics"
	"crime-dashboard/internal/model"
	"crime-dashboard/internal/repository"
	"crime-dashboard/internal/spreadsheet"
)

const importBatchSize = 1000

type ImportResult struct {
	Read        int                              `json:"read"`
	Inserted    int                              `json:"inserted"`
	Dropped     int                              `json:"dropped"`
	DroppedBy   map[spreadsheet.RejectReason]int `json:"dropped_by"`
	DailyCounts int                              `json:"daily_counts"`
	Stored      int64                            `json:"stored"`
	Batches     int                              `json:"batches"`
}

type ImportService struct {
	incidentRepo *repository.IncidentRepository
	dailyRepo    *repository.DailyCountRepository
	metrics      *metrics.Collector
	log          zerolog.Logger
	batchSize    int
}

func NewImportService(
	incidentRepo *repository.IncidentRepository,
	dailyRepo *repository.DailyCountRepository,
	collector *metrics.Collector,
	log zerolog.Logger,
) *ImportService {
	return &ImportService{
		incidentRepo: incidentRepo,
		dailyRepo:    dailyRepo,
		metrics:      collector,
		log:          log,
		batchSize:    importBatchSize,
	}
}

// ImportIncidents replaces the incident dataset with the rows of an xlsx
// export. The sheet is decoded before anything is deleted; after that the
// clear, insert and daily-count steps run in order and the first storage
// error aborts the import without rolling back earlier steps.
func (s *ImportService) ImportIncidents(ctx context.Context, r io.Reader) (*ImportResult, error) {
	started := time.Now()
	defer func() { s.metrics.ImportDuration.Observe(time.Since(started).Seconds()) }()

	sheet, err := spreadsheet.ReadFirstSheet(r)
	if err != nil {
		s.metrics.RecordImportError("parse")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := spreadsheet.ValidateIncidentSheet(sheet); err != nil {
		s.metrics.RecordImportError("parse")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	log := s.log.With().Str("sheet", sheet.Name).Logger()
	log.Info().Int("rows", len(sheet.Rows)).Msg("incident import started")

	deleted, err := s.incidentRepo.DeleteAll(ctx)
	if err != nil {
		s.metrics.RecordImportError("clear")
		return nil, fmt.Errorf("clear incidents: %w", err)
	}
	if _, err := s.dailyRepo.DeleteAll(ctx); err != nil {
		s.metrics.RecordImportError("clear")
		return nil, fmt.Errorf("clear daily counts: %w", err)
	}
	log.Info().Int64("deleted", deleted).Msg("previous dataset cleared")

	result := &ImportResult{DroppedBy: map[spreadsheet.RejectReason]int{}}
	inputs := spreadsheet.IncidentInputs(sheet)
	result.Read = len(inputs)

	incidents := make([]model.Incident, 0, len(inputs))
	for _, in := range inputs {
		incident, rejection := in.Normalize()
		if rejection != nil {
			result.Dropped++
			result.DroppedBy[rejection.Reason]++
			log.Debug().Int("row", rejection.Row).Str("reason", string(rejection.Reason)).Str("value", rejection.Value).Msg("row dropped")
			continue
		}
		incidents = append(incidents, incident)
	}
	s.metrics.RecordImportRows("read", result.Read)
	s.metrics.RecordImportRows("dropped", result.Dropped)

	for start := 0; start < len(incidents); start += s.batchSize {
		end := min(start+s.batchSize, len(incidents))
		batch := incidents[start:end]
		if err := s.incidentRepo.CreateBatch(ctx, batch); err != nil {
			s.metrics.RecordImportError("insert")
			log.Error().Err(err).Int("batch", result.Batches+1).Int("inserted", result.Inserted).Msg("incident batch failed")
			return nil, fmt.Errorf("insert incident batch %d: %w", result.Batches+1, err)
		}
		result.Batches++
		result.Inserted += len(batch)
		s.metrics.ImportBatchSize.Observe(float64(len(batch)))
		s.metrics.RecordImportRows("inserted", len(batch))
	}

	counts := DailyCounts(incidents)
	for start := 0; start < len(counts); start += s.batchSize {
		end := min(start+s.batchSize, len(counts))
		if err := s.dailyRepo.CreateBatch(ctx, counts[start:end]); err != nil {
			s.metrics.RecordImportError("daily_counts")
			return nil, fmt.Errorf("insert daily counts: %w", err)
		}
	}
	result.DailyCounts = len(counts)

	stored, err := s.incidentRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count incidents: %w", err)
	}
	result.Stored = stored

	log.Info().
		Int("read", result.Read).
		Int("inserted", result.Inserted).
		Int("dropped", result.Dropped).
		Int("daily_counts", result.DailyCounts).
		Int64("stored", result.Stored).
		Dur("took", time.Since(started)).
		Msg("incident import finished")

	return result, nil
}

// DailyCounts groups incidents by registration date and unit. Incidents
// without a valid date are left out.
func DailyCounts(incidents []model.Incident) []model.DailyCount {
	type key struct {
		date string
		unit string
	}
	index := make(map[key]int)
	var counts []model.DailyCount

	for _, inc := range incidents {
		if inc.RegisteredOn == nil {
			continue
		}
		k := key{date: inc.RegisteredOn.Format("2006-01-02"), unit: inc.AISP}
		if i, ok := index[k]; ok {
			counts[i].Count++
			continue
		}
		index[k] = len(counts)
		counts = append(counts, model.DailyCount{Date: *inc.RegisteredOn, Unit: inc.AISP, Count: 1})
	}

	sort.Slice(counts, func(i, j int) bool {
		if !counts[i].Date.Equal(counts[j].Date) {
			return counts[i].Date.Before(counts[j].Date)
		}
		return counts[i].Unit < counts[j].Unit
	})
	return counts
}
