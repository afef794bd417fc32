package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"crime-dashboard/internal/metrics"
	"crime-dashboard/internal/model"
	"crime-dashboard/internal/repository"
	"crime-dashboard/internal/spreadsheet"
)

type HistoryImportResult struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

// RecordDetail is an incident with its most recent history entry, if any.
type RecordDetail struct {
	Incident    model.Incident      `json:"incident"`
	LastHistory *model.HistoryEntry `json:"last_history"`
}

type HistoryService struct {
	incidentRepo *repository.IncidentRepository
	historyRepo  *repository.HistoryRepository
	metrics      *metrics.Collector
	log          zerolog.Logger
}

func NewHistoryService(
	incidentRepo *repository.IncidentRepository,
	historyRepo *repository.HistoryRepository,
	collector *metrics.Collector,
	log zerolog.Logger,
) *HistoryService {
	return &HistoryService{
		incidentRepo: incidentRepo,
		historyRepo:  historyRepo,
		metrics:      collector,
		log:          log,
	}
}

// ImportHistory attaches one history entry per sheet row. Rows that are
// blank, reference an unknown RO or fail to insert are counted as failed
// and do not stop the import.
func (s *HistoryService) ImportHistory(ctx context.Context, r io.Reader) (*HistoryImportResult, error) {
	sheet, err := spreadsheet.ReadFirstSheet(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	rows, err := spreadsheet.HistoryRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	result := &HistoryImportResult{}
	fail := func(row spreadsheet.HistoryRow, reason string, err error) {
		result.Failed++
		s.metrics.RecordHistoryRow("failed")
		ev := s.log.Debug().Int("row", row.Row).Str("ro", row.RO).Str("reason", reason)
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("history row failed")
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if row.Blank() {
			fail(row, "blank", nil)
			continue
		}

		incident, err := s.incidentRepo.GetByRO(ctx, row.RO)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(row, "unknown_ro", nil)
				continue
			}
			fail(row, "lookup", err)
			continue
		}

		entry := &model.HistoryEntry{IncidentID: incident.ID, RO: incident.RO, Text: row.Text}
		if err := s.historyRepo.Create(ctx, entry); err != nil {
			fail(row, "insert", err)
			continue
		}
		result.Imported++
		s.metrics.RecordHistoryRow("imported")
	}

	s.log.Info().Int("imported", result.Imported).Int("failed", result.Failed).Msg("history import finished")
	return result, nil
}

func (s *HistoryService) ListByRO(ctx context.Context, ro string) ([]model.HistoryEntry, error) {
	ro = strings.TrimSpace(ro)
	if ro == "" {
		return nil, ErrInvalidInput
	}
	return s.historyRepo.ListByRO(ctx, ro)
}

type AddHistoryInput struct {
	RO   string `json:"ro" binding:"required"`
	Text string `json:"text" binding:"required"`
}

func (s *HistoryService) Add(ctx context.Context, input AddHistoryInput) (*model.HistoryEntry, error) {
	ro := strings.TrimSpace(input.RO)
	text := strings.TrimSpace(input.Text)
	if ro == "" || text == "" {
		return nil, ErrInvalidInput
	}

	incident, err := s.incidentRepo.GetByRO(ctx, ro)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	entry := &model.HistoryEntry{IncidentID: incident.ID, RO: incident.RO, Text: text}
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *HistoryService) Update(ctx context.Context, id string, text string) (*model.HistoryEntry, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidInput
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}

	entry, err := s.historyRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	entry.Text = text
	if err := s.historyRepo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *HistoryService) Delete(ctx context.Context, id string) error {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidInput
	}
	if err := s.historyRepo.Delete(ctx, entryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *HistoryService) RecordDetail(ctx context.Context, ro string) (*RecordDetail, error) {
	ro = strings.TrimSpace(ro)
	if ro == "" {
		return nil, ErrInvalidInput
	}

	incident, err := s.incidentRepo.GetByRO(ctx, ro)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	latest, err := s.historyRepo.LatestByRO(ctx, incident.RO)
	if err != nil {
		return nil, err
	}

	return &RecordDetail{Incident: *incident, LastHistory: latest}, nil
}
