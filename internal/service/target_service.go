package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"crime-dashboard/internal/catalog"
	"crime-dashboard/internal/model"
	"crime-dashboard/internal/repository"
)

const (
	listRetries      = 3
	listRetryBackoff = time.Second
)

type TargetService struct {
	targetRepo *repository.TargetRepository
	undo       *UndoBuffer
	log        zerolog.Logger

	retries      int
	retryBackoff time.Duration
	now           func() time.Time
}

func NewTargetService(targetRepo *repository.TargetRepository, undo *UndoBuffer, log zerolog.Logger) *TargetService {
	return &TargetService{
		targetRepo:    targetRepo,
		undo:          undo,
		log:           log,
		retries:      listRetries,
		retryBackoff: listRetryBackoff,
		now:          time.Now,
	}
}

type TargetInput struct {
	Unit        string `json:"unit"`
	Year        int    `json:"year"`
	Semester    int    `json:"semester"`
	CrimeType   string `json:"crime_type"`
	TargetValue int    `json:"target_value"`
}

// List returns the targets of a semester ordered by category, then unit.
// A transient null-id failure from the storage backend is retried up to
// three times after the first attempt.
func (s *TargetService) List(ctx context.Context, year, semester int) ([]model.Target, error) {
	if err := validatePeriod(year, semester); err != nil {
		return nil, err
	}

	var (
		targets []model.Target
		err     error
	)
	for attempt := 0; ; attempt++ {
		targets, err = s.targetRepo.List(ctx, repository.TargetListFilter{Year: year, Semester: semester})
		if err == nil || !isNullIDError(err) || attempt == s.retries {
			break
		}
		s.log.Warn().Err(err).Int("attempt", attempt+1).Msg("target list failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retryBackoff):
		}
	}
	if err != nil {
		return nil, err
	}

	if targets == nil {
		targets = []model.Target{}
	}
	sortTargets(targets)
	return targets, nil
}

func (s *TargetService) Update(ctx context.Context, id string, value int) (*model.Target, error) {
	targetID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if value < 0 {
		return nil, ErrInvalidInput
	}

	if err := s.targetRepo.UpdateValue(ctx, targetID, value); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	target, err := s.targetRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return target, nil
}

// Upsert writes targets in bulk. Rows repeating a (unit, year, semester,
// crime type) tuple collapse to the last one.
func (s *TargetService) Upsert(ctx context.Context, inputs []TargetInput) ([]model.Target, error) {
	if len(inputs) == 0 {
		return nil, ErrInvalidInput
	}

	index := make(map[string]int, len(inputs))
	targets := make([]model.Target, 0, len(inputs))
	for _, in := range inputs {
		target, err := targetFromInput(in)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("%s|%d|%d|%s", target.Unit, target.Year, target.Semester, target.CrimeType)
		if i, ok := index[key]; ok {
			targets[i] = target
			continue
		}
		index[key] = len(targets)
		targets = append(targets, target)
	}

	if err := s.targetRepo.Upsert(ctx, targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// Seed creates zero targets for every unit and category of a semester that
// has none yet.
func (s *TargetService) Seed(ctx context.Context, year, semester int) (int64, error) {
	if err := validatePeriod(year, semester); err != nil {
		return 0, err
	}

	var targets []model.Target
	for _, unit := range catalog.TargetUnits() {
		for _, c := range model.Categories {
			targets = append(targets, model.Target{
				Unit:      unit,
				Region:    catalog.RegionOf(unit),
				Year:      year,
				Semester:  semester,
				CrimeType: c.TargetKey(),
			})
		}
	}

	created, err := s.targetRepo.InsertMissing(ctx, targets)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int("year", year).Int("semester", semester).Int64("created", created).Msg("targets seeded")
	return created, nil
}

// ClearUnit zeroes a unit's targets for a semester after keeping a
// snapshot that Undo can restore.
func (s *TargetService) ClearUnit(ctx context.Context, rawUnit string, year, semester int) (*TargetSnapshot, error) {
	unit, ok := catalog.CanonicalUnit(rawUnit)
	if !ok {
		return nil, ErrNotFound
	}
	if err := validatePeriod(year, semester); err != nil {
		return nil, err
	}

	current, err := s.targetRepo.List(ctx, repository.TargetListFilter{Year: year, Semester: semester, Unit: &unit})
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		return nil, ErrNotFound
	}

	snapshot := TargetSnapshot{
		Unit:     unit,
		Year:     year,
		Semester: semester,
		Targets:  current,
		TakenAt:  s.now(),
	}
	s.undo.Put(snapshot)

	if _, err := s.targetRepo.ZeroUnit(ctx, unit, year, semester); err != nil {
		return nil, err
	}

	s.log.Info().Str("unit", unit).Int("year", year).Int("semester", semester).Int("targets", len(current)).Msg("unit targets cleared")
	return &snapshot, nil
}

// Undo restores the last cleared snapshot of a unit and discards it.
func (s *TargetService) Undo(ctx context.Context, rawUnit string) (*TargetSnapshot, error) {
	unit, ok := catalog.CanonicalUnit(rawUnit)
	if !ok {
		return nil, ErrNotFound
	}
	snapshot, ok := s.undo.Get(unit)
	if !ok {
		return nil, ErrNotFound
	}

	restore := make([]model.Target, len(snapshot.Targets))
	for i, t := range snapshot.Targets {
		t.ID = uuid.Nil
		t.UpdatedAt = s.now()
		restore[i] = t
	}
	if err := s.targetRepo.Upsert(ctx, restore); err != nil {
		return nil, err
	}
	s.undo.Remove(unit)

	s.log.Info().Str("unit", unit).Int("targets", len(restore)).Msg("unit targets restored")
	return &snapshot, nil
}

// ClearAll deletes every target of every semester. Unit snapshots are
// dropped too since they could only resurrect part of the table.
func (s *TargetService) ClearAll(ctx context.Context) (int64, error) {
	deleted, err := s.targetRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.undo.Purge()

	s.log.Warn().Int64("deleted", deleted).Msg("all targets deleted")
	return deleted, nil
}

func (s *TargetService) CanUndo(rawUnit string) bool {
	unit, ok := catalog.CanonicalUnit(rawUnit)
	if !ok {
		return false
	}
	return s.undo.Has(unit)
}

func targetFromInput(in TargetInput) (model.Target, error) {
	unit, ok := catalog.CanonicalUnit(in.Unit)
	if !ok {
		return model.Target{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidInput, in.Unit)
	}
	if err := validatePeriod(in.Year, in.Semester); err != nil {
		return model.Target{}, err
	}
	category, ok := model.ParseCategory(in.CrimeType)
	if !ok {
		return model.Target{}, fmt.Errorf("%w: unknown crime type %q", ErrInvalidInput, in.CrimeType)
	}
	if in.TargetValue < 0 {
		return model.Target{}, fmt.Errorf("%w: negative target", ErrInvalidInput)
	}
	return model.Target{
		Unit:        unit,
		Region:      catalog.RegionOf(unit),
		Year:        in.Year,
		Semester:    in.Semester,
		CrimeType:   category.TargetKey(),
		TargetValue: in.TargetValue,
	}, nil
}

func validatePeriod(year, semester int) error {
	if year < 2000 || year > 2100 {
		return fmt.Errorf("%w: year %d", ErrInvalidInput, year)
	}
	if semester != 1 && semester != 2 {
		return fmt.Errorf("%w: semester %d", ErrInvalidInput, semester)
	}
	return nil
}

func sortTargets(targets []model.Target) {
	rank := func(t model.Target) int {
		c, ok := model.ParseCategory(t.CrimeType)
		if !ok {
			return len(model.Categories)
		}
		return catalog.CategoryIndex(c)
	}
	unitRank := make(map[string]int)
	for i, u := range catalog.TargetUnits() {
		unitRank[u] = i
	}
	sort.SliceStable(targets, func(i, j int) bool {
		ri, rj := rank(targets[i]), rank(targets[j])
		if ri != rj {
			return ri < rj
		}
		ui, iok := unitRank[targets[i].Unit]
		uj, jok := unitRank[targets[j].Unit]
		if iok && jok {
			return ui < uj
		}
		if iok != jok {
			return iok
		}
		return targets[i].Unit < targets[j].Unit
	})
}

func isNullIDError(err error) bool {
	msg := strings.ReplaceAll(strings.ToLower(err.Error()), `"`, "")
	return strings.Contains(msg, "null value in column id")
}

// CurrentPeriod is the year and semester a date falls in.
func CurrentPeriod(now time.Time) (year, semester int) {
	if now.Month() <= time.June {
		return now.Year(), 1
	}
	return now.Year(), 2
}
