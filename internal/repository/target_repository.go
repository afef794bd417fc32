package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crime-dashboard/internal/model"
)

var targetScopeColumns = []clause.Column{
	{Name: "unit"},
	{Name: "year"},
	{Name: "semester"},
	{Name: "crime_type"},
}

type TargetRepository struct {
	db    *gorm.DB
	table string
}

func NewTargetRepository(db *gorm.DB, table string) *TargetRepository {
	return &TargetRepository{db: db, table: table}
}

type TargetListFilter struct {
	Year     int
	Semester int
	Unit     *string
}

func (r *TargetRepository) List(ctx context.Context, filter TargetListFilter) ([]model.Target, error) {
	var targets []model.Target
	query := r.db.WithContext(ctx).Table(r.table).
		Where("year = ? AND semester = ?", filter.Year, filter.Semester)
	if filter.Unit != nil {
		query = query.Where("unit = ?", *filter.Unit)
	}
	if err := query.Order("unit ASC").Find(&targets).Error; err != nil {
		return nil, err
	}
	return targets, nil
}

func (r *TargetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Target, error) {
	var target model.Target
	err := r.db.WithContext(ctx).Table(r.table).Where("id = ?", id).First(&target).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &target, nil
}

// UpdateValue sets target_value on one row; gorm.ErrRecordNotFound if no
// row has that id.
func (r *TargetRepository) UpdateValue(ctx context.Context, id uuid.UUID, value int) error {
	res := r.db.WithContext(ctx).Table(r.table).
		Where("id = ?", id).
		Updates(map[string]interface{}{"target_value": value, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Upsert inserts targets, updating target_value when the
// (unit, year, semester, crime_type) tuple already exists.
func (r *TargetRepository) Upsert(ctx context.Context, targets []model.Target) error {
	if len(targets) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Table(r.table).Clauses(clause.OnConflict{
		Columns:   targetScopeColumns,
		DoUpdates: clause.AssignmentColumns([]string{"target_value", "region", "updated_at"}),
	}).Create(&targets).Error
}

// InsertMissing inserts targets whose tuple is absent and leaves existing
// rows untouched.
func (r *TargetRepository) InsertMissing(ctx context.Context, targets []model.Target) (int64, error) {
	if len(targets) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Table(r.table).Clauses(clause.OnConflict{
		Columns:   targetScopeColumns,
		DoNothing: true,
	}).Create(&targets)
	return res.RowsAffected, res.Error
}

func (r *TargetRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Table(r.table).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Target{})
	return res.RowsAffected, res.Error
}

func (r *TargetRepository) ZeroUnit(ctx context.Context, unit string, year, semester int) (int64, error) {
	res := r.db.WithContext(ctx).Table(r.table).
		Where("unit = ? AND year = ? AND semester = ?", unit, year, semester).
		Updates(map[string]interface{}{"target_value": 0, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}
