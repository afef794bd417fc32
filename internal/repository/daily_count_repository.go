package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"crime-dashboard/internal/model"
)

type DailyCountRepository struct {
	db    *gorm.DB
	table string
}

func NewDailyCountRepository(db *gorm.DB, table string) *DailyCountRepository {
	return &DailyCountRepository{db: db, table: table}
}

func (r *DailyCountRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Table(r.table).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.DailyCount{})
	return res.RowsAffected, res.Error
}

func (r *DailyCountRepository) CreateBatch(ctx context.Context, counts []model.DailyCount) error {
	if len(counts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Table(r.table).Create(&counts).Error
}

type DailyCountFilter struct {
	Unit *string
	From *time.Time
	To   *time.Time
}

func (r *DailyCountRepository) List(ctx context.Context, filter DailyCountFilter) ([]model.DailyCount, error) {
	var counts []model.DailyCount
	query := r.db.WithContext(ctx).Table(r.table)

	if filter.Unit != nil {
		query = query.Where("unit = ?", *filter.Unit)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}

	if err := query.Order("date ASC").Order("unit ASC").Find(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// LatestDate returns the most recent day present, or nil for an empty table.
func (r *DailyCountRepository) LatestDate(ctx context.Context, unit *string) (*time.Time, error) {
	var latest model.DailyCount
	query := r.db.WithContext(ctx).Table(r.table)
	if unit != nil {
		query = query.Where("unit = ?", *unit)
	}
	res := query.Order("date DESC").Limit(1).Find(&latest)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &latest.Date, nil
}
