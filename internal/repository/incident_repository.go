package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"crime-dashboard/internal/model"
)

type IncidentRepository struct {
	db    *gorm.DB
	table string
}

func NewIncidentRepository(db *gorm.DB, table string) *IncidentRepository {
	return &IncidentRepository{db: db, table: table}
}

// DeleteAll clears the whole incident dataset.
func (r *IncidentRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Table(r.table).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Incident{})
	return res.RowsAffected, res.Error
}

func (r *IncidentRepository) CreateBatch(ctx context.Context, incidents []model.Incident) error {
	if len(incidents) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Table(r.table).Create(&incidents).Error
}

// ListByUnits returns incidents of the given AISPs; an empty list means all.
func (r *IncidentRepository) ListByUnits(ctx context.Context, units []string) ([]model.Incident, error) {
	var incidents []model.Incident
	query := r.db.WithContext(ctx).Table(r.table)
	if len(units) > 0 {
		query = query.Where("aisp IN ?", units)
	}
	if err := query.Order("registered_on DESC").Find(&incidents).Error; err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *IncidentRepository) GetByRO(ctx context.Context, ro string) (*model.Incident, error) {
	var incident model.Incident
	err := r.db.WithContext(ctx).Table(r.table).Where("ro = ?", ro).First(&incident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &incident, nil
}

func (r *IncidentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(r.table).Count(&count).Error
	return count, err
}
