package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crime-dashboard/internal/model"
)

type HistoryRepository struct {
	db    *gorm.DB
	table string
}

func NewHistoryRepository(db *gorm.DB, table string) *HistoryRepository {
	return &HistoryRepository{db: db, table: table}
}

func (r *HistoryRepository) Create(ctx context.Context, entry *model.HistoryEntry) error {
	return r.db.WithContext(ctx).Table(r.table).Create(entry).Error
}

func (r *HistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.HistoryEntry, error) {
	var entry model.HistoryEntry
	err := r.db.WithContext(ctx).Table(r.table).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *HistoryRepository) Update(ctx context.Context, entry *model.HistoryEntry) error {
	return r.db.WithContext(ctx).Table(r.table).Save(entry).Error
}

func (r *HistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Table(r.table).Where("id = ?", id).Delete(&model.HistoryEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByRO returns the entries of one RO, newest first.
func (r *HistoryRepository) ListByRO(ctx context.Context, ro string) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	err := r.db.WithContext(ctx).Table(r.table).
		Where("ro = ?", ro).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *HistoryRepository) LatestByRO(ctx context.Context, ro string) (*model.HistoryEntry, error) {
	var entry model.HistoryEntry
	err := r.db.WithContext(ctx).Table(r.table).
		Where("ro = ?", ro).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}
