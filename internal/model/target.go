package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Target struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Unit        string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_targets_scope" json:"unit"`
	Region      string    `gorm:"type:varchar(32);not null" json:"region"`
	Year        int       `gorm:"not null;uniqueIndex:idx_targets_scope" json:"year"`
	Semester    int       `gorm:"not null;uniqueIndex:idx_targets_scope" json:"semester"`
	CrimeType   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_targets_scope" json:"crime_type"`
	TargetValue int       `gorm:"not null" json:"target_value"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Target) TableName() string {
	return "targets"
}

func (t *Target) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
