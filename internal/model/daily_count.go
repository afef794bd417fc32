package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyCount is the per-unit daily incident count derived on import.
type DailyCount struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Date  time.Time `gorm:"type:date;not null;index" json:"date"`
	Unit  string    `gorm:"type:varchar(32);not null;index" json:"unit"`
	Count int       `gorm:"not null" json:"count"`
}

func (DailyCount) TableName() string {
	return "crime_timeseries"
}

func (d *DailyCount) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
