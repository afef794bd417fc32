package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryEntry is a free-text update attached to an incident through its RO.
type HistoryEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IncidentID uuid.UUID `gorm:"type:uuid;not null;index" json:"incident_id"`
	RO         string    `gorm:"column:ro;type:varchar(64);not null;index" json:"ro"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (HistoryEntry) TableName() string {
	return "crime_history"
}

func (h *HistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
