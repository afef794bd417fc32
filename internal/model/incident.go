package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotAvailable replaces empty text fields on import.
const NotAvailable = "N/A"

type Incident struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ObjectID           int64      `gorm:"not null" json:"objectid"`
	RegistrationDay    string     `gorm:"type:varchar(4);not null" json:"registration_day"`
	RegistrationMonth  string     `gorm:"type:varchar(4);not null" json:"registration_month"`
	RegistrationYear   string     `gorm:"type:varchar(8);not null" json:"registration_year"`
	RegisteredOn       *time.Time `gorm:"type:date;index" json:"registered_on"`
	RO                 string     `gorm:"column:ro;type:varchar(64);not null;index" json:"ro"`
	CrimeTitle         string     `gorm:"type:text;not null" json:"crime_title"`
	OccurrenceTitle    string     `gorm:"type:text;not null" json:"occurrence_title"`
	StrategicIndicator string     `gorm:"type:varchar(64);not null;index" json:"strategic_indicator"`
	DisclosurePhase    string     `gorm:"type:text;not null" json:"disclosure_phase"`
	Weekday            string     `gorm:"type:varchar(32);not null" json:"weekday"`
	AISP               string     `gorm:"column:aisp;type:varchar(32);not null;index" json:"aisp"`
	RISP               string     `gorm:"column:risp;type:varchar(32);not null" json:"risp"`
	Municipality       string     `gorm:"type:text;not null" json:"municipality"`
	Neighborhood       string     `gorm:"type:text;not null" json:"neighborhood"`
	TimeBracket        string     `gorm:"type:varchar(32);not null" json:"time_bracket"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Incident) TableName() string {
	return "crimes"
}

func (i *Incident) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Category resolves the stored strategic indicator.
func (i Incident) Category() (CrimeCategory, bool) {
	return ParseCategory(i.StrategicIndicator)
}
