package models

import (
	"time"
)

// Prescription represents a PD regimen prescribed by a doctor.
type Prescription struct {
	BaseModel
	PatientID       string     `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        string     `gorm:"size:36;index;not null" json:"doctorId"`
	Regimen         string     `gorm:"size:255;not null" json:"regimen"`
	ExchangesPerDay int        `json:"exchangesPerDay"`
	Dialysate       string     `gorm:"size:100" json:"dialysate"`
	FillVolumeML    int        `json:"fillVolumeMl"`
	Instructions    string     `gorm:"type:text" json:"instructions,omitempty"`
	ValidFrom       time.Time  `json:"validFrom"`
	ValidUntil      *time.Time `json:"validUntil,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
