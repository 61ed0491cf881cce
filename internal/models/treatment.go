package models

import (
	"time"
)

// DialysateStrength represents the glucose concentration of the dialysate bag
type DialysateStrength string

const (
	Dialysate1_5  DialysateStrength = "1.5%"
	Dialysate2_5  DialysateStrength = "2.5%"
	Dialysate4_25 DialysateStrength = "4.25%"
)

// Treatment represents one logged PD exchange performed by a patient.
type Treatment struct {
	BaseModel
	PatientID     string            `gorm:"size:36;index;not null" json:"patientId"`
	ExchangeAt    time.Time         `gorm:"index" json:"exchangeAt"`
	Dialysate     DialysateStrength `gorm:"size:10" json:"dialysate"`
	FillVolumeML  int               `json:"fillVolumeMl"`
	DrainVolumeML int               `json:"drainVolumeMl"`
	// Ultrafiltration is drain minus fill; persisted so reports do not
	// recompute it per row.
	UltrafiltrationML int     `json:"ultrafiltrationMl"`
	DwellMinutes      int     `json:"dwellMinutes"`
	WeightKg          float64 `json:"weightKg"`
	BloodPressure     string  `gorm:"size:20" json:"bloodPressure,omitempty"`
	Remarks           string  `gorm:"type:text" json:"remarks,omitempty"`

	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}
