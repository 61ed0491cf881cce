package models

import (
	"time"
)

// DialysisModality represents the peritoneal dialysis regimen of a patient
type DialysisModality string

const (
	ModalityCAPD DialysisModality = "capd" // continuous ambulatory PD
	ModalityAPD  DialysisModality = "apd"  // automated (cycler) PD
)

// PatientProfile holds the PD-specific record for a patient user.
// One profile per patient; the user row carries identity and login.
type PatientProfile struct {
	BaseModel
	UserID            string           `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	HospitalNumber    string           `gorm:"size:50;uniqueIndex" json:"hospitalNumber"`
	Modality          DialysisModality `gorm:"size:10;default:'capd'" json:"modality"`
	DryWeightKg       float64          `json:"dryWeightKg"`
	FirstDialysisDate *time.Time       `json:"firstDialysisDate,omitempty"`
	DoctorID          string           `gorm:"size:36;index" json:"doctorId"`
	MedicalHistory    string           `gorm:"type:text" json:"medicalHistory,omitempty"`

	// Relations
	User   User `gorm:"foreignKey:UserID" json:"-"`
	Doctor User `gorm:"foreignKey:DoctorID" json:"-"`
}
