package models

import (
	"time"
)

// LabResult represents one laboratory value for a patient.
type LabResult struct {
	BaseModel
	PatientID      string    `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID       string    `gorm:"size:36;index" json:"doctorId,omitempty"`
	TestName       string    `gorm:"size:100;not null" json:"testName"`
	Value          float64   `json:"value"`
	Unit           string    `gorm:"size:30" json:"unit"`
	ReferenceRange string    `gorm:"size:50" json:"referenceRange,omitempty"`
	TakenAt        time.Time `gorm:"index" json:"takenAt"`
	Remarks        string    `gorm:"type:text" json:"remarks,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
