package models

import (
	"time"
)

// CheckupStatus represents the lifecycle status of a checkup occurrence
type CheckupStatus string

const (
	CheckupPending   CheckupStatus = "pending"
	CheckupCompleted CheckupStatus = "completed"
	CheckupCancelled CheckupStatus = "cancelled"
)

// ConfirmationStatus represents whether the patient has affirmed attendance
type ConfirmationStatus string

const (
	ConfirmationPending   ConfirmationStatus = "pending"
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	ConfirmationDenied    ConfirmationStatus = "denied"
)

// Schedule represents one appointment occurrence of a patient's PD
// checkup cadence. Rows are mutated through the workflow and never
// deleted; cancellation is a status transition.
type Schedule struct {
	BaseModel
	PatientID               string             `gorm:"size:36;index;not null" json:"patientId"`
	UserID                  string             `gorm:"size:36;index" json:"userId,omitempty"` // staff/doctor who manages the row
	AppointmentDate         time.Time          `gorm:"index" json:"appointmentDate"`
	NewAppointmentDate      *time.Time         `json:"newAppointmentDate,omitempty"`
	RescheduleRequestedDate *time.Time         `json:"rescheduleRequestedDate,omitempty"`
	RescheduleReason        string             `gorm:"size:500" json:"rescheduleReason,omitempty"`
	ConfirmationStatus      ConfirmationStatus `gorm:"size:20;default:'pending'" json:"confirmationStatus"`
	CheckupStatus           CheckupStatus      `gorm:"size:20;default:'pending'" json:"checkupStatus"`
	MissedCount             int                `gorm:"default:0" json:"missedCount"`
	CheckupRemarks          string             `gorm:"type:text" json:"checkupRemarks,omitempty"`
	Remarks                 string             `gorm:"type:text" json:"remarks,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Staff   User `gorm:"foreignKey:UserID" json:"-"`
}

// IsTerminal reports whether the row permits no further workflow actions.
func (s *Schedule) IsTerminal() bool {
	return s.CheckupStatus == CheckupCompleted || s.CheckupStatus == CheckupCancelled
}

// HasPendingReschedule reports whether a reschedule request is outstanding.
// NewAppointmentDate is only meaningful while this holds.
func (s *Schedule) HasPendingReschedule() bool {
	return s.RescheduleRequestedDate != nil
}

// ClearRescheduleRequest resets the proposal fields as one unit so they
// can never be cleared independently.
func (s *Schedule) ClearRescheduleRequest() {
	s.NewAppointmentDate = nil
	s.RescheduleRequestedDate = nil
	s.RescheduleReason = ""
}
