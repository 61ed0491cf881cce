package models

import (
	"time"
)

// NotificationKind classifies in-app notifications
type NotificationKind string

const (
	NotifyReschedulePending  NotificationKind = "reschedule_pending"
	NotifyRescheduleApproved NotificationKind = "reschedule_approved"
	NotifyRescheduleDenied   NotificationKind = "reschedule_denied"
	NotifyRescheduleRebooked NotificationKind = "reschedule_rebooked"
	NotifyCheckupReminder    NotificationKind = "checkup_reminder"
)

// Notification represents an in-app notification row for a user.
type Notification struct {
	BaseModel
	RecipientID string           `gorm:"size:36;index;not null" json:"recipientId"`
	ScheduleID  string           `gorm:"size:36;index" json:"scheduleId,omitempty"`
	Kind        NotificationKind `gorm:"size:30" json:"kind"`
	Title       string           `gorm:"size:255" json:"title"`
	Body        string           `gorm:"type:text" json:"body"`
	ReadAt      *time.Time       `json:"readAt,omitempty"`

	// Relations
	Recipient User     `gorm:"foreignKey:RecipientID" json:"-"`
	Schedule  Schedule `gorm:"foreignKey:ScheduleID" json:"-"`
}
