package schedule

import (
	"time"

	"gorm.io/gorm"

	"pd-care-server/internal/models"
)

// Status scopes classify schedule rows against a given "today". They
// are read-only query filters; none of them mutates missed_count.

var terminalStatuses = []models.CheckupStatus{
	models.CheckupCompleted,
	models.CheckupCancelled,
}

// Active filters rows whose checkup is neither completed nor cancelled.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("checkup_status NOT IN ?", terminalStatuses)
}

// Upcoming filters pending rows dated today or later.
func Upcoming(today time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("appointment_date >= ? AND checkup_status = ?", today, models.CheckupPending)
	}
}

// Missed filters pending rows whose date has already passed.
func Missed(today time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("appointment_date < ? AND checkup_status = ?", today, models.CheckupPending)
	}
}

// OnDate filters active rows that occupy the given calendar day, either
// through their appointment date or through a pending reschedule
// proposal. Used by the daily-limit guard.
func OnDate(date time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return Active(db).Where(
			"appointment_date = ? OR (reschedule_requested_date IS NOT NULL AND new_appointment_date = ?)",
			date, date,
		)
	}
}

// PendingRequests filters active rows with an open reschedule request.
func PendingRequests(db *gorm.DB) *gorm.DB {
	return Active(db).Where("reschedule_requested_date IS NOT NULL")
}
