package notify

import (
	"context"

	"gorm.io/gorm"

	"pd-care-server/internal/models"
	"pd-care-server/internal/schedule"
)

// Database writes in-app notification rows: one per clinic-side
// recipient for pending requests, one for the patient on resolution.
type Database struct {
	DB *gorm.DB
}

// NewDatabase creates the in-app notification channel.
func NewDatabase(db *gorm.DB) *Database {
	return &Database{DB: db}
}

// ReschedulePending creates a notification row for every staff, doctor
// and admin user.
func (d *Database) ReschedulePending(ctx context.Context, patient models.User, sched models.Schedule) error {
	var recipients []models.User
	err := d.DB.WithContext(ctx).
		Where("role IN ?", []models.Role{models.RoleStaff, models.RoleDoctor, models.RoleAdmin}).
		Find(&recipients).Error
	if err != nil {
		return err
	}

	rows := make([]models.Notification, 0, len(recipients))
	for _, r := range recipients {
		rows = append(rows, models.Notification{
			RecipientID: r.ID,
			ScheduleID:  sched.ID,
			Kind:        models.NotifyReschedulePending,
			Title:       "Reschedule request awaiting review",
			Body:        pendingBody(patient, sched),
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return d.DB.WithContext(ctx).Create(&rows).Error
}

// RescheduleResolved creates a notification row for the patient.
func (d *Database) RescheduleResolved(ctx context.Context, patient models.User, sched models.Schedule, outcome schedule.Outcome) error {
	row := models.Notification{
		RecipientID: patient.ID,
		ScheduleID:  sched.ID,
		Kind:        resolvedKind(outcome),
		Title:       resolvedTitle(outcome),
		Body:        resolvedBody(sched, outcome),
	}
	return d.DB.WithContext(ctx).Create(&row).Error
}
