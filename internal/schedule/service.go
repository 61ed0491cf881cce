package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pd-care-server/internal/models"
)

// Outcome is the resolution of a reschedule request.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeDenied   Outcome = "denied"
	OutcomeRebooked Outcome = "rebooked"
)

// ConfirmDecision is the patient's attendance answer.
type ConfirmDecision string

const (
	DecisionConfirm ConfirmDecision = "confirm"
	DecisionDeny    ConfirmDecision = "deny"
)

// Notifier is what the workflow needs from the notification subsystem.
// Delivery channel and retries are the implementation's problem; the
// workflow invokes each hook exactly once per state transition and
// treats failures as non-fatal.
type Notifier interface {
	ReschedulePending(ctx context.Context, patient models.User, sched models.Schedule) error
	RescheduleResolved(ctx context.Context, patient models.User, sched models.Schedule, outcome Outcome) error
}

// Config carries the tunables of the scheduling core.
type Config struct {
	DailyLimit        int
	ConfirmWindowDays int
	Cadence           Cadence
}

// DefaultConfig returns clinic defaults: ten bookings a day, a two-day
// confirmation window, the 28-day cadence.
func DefaultConfig() Config {
	return Config{DailyLimit: 10, ConfirmWindowDays: 2, Cadence: DefaultCadence()}
}

// Service implements the scheduling workflow over the persisted
// schedule store. Each state transition is one atomic read-modify-write
// inside a gorm transaction; cross-request coordination happens only
// through the store.
type Service struct {
	db       *gorm.DB
	clock    Clock
	notifier Notifier
	log      *zap.Logger
	cfg      Config
}

// NewService creates a scheduling service.
func NewService(db *gorm.DB, clock Clock, notifier Notifier, log *zap.Logger, cfg Config) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, clock: clock, notifier: notifier, log: log, cfg: cfg}
}

// Cadence exposes the configured cadence calculator.
func (s *Service) Cadence() Cadence {
	return s.cfg.Cadence
}

// DailyLimitReached reports whether the count of active schedules
// occupying the given date has reached the configured cap. The count
// includes pending reschedule proposals so an approved request cannot
// land on a day it would overflow.
func (s *Service) DailyLimitReached(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Schedule{}).
		Scopes(OnDate(DateOf(date))).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count >= int64(s.cfg.DailyLimit), nil
}

// SeedForPatient creates the one-year checkup schedule for a newly
// registered patient, one pending row per cadence occurrence.
func (s *Service) SeedForPatient(ctx context.Context, patientID, staffID string, start time.Time) ([]models.Schedule, error) {
	dates, err := s.cfg.Cadence.Seed(start)
	if err != nil {
		return nil, err
	}

	rows := make([]models.Schedule, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, models.Schedule{
			PatientID:          patientID,
			UserID:             staffID,
			AppointmentDate:    d,
			ConfirmationStatus: models.ConfirmationPending,
			CheckupStatus:      models.CheckupPending,
		})
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpcomingForPatient lists the patient's pending rows dated today or
// later, earliest first.
func (s *Service) UpcomingForPatient(ctx context.Context, patientID string) ([]models.Schedule, error) {
	var rows []models.Schedule
	err := s.db.WithContext(ctx).
		Scopes(Upcoming(Today(s.clock))).
		Where("patient_id = ?", patientID).
		Order("appointment_date asc").
		Find(&rows).Error
	return rows, err
}

// ListForPatient lists all of a patient's schedule rows, optionally
// narrowed to one status scope ("active", "upcoming" or "missed").
func (s *Service) ListForPatient(ctx context.Context, patientID, scope string) ([]models.Schedule, error) {
	q := s.db.WithContext(ctx).Model(&models.Schedule{}).Where("patient_id = ?", patientID)
	q, err := s.applyScope(q, scope)
	if err != nil {
		return nil, err
	}
	var rows []models.Schedule
	err = q.Order("appointment_date asc").Find(&rows).Error
	return rows, err
}

// ListAll lists schedule rows across patients for the clinic side.
func (s *Service) ListAll(ctx context.Context, scope string) ([]models.Schedule, error) {
	q := s.db.WithContext(ctx).Model(&models.Schedule{}).Preload("Patient")
	q, err := s.applyScope(q, scope)
	if err != nil {
		return nil, err
	}
	var rows []models.Schedule
	err = q.Order("appointment_date asc").Find(&rows).Error
	return rows, err
}

func (s *Service) applyScope(q *gorm.DB, scope string) (*gorm.DB, error) {
	switch scope {
	case "":
		return q, nil
	case "active":
		return q.Scopes(Active), nil
	case "upcoming":
		return q.Scopes(Upcoming(Today(s.clock))), nil
	case "missed":
		return q.Scopes(Missed(Today(s.clock))), nil
	default:
		return nil, ErrValidation(fmt.Sprintf("unknown status scope %q", scope))
	}
}

// PendingRescheduleRequests lists open reschedule requests across
// patients, oldest request first.
func (s *Service) PendingRescheduleRequests(ctx context.Context) ([]models.Schedule, error) {
	var rows []models.Schedule
	err := s.db.WithContext(ctx).
		Scopes(PendingRequests).
		Preload("Patient").
		Order("reschedule_requested_date asc").
		Find(&rows).Error
	return rows, err
}

// RequestReschedule opens a reschedule request on behalf of a patient.
// The appointment date itself is untouched until a clinician approves.
func (s *Service) RequestReschedule(ctx context.Context, scheduleID, patientID string, newDate time.Time, reason string) (*models.Schedule, error) {
	newDate = DateOf(newDate)
	if !newDate.After(Today(s.clock)) {
		return nil, ErrValidation("new appointment date must be in the future")
	}

	var sched models.Schedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sched, err = s.lockRow(tx, scheduleID)
		if err != nil {
			return err
		}
		if patientID != "" && sched.PatientID != patientID {
			return ErrNotFound("schedule not found")
		}
		if sched.IsTerminal() {
			return ErrInvalidState(fmt.Sprintf("checkup is already %s", sched.CheckupStatus))
		}
		if sched.HasPendingReschedule() {
			return ErrConflict("a reschedule request is already pending for this checkup")
		}

		limited, err := s.dailyCountReached(tx, newDate, sched.ID)
		if err != nil {
			return err
		}
		if limited {
			return ErrLimitExceeded(fmt.Sprintf("no remaining capacity on %s", newDate.Format(time.DateOnly)))
		}

		now := s.clock.Now()
		sched.NewAppointmentDate = &newDate
		sched.RescheduleRequestedDate = &now
		sched.RescheduleReason = reason
		return tx.Save(&sched).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyPending(ctx, sched)
	return &sched, nil
}

// ApproveReschedule applies a pending reschedule request: the proposed
// date becomes the appointment date, the proposal fields clear, and the
// patient must confirm the new date afresh. The daily limit is
// re-checked here; requests approved near-simultaneously may otherwise
// overbook a day.
func (s *Service) ApproveReschedule(ctx context.Context, scheduleID, staffID string) (*models.Schedule, error) {
	var sched models.Schedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sched, err = s.lockRow(tx, scheduleID)
		if err != nil {
			return err
		}
		if sched.IsTerminal() {
			return ErrInvalidState(fmt.Sprintf("checkup is already %s", sched.CheckupStatus))
		}
		if !sched.HasPendingReschedule() {
			return ErrInvalidState("no reschedule request is pending for this checkup")
		}

		newDate := *sched.NewAppointmentDate
		limited, err := s.dailyCountReached(tx, newDate, sched.ID)
		if err != nil {
			return err
		}
		if limited {
			return ErrLimitExceeded(fmt.Sprintf("no remaining capacity on %s", newDate.Format(time.DateOnly)))
		}

		sched.AppointmentDate = newDate
		sched.ClearRescheduleRequest()
		sched.ConfirmationStatus = models.ConfirmationPending
		if staffID != "" {
			sched.UserID = staffID
		}
		return tx.Save(&sched).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyResolved(ctx, sched, OutcomeApproved)
	return &sched, nil
}

// DenyReschedule rejects a pending reschedule request. The appointment
// date stays as it was.
func (s *Service) DenyReschedule(ctx context.Context, scheduleID, staffID, note string) (*models.Schedule, error) {
	var sched models.Schedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sched, err = s.lockRow(tx, scheduleID)
		if err != nil {
			return err
		}
		if sched.IsTerminal() {
			return ErrInvalidState(fmt.Sprintf("checkup is already %s", sched.CheckupStatus))
		}
		if !sched.HasPendingReschedule() {
			return ErrInvalidState("no reschedule request is pending for this checkup")
		}

		sched.ClearRescheduleRequest()
		if note != "" {
			sched.Remarks = note
		}
		if staffID != "" {
			sched.UserID = staffID
		}
		return tx.Save(&sched).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyResolved(ctx, sched, OutcomeDenied)
	return &sched, nil
}

// Confirm records the patient's attendance decision. Only permitted in
// the window from the appointment day back to two days before it.
func (s *Service) Confirm(ctx context.Context, scheduleID, patientID string, decision ConfirmDecision) (*models.Schedule, error) {
	if decision != DecisionConfirm && decision != DecisionDeny {
		return nil, ErrValidation(fmt.Sprintf("unknown decision %q", decision))
	}

	var sched models.Schedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sched, err = s.lockRow(tx, scheduleID)
		if err != nil {
			return err
		}
		if patientID != "" && sched.PatientID != patientID {
			return ErrNotFound("schedule not found")
		}
		if sched.IsTerminal() {
			return ErrInvalidState(fmt.Sprintf("checkup is already %s", sched.CheckupStatus))
		}

		days := daysBetween(Today(s.clock), DateOf(sched.AppointmentDate))
		if days < 0 || days > s.cfg.ConfirmWindowDays {
			return ErrOutOfWindow(fmt.Sprintf(
				"attendance can only be confirmed from %d days before the appointment up to the appointment day",
				s.cfg.ConfirmWindowDays))
		}

		if decision == DecisionConfirm {
			sched.ConfirmationStatus = models.ConfirmationConfirmed
		} else {
			sched.ConfirmationStatus = models.ConfirmationDenied
		}
		return tx.Save(&sched).Error
	})
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

// BatchResult reports the outcome of a missed-appointment bulk rebook.
type BatchResult struct {
	Rescheduled []models.Schedule `json:"rescheduled"`
	NewDate     time.Time         `json:"newDate"`
}

// RescheduleMissed rebooks every missed schedule onto a new date: the
// administrator-chosen one, or one cadence interval from today. The
// rows stay pending, their missed count goes up by one, and each
// patient is notified once.
func (s *Service) RescheduleMissed(ctx context.Context, staffID string, chosen *time.Time) (*BatchResult, error) {
	var newDate time.Time
	if chosen != nil {
		newDate = DateOf(*chosen)
		if !newDate.After(Today(s.clock)) {
			return nil, ErrValidation("new appointment date must be in the future")
		}
	} else {
		var err error
		newDate, err = s.cfg.Cadence.Next(Today(s.clock))
		if err != nil {
			return nil, err
		}
	}

	var rebooked []models.Schedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.Schedule
		if err := tx.Scopes(Missed(Today(s.clock))).Order("appointment_date asc").Find(&rows).Error; err != nil {
			return err
		}
		for i := range rows {
			rows[i].AppointmentDate = newDate
			rows[i].MissedCount++
			rows[i].ClearRescheduleRequest()
			rows[i].ConfirmationStatus = models.ConfirmationPending
			if staffID != "" {
				rows[i].UserID = staffID
			}
			if err := tx.Save(&rows[i]).Error; err != nil {
				return err
			}
		}
		rebooked = rows
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, row := range rebooked {
		s.notifyResolved(ctx, row, OutcomeRebooked)
	}
	return &BatchResult{Rescheduled: rebooked, NewDate: newDate}, nil
}

// CompleteCheckup marks a checkup done with the clinician's remarks.
// Completed is terminal; no further workflow actions are permitted.
func (s *Service) CompleteCheckup(ctx context.Context, scheduleID, staffID, remarks string) (*models.Schedule, error) {
	return s.finish(ctx, scheduleID, staffID, models.CheckupCompleted, remarks)
}

// CancelSchedule cancels a checkup occurrence. The row is kept;
// cancellation is a status transition, not removal.
func (s *Service) CancelSchedule(ctx context.Context, scheduleID, staffID, remarks string) (*models.Schedule, error) {
	return s.finish(ctx, scheduleID, staffID, models.CheckupCancelled, remarks)
}

func (s *Service) finish(ctx context.Context, scheduleID, staffID string, status models.CheckupStatus, remarks string) (*models.Schedule, error) {
	var sched models.Schedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		sched, err = s.lockRow(tx, scheduleID)
		if err != nil {
			return err
		}
		if sched.IsTerminal() {
			return ErrInvalidState(fmt.Sprintf("checkup is already %s", sched.CheckupStatus))
		}

		sched.CheckupStatus = status
		sched.ClearRescheduleRequest()
		if remarks != "" {
			sched.CheckupRemarks = remarks
		}
		if staffID != "" {
			sched.UserID = staffID
		}
		return tx.Save(&sched).Error
	})
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

// lockRow loads one schedule row inside the transaction, translating a
// missing row into the domain NotFound error.
func (s *Service) lockRow(tx *gorm.DB, scheduleID string) (models.Schedule, error) {
	var sched models.Schedule
	if err := tx.First(&sched, "id = ?", scheduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sched, ErrNotFound("schedule not found")
		}
		return sched, err
	}
	return sched, nil
}

// dailyCountReached counts active rows occupying date, excluding the
// row being mutated, against the configured cap.
func (s *Service) dailyCountReached(tx *gorm.DB, date time.Time, excludeID string) (bool, error) {
	var count int64
	q := tx.Model(&models.Schedule{}).Scopes(OnDate(date))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count >= int64(s.cfg.DailyLimit), nil
}

// notifyPending fires the staff-side notification for a new reschedule
// request. Best effort: delivery failure never rolls the mutation back.
func (s *Service) notifyPending(ctx context.Context, sched models.Schedule) {
	if s.notifier == nil {
		return
	}
	patient, err := s.patientOf(ctx, sched)
	if err != nil {
		s.log.Error("load patient for notification", zap.String("scheduleID", sched.ID), zap.Error(err))
		return
	}
	if err := s.notifier.ReschedulePending(ctx, patient, sched); err != nil {
		s.log.Error("notify reschedule pending", zap.String("scheduleID", sched.ID), zap.Error(err))
	}
}

func (s *Service) notifyResolved(ctx context.Context, sched models.Schedule, outcome Outcome) {
	if s.notifier == nil {
		return
	}
	patient, err := s.patientOf(ctx, sched)
	if err != nil {
		s.log.Error("load patient for notification", zap.String("scheduleID", sched.ID), zap.Error(err))
		return
	}
	if err := s.notifier.RescheduleResolved(ctx, patient, sched, outcome); err != nil {
		s.log.Error("notify reschedule resolved",
			zap.String("scheduleID", sched.ID),
			zap.String("outcome", string(outcome)),
			zap.Error(err))
	}
}

func (s *Service) patientOf(ctx context.Context, sched models.Schedule) (models.User, error) {
	var patient models.User
	err := s.db.WithContext(ctx).First(&patient, "id = ?", sched.PatientID).Error
	return patient, err
}
