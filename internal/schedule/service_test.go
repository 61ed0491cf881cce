package schedule

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pd-care-server/internal/models"
)

// fixedClock pins "now" so window and cadence checks are deterministic.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type resolvedCall struct {
	scheduleID string
	patientID  string
	outcome    Outcome
}

// recordingNotifier captures workflow notifications for assertions.
type recordingNotifier struct {
	pending  []string
	resolved []resolvedCall
}

func (r *recordingNotifier) ReschedulePending(_ context.Context, patient models.User, sched models.Schedule) error {
	r.pending = append(r.pending, sched.ID)
	return nil
}

func (r *recordingNotifier) RescheduleResolved(_ context.Context, patient models.User, sched models.Schedule, outcome Outcome) error {
	r.resolved = append(r.resolved, resolvedCall{scheduleID: sched.ID, patientID: patient.ID, outcome: outcome})
	return nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, today time.Time) (*Service, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	svc := NewService(db, fixedClock{now: today}, notifier, nil, Config{
		DailyLimit:        3,
		ConfirmWindowDays: 2,
		Cadence:           DefaultCadence(),
	})
	return svc, notifier
}

func createPatient(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, FirstName: "Pat", LastName: "Doe", Role: models.RolePatient}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createSchedule(t *testing.T, db *gorm.DB, patientID string, date time.Time, status models.CheckupStatus) models.Schedule {
	t.Helper()
	sched := models.Schedule{
		PatientID:          patientID,
		AppointmentDate:    DateOf(date),
		ConfirmationStatus: models.ConfirmationPending,
		CheckupStatus:      status,
	}
	require.NoError(t, db.Create(&sched).Error)
	return sched
}

var (
	today    = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	todayDay = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func TestRequestReschedule(t *testing.T) {
	t.Run("Opens A Request And Notifies Staff Once", func(t *testing.T) {
		db := testDB(t)
		svc, notifier := newTestService(t, db, today)
		patient := createPatient(t, db, "req@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)

		newDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		row, err := svc.RequestReschedule(context.Background(), sched.ID, patient.ID, newDate, "travel")
		require.NoError(t, err)

		require.NotNil(t, row.NewAppointmentDate)
		assert.Equal(t, newDate, *row.NewAppointmentDate)
		require.NotNil(t, row.RescheduleRequestedDate)
		assert.Equal(t, "travel", row.RescheduleReason)
		// The appointment itself has not moved yet.
		assert.Equal(t, todayDay, DateOf(row.AppointmentDate))
		assert.Equal(t, []string{sched.ID}, notifier.pending)
	})

	t.Run("Rejects Terminal Schedule With InvalidState", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)
		patient := createPatient(t, db, "terminal@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupCompleted)

		_, err := svc.RequestReschedule(context.Background(), sched.ID, patient.ID,
			todayDay.AddDate(0, 0, 9), "travel")
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeInvalidState, domainErr.Code)
	})

	t.Run("Rejects Duplicate Request With Conflict", func(t *testing.T) {
		db := testDB(t)
		svc, notifier := newTestService(t, db, today)
		patient := createPatient(t, db, "dup@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)

		_, err := svc.RequestReschedule(context.Background(), sched.ID, patient.ID,
			todayDay.AddDate(0, 0, 9), "travel")
		require.NoError(t, err)

		_, err = svc.RequestReschedule(context.Background(), sched.ID, patient.ID,
			todayDay.AddDate(0, 0, 12), "changed my mind")
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeConflict, domainErr.Code)
		// Only the first request notified staff.
		assert.Len(t, notifier.pending, 1)
	})

	t.Run("Rejects Unknown Schedule With NotFound", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)

		_, err := svc.RequestReschedule(context.Background(), "missing", "someone",
			todayDay.AddDate(0, 0, 9), "travel")
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeNotFound, domainErr.Code)
	})

	t.Run("Hides Other Patients Schedules", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)
		owner := createPatient(t, db, "owner@example.com")
		other := createPatient(t, db, "other@example.com")
		sched := createSchedule(t, db, owner.ID, todayDay, models.CheckupPending)

		_, err := svc.RequestReschedule(context.Background(), sched.ID, other.ID,
			todayDay.AddDate(0, 0, 9), "travel")
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeNotFound, domainErr.Code)
	})

	t.Run("Rejects Past Date With ValidationError", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)
		patient := createPatient(t, db, "past@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)

		_, err := svc.RequestReschedule(context.Background(), sched.ID, patient.ID,
			todayDay.AddDate(0, 0, -1), "travel")
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeValidation, domainErr.Code)
	})

	t.Run("Rejects Date At Capacity With LimitExceeded", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today) // cap of 3
		patient := createPatient(t, db, "cap@example.com")
		full := todayDay.AddDate(0, 0, 9)
		for i := 0; i < 3; i++ {
			createSchedule(t, db, patient.ID, full, models.CheckupPending)
		}
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)

		_, err := svc.RequestReschedule(context.Background(), sched.ID, patient.ID, full, "travel")
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeLimitExceeded, domainErr.Code)
	})
}

func TestApproveReschedule(t *testing.T) {
	t.Run("Applies Proposal And Resets Confirmation", func(t *testing.T) {
		db := testDB(t)
		svc, notifier := newTestService(t, db, today)
		patient := createPatient(t, db, "approve@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)

		// Patient already confirmed the old date.
		require.NoError(t, db.Model(&models.Schedule{}).Where("id = ?", sched.ID).
			Update("confirmation_status", models.ConfirmationConfirmed).Error)

		newDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		_, err := svc.RequestReschedule(context.Background(), sched.ID, patient.ID, newDate, "travel")
		require.NoError(t, err)

		row, err := svc.ApproveReschedule(context.Background(), sched.ID, "staff-1")
		require.NoError(t, err)

		assert.Equal(t, newDate, DateOf(row.AppointmentDate))
		assert.Nil(t, row.NewAppointmentDate)
		assert.Nil(t, row.RescheduleRequestedDate)
		// The new date needs a fresh confirmation.
		assert.Equal(t, models.ConfirmationPending, row.ConfirmationStatus)
		require.Len(t, notifier.resolved, 1)
		assert.Equal(t, OutcomeApproved, notifier.resolved[0].outcome)
		assert.Equal(t, patient.ID, notifier.resolved[0].patientID)
	})

	t.Run("Rejects When No Request Is Pending", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)
		patient := createPatient(t, db, "nopending@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)

		_, err := svc.ApproveReschedule(context.Background(), sched.ID, "staff-1")
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeInvalidState, domainErr.Code)
	})

	t.Run("Rechecks Daily Limit At Approval Time", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today) // cap of 3
		patient := createPatient(t, db, "recheck@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)

		target := todayDay.AddDate(0, 0, 9)
		_, err := svc.RequestReschedule(context.Background(), sched.ID, patient.ID, target, "travel")
		require.NoError(t, err)

		// The day fills up between request and approval.
		for i := 0; i < 3; i++ {
			createSchedule(t, db, patient.ID, target, models.CheckupPending)
		}

		_, err = svc.ApproveReschedule(context.Background(), sched.ID, "staff-1")
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeLimitExceeded, domainErr.Code)
	})
}

func TestDenyReschedule(t *testing.T) {
	t.Run("Clears Proposal And Keeps Date", func(t *testing.T) {
		db := testDB(t)
		svc, notifier := newTestService(t, db, today)
		patient := createPatient(t, db, "deny@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay.AddDate(0, 0, 5), models.CheckupPending)

		_, err := svc.RequestReschedule(context.Background(), sched.ID, patient.ID,
			todayDay.AddDate(0, 0, 9), "travel")
		require.NoError(t, err)

		row, err := svc.DenyReschedule(context.Background(), sched.ID, "staff-1", "clinic closed that day")
		require.NoError(t, err)

		assert.Equal(t, todayDay.AddDate(0, 0, 5), DateOf(row.AppointmentDate))
		assert.Nil(t, row.NewAppointmentDate)
		assert.Nil(t, row.RescheduleRequestedDate)
		assert.Equal(t, "clinic closed that day", row.Remarks)
		require.Len(t, notifier.resolved, 1)
		assert.Equal(t, OutcomeDenied, notifier.resolved[0].outcome)
	})
}

func TestConfirm(t *testing.T) {
	cases := []struct {
		name     string
		date     time.Time
		wantCode Code
	}{
		{name: "On The Day", date: todayDay},
		{name: "One Day Ahead", date: todayDay.AddDate(0, 0, 1)},
		{name: "Two Days Ahead", date: todayDay.AddDate(0, 0, 2)},
		{name: "Three Days Ahead", date: todayDay.AddDate(0, 0, 3), wantCode: CodeOutOfWindow},
		{name: "Yesterday", date: todayDay.AddDate(0, 0, -1), wantCode: CodeOutOfWindow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := testDB(t)
			svc, _ := newTestService(t, db, today)
			patient := createPatient(t, db, "confirm@example.com")
			sched := createSchedule(t, db, patient.ID, tc.date, models.CheckupPending)

			row, err := svc.Confirm(context.Background(), sched.ID, patient.ID, DecisionConfirm)
			if tc.wantCode != "" {
				domainErr, ok := AsError(err)
				require.True(t, ok)
				assert.Equal(t, tc.wantCode, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.ConfirmationConfirmed, row.ConfirmationStatus)
		})
	}

	t.Run("Deny Decision", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)
		patient := createPatient(t, db, "confirmdeny@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay.AddDate(0, 0, 1), models.CheckupPending)

		row, err := svc.Confirm(context.Background(), sched.ID, patient.ID, DecisionDeny)
		require.NoError(t, err)
		assert.Equal(t, models.ConfirmationDenied, row.ConfirmationStatus)
	})

	t.Run("Terminal Schedule Rejected", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)
		patient := createPatient(t, db, "confirmterm@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupCancelled)

		_, err := svc.Confirm(context.Background(), sched.ID, patient.ID, DecisionConfirm)
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeInvalidState, domainErr.Code)
	})

	t.Run("Unknown Decision Rejected", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)

		_, err := svc.Confirm(context.Background(), "whatever", "someone", ConfirmDecision("maybe"))
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeValidation, domainErr.Code)
	})
}

func TestDailyLimitReached(t *testing.T) {
	db := testDB(t)
	svc, _ := newTestService(t, db, today) // cap of 3
	patient := createPatient(t, db, "limit@example.com")
	date := todayDay.AddDate(0, 0, 9)

	t.Run("One Below The Cap", func(t *testing.T) {
		createSchedule(t, db, patient.ID, date, models.CheckupPending)
		createSchedule(t, db, patient.ID, date, models.CheckupPending)

		reached, err := svc.DailyLimitReached(context.Background(), date)
		require.NoError(t, err)
		assert.False(t, reached)
	})

	t.Run("At The Cap", func(t *testing.T) {
		createSchedule(t, db, patient.ID, date, models.CheckupPending)

		reached, err := svc.DailyLimitReached(context.Background(), date)
		require.NoError(t, err)
		assert.True(t, reached)
	})

	t.Run("Terminal Rows Do Not Count", func(t *testing.T) {
		other := todayDay.AddDate(0, 0, 16)
		createSchedule(t, db, patient.ID, other, models.CheckupCancelled)
		createSchedule(t, db, patient.ID, other, models.CheckupCompleted)
		createSchedule(t, db, patient.ID, other, models.CheckupCancelled)

		reached, err := svc.DailyLimitReached(context.Background(), other)
		require.NoError(t, err)
		assert.False(t, reached)
	})

	t.Run("Pending Proposals Count", func(t *testing.T) {
		proposalDay := todayDay.AddDate(0, 0, 23)
		for i := 0; i < 3; i++ {
			sched := createSchedule(t, db, patient.ID, todayDay.AddDate(0, 0, 2+i), models.CheckupPending)
			_, err := svc.RequestReschedule(context.Background(), sched.ID, patient.ID, proposalDay, "travel")
			require.NoError(t, err)
		}

		reached, err := svc.DailyLimitReached(context.Background(), proposalDay)
		require.NoError(t, err)
		assert.True(t, reached)
	})
}

func TestRescheduleMissed(t *testing.T) {
	t.Run("Rebooks All Missed Rows And Notifies Each Patient", func(t *testing.T) {
		db := testDB(t)
		svc, notifier := newTestService(t, db, today)

		var missed []models.Schedule
		for i := 0; i < 3; i++ {
			p := createPatient(t, db, fmt.Sprintf("missed%d@example.com", i))
			missed = append(missed, createSchedule(t, db, p.ID, todayDay.AddDate(0, 0, -3-i), models.CheckupPending))
		}
		// Not missed: future pending and terminal past rows.
		future := createPatient(t, db, "future@example.com")
		createSchedule(t, db, future.ID, todayDay.AddDate(0, 0, 7), models.CheckupPending)
		createSchedule(t, db, future.ID, todayDay.AddDate(0, 0, -10), models.CheckupCompleted)

		result, err := svc.RescheduleMissed(context.Background(), "staff-1", nil)
		require.NoError(t, err)

		require.Len(t, result.Rescheduled, 3)
		assert.Equal(t, todayDay.AddDate(0, 0, 28), result.NewDate)
		for _, row := range result.Rescheduled {
			assert.Equal(t, result.NewDate, DateOf(row.AppointmentDate))
			assert.Equal(t, 1, row.MissedCount)
			assert.Equal(t, models.CheckupPending, row.CheckupStatus)
			assert.Equal(t, models.ConfirmationPending, row.ConfirmationStatus)
		}

		require.Len(t, notifier.resolved, 3)
		for _, call := range notifier.resolved {
			assert.Equal(t, OutcomeRebooked, call.outcome)
		}

		// The rebooked rows were persisted, not just mutated in memory.
		var sanity models.Schedule
		require.NoError(t, db.First(&sanity, "id = ?", missed[0].ID).Error)
		assert.Equal(t, result.NewDate, DateOf(sanity.AppointmentDate))
	})

	t.Run("Uses The Administrator Chosen Date", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)
		p := createPatient(t, db, "chosen@example.com")
		createSchedule(t, db, p.ID, todayDay.AddDate(0, 0, -1), models.CheckupPending)

		chosen := todayDay.AddDate(0, 0, 14)
		result, err := svc.RescheduleMissed(context.Background(), "staff-1", &chosen)
		require.NoError(t, err)
		require.Len(t, result.Rescheduled, 1)
		assert.Equal(t, chosen, DateOf(result.Rescheduled[0].AppointmentDate))
	})

	t.Run("No Missed Rows Is A NoOp", func(t *testing.T) {
		db := testDB(t)
		svc, notifier := newTestService(t, db, today)

		result, err := svc.RescheduleMissed(context.Background(), "staff-1", nil)
		require.NoError(t, err)
		assert.Empty(t, result.Rescheduled)
		assert.Empty(t, notifier.resolved)
	})
}

func TestCompleteAndCancel(t *testing.T) {
	t.Run("Complete Is Terminal", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)
		patient := createPatient(t, db, "complete@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)

		row, err := svc.CompleteCheckup(context.Background(), sched.ID, "doc-1", "stable, continue regimen")
		require.NoError(t, err)
		assert.Equal(t, models.CheckupCompleted, row.CheckupStatus)
		assert.Equal(t, "stable, continue regimen", row.CheckupRemarks)

		_, err = svc.RequestReschedule(context.Background(), sched.ID, patient.ID,
			todayDay.AddDate(0, 0, 9), "travel")
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeInvalidState, domainErr.Code)
	})

	t.Run("Cancel Keeps The Row", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)
		patient := createPatient(t, db, "cancel@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)

		row, err := svc.CancelSchedule(context.Background(), sched.ID, "staff-1", "transferred to HD")
		require.NoError(t, err)
		assert.Equal(t, models.CheckupCancelled, row.CheckupStatus)

		var count int64
		require.NoError(t, db.Model(&models.Schedule{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Cancel Twice Rejected", func(t *testing.T) {
		db := testDB(t)
		svc, _ := newTestService(t, db, today)
		patient := createPatient(t, db, "cancel2@example.com")
		sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)

		_, err := svc.CancelSchedule(context.Background(), sched.ID, "staff-1", "")
		require.NoError(t, err)
		_, err = svc.CancelSchedule(context.Background(), sched.ID, "staff-1", "")
		domainErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeInvalidState, domainErr.Code)
	})
}

func TestSeedForPatient(t *testing.T) {
	db := testDB(t)
	svc, _ := newTestService(t, db, today)
	patient := createPatient(t, db, "seed@example.com")

	rows, err := svc.SeedForPatient(context.Background(), patient.ID, "staff-1", todayDay)
	require.NoError(t, err)
	require.Len(t, rows, 14)

	for i, row := range rows {
		assert.Equal(t, todayDay.AddDate(0, 0, 28*i), DateOf(row.AppointmentDate))
		assert.Equal(t, models.CheckupPending, row.CheckupStatus)
		assert.Equal(t, models.ConfirmationPending, row.ConfirmationStatus)
	}

	upcoming, err := svc.UpcomingForPatient(context.Background(), patient.ID)
	require.NoError(t, err)
	assert.Len(t, upcoming, 14)
}

func TestRequestApproveScenario(t *testing.T) {
	// Spec-level scenario: pending checkup on 2024-01-01, patient asks
	// for 2024-01-10 citing travel, staff approves.
	db := testDB(t)
	svc, notifier := newTestService(t, db, today)
	patient := createPatient(t, db, "scenario@example.com")
	sched := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)

	target := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	row, err := svc.RequestReschedule(context.Background(), sched.ID, patient.ID, target, "travel")
	require.NoError(t, err)
	require.NotNil(t, row.NewAppointmentDate)
	assert.Equal(t, target, *row.NewAppointmentDate)
	require.NotNil(t, row.RescheduleRequestedDate)
	require.Len(t, notifier.pending, 1)

	row, err = svc.ApproveReschedule(context.Background(), sched.ID, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, target, DateOf(row.AppointmentDate))
	assert.Equal(t, models.ConfirmationPending, row.ConfirmationStatus)
	assert.Nil(t, row.NewAppointmentDate)
	assert.Nil(t, row.RescheduleRequestedDate)
	require.Len(t, notifier.resolved, 1)
	assert.Equal(t, patient.ID, notifier.resolved[0].patientID)
}
