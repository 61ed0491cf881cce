package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pd-care-server/internal/models"
)

func idsOf(rows []models.Schedule) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestStatusScopes(t *testing.T) {
	db := testDB(t)
	patient := createPatient(t, db, "scopes@example.com")

	pastPending := createSchedule(t, db, patient.ID, todayDay.AddDate(0, 0, -7), models.CheckupPending)
	todayPending := createSchedule(t, db, patient.ID, todayDay, models.CheckupPending)
	futurePending := createSchedule(t, db, patient.ID, todayDay.AddDate(0, 0, 28), models.CheckupPending)
	pastDone := createSchedule(t, db, patient.ID, todayDay.AddDate(0, 0, -7), models.CheckupCompleted)
	futureCancelled := createSchedule(t, db, patient.ID, todayDay.AddDate(0, 0, 28), models.CheckupCancelled)

	query := func(scope func(*gorm.DB) *gorm.DB) []models.Schedule {
		var rows []models.Schedule
		require.NoError(t, db.Model(&models.Schedule{}).Scopes(scope).Find(&rows).Error)
		return rows
	}

	t.Run("Active Excludes Terminal", func(t *testing.T) {
		rows := query(Active)
		assert.ElementsMatch(t,
			[]string{pastPending.ID, todayPending.ID, futurePending.ID},
			idsOf(rows))
	})

	t.Run("Upcoming Includes Today", func(t *testing.T) {
		rows := query(Upcoming(todayDay))
		assert.ElementsMatch(t, []string{todayPending.ID, futurePending.ID}, idsOf(rows))
	})

	t.Run("Missed Is Past Pending Only", func(t *testing.T) {
		rows := query(Missed(todayDay))
		assert.ElementsMatch(t, []string{pastPending.ID}, idsOf(rows))
		assert.NotContains(t, idsOf(rows), pastDone.ID)
		assert.NotContains(t, idsOf(rows), futureCancelled.ID)
	})

	t.Run("A Row Is Never Upcoming And Missed", func(t *testing.T) {
		upcoming := idsOf(query(Upcoming(todayDay)))
		missed := idsOf(query(Missed(todayDay)))
		for _, id := range upcoming {
			assert.NotContains(t, missed, id)
		}
	})
}

func TestOnDateScope(t *testing.T) {
	db := testDB(t)
	patient := createPatient(t, db, "ondate@example.com")
	target := todayDay.AddDate(0, 0, 9)

	booked := createSchedule(t, db, patient.ID, target, models.CheckupPending)
	cancelled := createSchedule(t, db, patient.ID, target, models.CheckupCancelled)
	elsewhere := createSchedule(t, db, patient.ID, todayDay.AddDate(0, 0, 3), models.CheckupPending)

	// A pending proposal toward the target date occupies it too.
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	proposing := createSchedule(t, db, patient.ID, todayDay.AddDate(0, 0, 5), models.CheckupPending)
	require.NoError(t, db.Model(&models.Schedule{}).Where("id = ?", proposing.ID).Updates(map[string]any{
		"new_appointment_date":      target,
		"reschedule_requested_date": now,
	}).Error)

	var rows []models.Schedule
	require.NoError(t, db.Model(&models.Schedule{}).Scopes(OnDate(target)).Find(&rows).Error)

	assert.ElementsMatch(t, []string{booked.ID, proposing.ID}, idsOf(rows))
	assert.NotContains(t, idsOf(rows), cancelled.ID)
	assert.NotContains(t, idsOf(rows), elsewhere.ID)
}

func TestPendingRequestsScope(t *testing.T) {
	db := testDB(t)
	patient := createPatient(t, db, "pendingreq@example.com")

	plain := createSchedule(t, db, patient.ID, todayDay.AddDate(0, 0, 5), models.CheckupPending)
	requested := createSchedule(t, db, patient.ID, todayDay.AddDate(0, 0, 6), models.CheckupPending)
	target := todayDay.AddDate(0, 0, 12)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(&models.Schedule{}).Where("id = ?", requested.ID).Updates(map[string]any{
		"new_appointment_date":      target,
		"reschedule_requested_date": now,
	}).Error)

	var rows []models.Schedule
	require.NoError(t, db.Model(&models.Schedule{}).Scopes(PendingRequests).Find(&rows).Error)
	assert.ElementsMatch(t, []string{requested.ID}, idsOf(rows))
	assert.NotContains(t, idsOf(rows), plain.ID)
}
