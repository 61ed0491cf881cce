package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPassword(t *testing.T) {
	user := User{Email: "p@example.com", Role: RolePatient}
	require.NoError(t, user.SetPassword("correct horse battery"))

	assert.NotEqual(t, "correct horse battery", user.Password)
	assert.True(t, user.CheckPassword("correct horse battery"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestUserSanitize(t *testing.T) {
	user := User{Email: "p@example.com", FirstName: "Pat", Role: RolePatient}
	require.NoError(t, user.SetPassword("secret123"))

	sanitized := user.Sanitize()
	assert.Equal(t, user.Email, sanitized.Email)
	assert.Equal(t, user.FirstName, sanitized.FirstName)
}

func TestIsClinician(t *testing.T) {
	cases := []struct {
		role Role
		want bool
	}{
		{role: RoleDoctor, want: true},
		{role: RoleStaff, want: true},
		{role: RoleAdmin, want: true},
		{role: RolePatient, want: false},
	}
	for _, tc := range cases {
		user := User{Role: tc.role}
		assert.Equal(t, tc.want, user.IsClinician(), "role %s", tc.role)
	}
}

func TestScheduleHelpers(t *testing.T) {
	t.Run("Terminal States", func(t *testing.T) {
		for status, want := range map[CheckupStatus]bool{
			CheckupPending:   false,
			CheckupCompleted: true,
			CheckupCancelled: true,
		} {
			sched := Schedule{CheckupStatus: status}
			assert.Equal(t, want, sched.IsTerminal(), "status %s", status)
		}
	})

	t.Run("Clear Reschedule Request", func(t *testing.T) {
		now := time.Now()
		sched := Schedule{
			NewAppointmentDate:      &now,
			RescheduleRequestedDate: &now,
			RescheduleReason:        "travel",
		}
		assert.True(t, sched.HasPendingReschedule())

		sched.ClearRescheduleRequest()
		assert.False(t, sched.HasPendingReschedule())
		assert.Nil(t, sched.NewAppointmentDate)
		assert.Nil(t, sched.RescheduleRequestedDate)
		assert.Empty(t, sched.RescheduleReason)
	})
}
