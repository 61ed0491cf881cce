// Package notify delivers reschedule and reminder notifications.
// The scheduling workflow only guarantees it invokes a Notifier once
// per state transition; everything about channels and retries lives
// here or further downstream.
package notify

import (
	"context"
	"fmt"
	"time"

	"pd-care-server/internal/models"
	"pd-care-server/internal/schedule"
)

// Multi fans one notification out to several channels. Each channel is
// attempted even when an earlier one fails; the first error is
// returned for logging.
type Multi []schedule.Notifier

// ReschedulePending dispatches the staff-side notification to every channel.
func (m Multi) ReschedulePending(ctx context.Context, patient models.User, sched models.Schedule) error {
	var first error
	for _, n := range m {
		if err := n.ReschedulePending(ctx, patient, sched); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RescheduleResolved dispatches the patient-side notification to every channel.
func (m Multi) RescheduleResolved(ctx context.Context, patient models.User, sched models.Schedule, outcome schedule.Outcome) error {
	var first error
	for _, n := range m {
		if err := n.RescheduleResolved(ctx, patient, sched, outcome); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func pendingBody(patient models.User, sched models.Schedule) string {
	date := "unspecified"
	if sched.NewAppointmentDate != nil {
		date = sched.NewAppointmentDate.Format(time.DateOnly)
	}
	return fmt.Sprintf("%s %s asked to move the checkup of %s to %s. Reason: %s",
		patient.FirstName, patient.LastName,
		sched.AppointmentDate.Format(time.DateOnly), date, sched.RescheduleReason)
}

func resolvedTitle(outcome schedule.Outcome) string {
	switch outcome {
	case schedule.OutcomeApproved:
		return "Reschedule request approved"
	case schedule.OutcomeDenied:
		return "Reschedule request denied"
	default:
		return "Checkup rebooked"
	}
}

func resolvedBody(sched models.Schedule, outcome schedule.Outcome) string {
	switch outcome {
	case schedule.OutcomeDenied:
		if sched.Remarks != "" {
			return fmt.Sprintf("Your reschedule request was denied: %s. The checkup stays on %s.",
				sched.Remarks, sched.AppointmentDate.Format(time.DateOnly))
		}
		return fmt.Sprintf("Your reschedule request was denied. The checkup stays on %s.",
			sched.AppointmentDate.Format(time.DateOnly))
	case schedule.OutcomeRebooked:
		return fmt.Sprintf("A missed checkup was rebooked for %s. Please confirm your attendance closer to the date.",
			sched.AppointmentDate.Format(time.DateOnly))
	default:
		return fmt.Sprintf("Your checkup was moved to %s. Please confirm your attendance closer to the date.",
			sched.AppointmentDate.Format(time.DateOnly))
	}
}

func resolvedKind(outcome schedule.Outcome) models.NotificationKind {
	switch outcome {
	case schedule.OutcomeApproved:
		return models.NotifyRescheduleApproved
	case schedule.OutcomeDenied:
		return models.NotifyRescheduleDenied
	default:
		return models.NotifyRescheduleRebooked
	}
}
