package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"pd-care-server/internal/models"
	"pd-care-server/internal/schedule"
)

// EmailPayload is the message the mail worker consumes from the queue.
// Rendering the actual email is entirely the worker's concern.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MailQueue publishes email payloads to an AMQP queue for the mail
// worker. Publishing is the extent of its delivery guarantee.
type MailQueue struct {
	channel    *amqp091.Channel
	queue      string
	staffInbox string
}

// NewMailQueue opens a channel on the connection and declares the queue.
// staffInbox receives the clinic-side emails.
func NewMailQueue(conn *amqp091.Connection, queue, staffInbox string) (*MailQueue, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &MailQueue{channel: channel, queue: queue, staffInbox: staffInbox}, nil
}

// ReschedulePending mails the clinic inbox about a new request.
func (m *MailQueue) ReschedulePending(ctx context.Context, patient models.User, sched models.Schedule) error {
	return m.publish(ctx, EmailPayload{
		To:      m.staffInbox,
		Subject: "Reschedule request awaiting review",
		Body:    pendingBody(patient, sched),
	})
}

// RescheduleResolved mails the patient about the outcome.
func (m *MailQueue) RescheduleResolved(ctx context.Context, patient models.User, sched models.Schedule, outcome schedule.Outcome) error {
	return m.publish(ctx, EmailPayload{
		To:      patient.Email,
		Subject: resolvedTitle(outcome),
		Body:    resolvedBody(sched, outcome),
	})
}

func (m *MailQueue) publish(ctx context.Context, payload EmailPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
	}
	if err := m.channel.PublishWithContext(ctx, "", m.queue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close releases the AMQP channel.
func (m *MailQueue) Close() error {
	return m.channel.Close()
}
