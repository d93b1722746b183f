package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TypeBookingEscalate = "booking:escalate"

// EscalationPayload identifies the booking to re-check.
type EscalationPayload struct {
	BookingID string `json:"bookingId"`
}

func NewEscalationTask(bookingID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(EscalationPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingEscalate, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.MaxRetry(3),
		// One escalation per booking, even when scheduling is retried.
		asynq.TaskID("escalate:" + bookingID),
	}

	return task, opts, nil
}

// ParseEscalationPayload decodes a task payload.
func ParseEscalationPayload(task *asynq.Task) (EscalationPayload, error) {
	var p EscalationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid escalation payload: %w", err)
	}
	if p.BookingID == "" {
		return p, fmt.Errorf("escalation payload has no booking id")
	}
	return p, nil
}

// AsynqEscalator schedules escalation tasks on the asynq queue.
type AsynqEscalator struct {
	client *asynq.Client
	delay  time.Duration
}

func NewAsynqEscalator(opt asynq.RedisClientOpt, delay time.Duration) *AsynqEscalator {
	return &AsynqEscalator{client: asynq.NewClient(opt), delay: delay}
}

func (e *AsynqEscalator) ScheduleEscalation(ctx context.Context, bookingID string) error {
	task, opts, err := NewEscalationTask(bookingID, time.Now().Add(e.delay))
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue escalation for %s: %w", bookingID, err)
	}
	return nil
}

func (e *AsynqEscalator) Close() error {
	return e.client.Close()
}
