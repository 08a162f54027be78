package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quiz-attempt-service/internal/metrics"
)

type Type string

const (
	TypeAttemptStarted     Type = "attempt.started"
	TypeSubmissionRecorded Type = "submission.recorded"
)

// Event is a notification about an attempt, emitted after the state change it describes.
type Event struct {
	Type       Type           `json:"type"`
	UserID     string         `json:"userId"`
	QuizID     string         `json:"quizId"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Publisher delivers an event to one destination.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Dispatcher fans events out to publishers in the background.
// Publish failures are logged and never reach the caller.
type Dispatcher struct {
	publishers []Publisher
	logger     *slog.Logger
	wg         sync.WaitGroup
}

func NewDispatcher(logger *slog.Logger, publishers ...Publisher) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{publishers: publishers, logger: logger}
}

// Trigger dispatches the event. The request context may end before publishing does, so its
// cancellation is detached.
func (d *Dispatcher) Trigger(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	metrics.RecordEvent(string(event.Type))

	ctx = context.WithoutCancel(ctx)
	for _, p := range d.publishers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := p.Publish(ctx, event); err != nil {
				d.logger.Error("failed to publish event", "error", err, "type", event.Type, "quiz_id", event.QuizID)
			}
		}()
	}
}

// Wait blocks until in-flight publishes finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogPublisher writes events to a structured logger.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "event",
		"type", event.Type,
		"user_id", event.UserID,
		"quiz_id", event.QuizID,
		"payload", event.Payload,
	)
	return nil
}
