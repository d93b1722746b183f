package realtime

import (
	"context"

	"ambulink/models"
	"ambulink/observability"
	"ambulink/utils"

	"go.uber.org/zap"
)

// Broadcaster delivers events to realtime subscribers.
type Broadcaster interface {
	Publish(ctx context.Context, event models.Event) error
}

// Sink is a named Broadcaster used by Fanout for logging and metrics.
type Sink struct {
	Name        string
	Broadcaster Broadcaster
}

// Fanout publishes each event to every sink. A failing sink is logged and
// never reported back to the caller.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s.Broadcaster != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *Fanout) Publish(ctx context.Context, event models.Event) error {
	for _, s := range f.sinks {
		if err := s.Broadcaster.Publish(ctx, event); err != nil {
			observability.BroadcastFailures.WithLabelValues(s.Name).Inc()
			utils.GetLogger().Warn("event delivery failed",
				zap.String("sink", s.Name),
				zap.String("event", event.Name),
				zap.Error(err))
		}
	}
	return nil
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, models.Event) error { return nil }
