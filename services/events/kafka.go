package events

import (
	"context"
	"encoding/json"
	"time"

	"ambulink/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of kafka.Writer used by the sink.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaLocationSink streams driver positions to a Kafka topic keyed by driver.
// Every other event is ignored.
type KafkaLocationSink struct {
	writer MessageWriter
}

func NewKafkaLocationSink(brokers []string, topic string) *KafkaLocationSink {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	return &KafkaLocationSink{writer: w}
}

// NewKafkaLocationSinkWithWriter wraps an existing writer.
func NewKafkaLocationSinkWithWriter(w MessageWriter) *KafkaLocationSink {
	return &KafkaLocationSink{writer: w}
}

func (k *KafkaLocationSink) Publish(ctx context.Context, event models.Event) error {
	if event.Name != models.EventDriverLocationUpdated {
		return nil
	}
	loc, ok := event.Payload.(models.DriverLocation)
	if !ok {
		return nil
	}
	b, err := json.Marshal(envelope(event))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(loc.DriverID), Value: b})
}

func (k *KafkaLocationSink) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
