package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is the notification payload published for downstream consumers
// (the toast stream shown to the exerciser).
type Event struct {
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Kafka publishes notification events to a single topic. Publishing is
// fire-and-forget; failures are logged, never returned to the schedule core.
type Kafka struct {
	writer  *kafka.Writer
	timeout time.Duration
	logger  *slog.Logger
}

// NewKafka constructs a Kafka notifier writing to topic on the brokers.
func NewKafka(brokers []string, topic string, logger *slog.Logger) *Kafka {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Async:        false,
		},
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// Success publishes a success-level event.
func (k *Kafka) Success(message string) {
	k.publish("success", message)
}

// Error publishes an error-level event.
func (k *Kafka) Error(message string) {
	k.publish("error", message)
}

func (k *Kafka) publish(level, message string) {
	body, err := json.Marshal(Event{
		Level:      level,
		Message:    message,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		k.logger.Error("notification encode failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
	defer cancel()

	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(level),
		Value: body,
	}); err != nil {
		k.logger.Error("notification publish failed", "level", level, "error", err)
	}
}

// Close releases the underlying writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
