package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/discharge-warning/internal/config"
	"github.com/couchcryptid/discharge-warning/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes station warning levels to a Kafka topic.
// It implements pipeline.ResultLoader.
type Writer struct {
	writer  messageWriter
	timeout time.Duration
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, timeout: cfg.KafkaPublishTimeout, logger: logger}
}

// LoadBatch publishes one message per station in a single WriteMessages call,
// bounded by the configured publish timeout.
func (w *Writer) LoadBatch(ctx context.Context, levels []domain.StationLevel) error {
	if len(levels) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(levels))
	for i := range levels {
		msg, err := serializeToMessage(levels[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish warning levels: %w", err)
	}
	w.logger.Debug("warning levels published", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StationLevel into a Kafka message keyed by station.
func serializeToMessage(level domain.StationLevel) (kafkago.Message, error) {
	data, err := json.Marshal(level)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station %s: %w", level.StationID, err)
	}
	return kafkago.Message{
		Key:   []byte(level.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "warning_level", Value: []byte(strconv.Itoa(level.Level))},
			{Key: "classified_at", Value: []byte(level.ClassifiedAt.Format(time.RFC3339))},
		},
	}, nil
}
