package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

// EventApplier turns an operational event into ledger movements.
type EventApplier interface {
	ApplyFromEvent(ctx context.Context, ev domain.OperationalEvent) domain.EventResult
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// EventConsumer reads operational events from a Kafka topic.
type EventConsumer struct {
	reader  messageReader
	applier EventApplier
}

func NewEventConsumer(brokers []string, topic, groupID string, applier EventApplier) *EventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &EventConsumer{reader: reader, applier: applier}
}

// Run consumes until ctx is cancelled. Undecodable messages are logged and
// skipped so one bad payload cannot stall the partition.
func (c *EventConsumer) Run(ctx context.Context) error {
	log.Info().Msg("event consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				log.Info().Msg("event consumer stopped")
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		if _, err := c.handleMessage(ctx, msg.Value); err != nil {
			log.Error().Err(err).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("event consumer: skipping message")
		}
	}
}

func (c *EventConsumer) handleMessage(ctx context.Context, value []byte) (domain.EventResult, error) {
	var ev domain.OperationalEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return domain.EventResult{}, fmt.Errorf("failed to decode operational event: %w", err)
	}
	if strings.TrimSpace(ev.ID) == "" {
		return domain.EventResult{}, errors.New("operational event has no id")
	}

	result := c.applier.ApplyFromEvent(ctx, ev)

	logEvent := log.Info()
	if !result.Success {
		logEvent = log.Warn().Strs("errors", result.Errors)
	}
	logEvent.
		Str("event_id", ev.ID).
		Str("tenant_id", ev.TenantID).
		Str("property_id", ev.PropertyID).
		Int("movements", len(result.Movements)).
		Int("duplicates", len(result.Duplicates)).
		Msg("operational event applied")

	return result, nil
}

func (c *EventConsumer) Close() error {
	return c.reader.Close()
}
