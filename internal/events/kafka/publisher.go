// Package kafka publishes entry lifecycle events.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// batchTimeout bounds how long a partial batch waits before it is sent.
// kafka-go's one second default would be added to every write request.
const batchTimeout = 10 * time.Millisecond

type Publisher struct {
	writer messageWriter
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           batchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

type payload struct {
	Event       string    `json:"evento"`
	OccurredAt  time.Time `json:"ocorrido_em"`
	ID          int64     `json:"id"`
	UserID      int64     `json:"usuario"`
	Description string    `json:"descricao"`
	Month       int       `json:"mes"`
	Year        int       `json:"ano"`
	Value       string    `json:"valor"`
	Type        string    `json:"tipo"`
	Status      string    `json:"status"`
}

func message(ev entry.Event) (kafka.Message, error) {
	data, err := json.Marshal(payload{
		Event:       ev.Name,
		OccurredAt:  ev.OccurredAt,
		ID:          ev.Entry.ID,
		UserID:      ev.Entry.UserID,
		Description: ev.Entry.Description,
		Month:       ev.Entry.Month,
		Year:        ev.Entry.Year,
		Value:       ev.Entry.Value.StringFixed(2),
		Type:        string(ev.Entry.Type),
		Status:      string(ev.Entry.Status),
	})
	if err != nil {
		return kafka.Message{}, err
	}

	// Keyed by user so one user's events stay ordered on a single partition.
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.Entry.UserID, 10)),
		Value: data,
		Time:  ev.OccurredAt,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, ev entry.Event) error {
	msg, err := message(ev)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", ev.Name, err)
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s event: %w", ev.Name, err)
	}

	return nil
}

// PublishBatch sends every event in a single write.
func (p *Publisher) PublishBatch(ctx context.Context, events []entry.Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))

	for _, ev := range events {
		msg, err := message(ev)
		if err != nil {
			return fmt.Errorf("encoding %s event: %w", ev.Name, err)
		}

		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("writing %d events: %w", len(msgs), err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
