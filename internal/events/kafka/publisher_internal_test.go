package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/entry"
)

type fakeWriter struct {
	msgs   []kafka.Message
	writes int
	err    error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}

	f.writes++
	f.msgs = append(f.msgs, msgs...)

	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w}
	at := time.Date(2019, 1, 10, 12, 0, 0, 0, time.UTC)

	ev := entry.Event{
		Name:       entry.EventCreated,
		OccurredAt: at,
		Entry: entry.Entry{
			ID:          3,
			UserID:      42,
			Description: "Aluguel",
			Month:       1,
			Year:        2019,
			Value:       decimal.NewFromInt(800),
			Type:        entry.TypeExpense,
			Status:      entry.StatusPending,
		},
	}

	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, at, msg.Time)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "entry.created", got["evento"])
	assert.Equal(t, "800.00", got["valor"])
	assert.Equal(t, "DESPESA", got["tipo"])
	assert.Equal(t, "PENDENTE", got["status"])
}

func TestPublisher_WriteError(t *testing.T) {
	p := &Publisher{writer: &fakeWriter{err: errors.New("broker down")}}

	err := p.Publish(context.Background(), entry.Event{Name: entry.EventDeleted})
	assert.ErrorContains(t, err, "writing entry.deleted event")
}

func TestPublisher_PublishBatch(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w}

	events := make([]entry.Event, 3)
	for i := range events {
		events[i] = entry.Event{
			Name:  entry.EventCreated,
			Entry: entry.Entry{ID: int64(i + 1), UserID: 7, Value: decimal.NewFromInt(10)},
		}
	}

	require.NoError(t, p.PublishBatch(context.Background(), events))
	assert.Equal(t, 1, w.writes)
	require.Len(t, w.msgs, 3)
	assert.Equal(t, "7", string(w.msgs[2].Key))

	require.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.Equal(t, 1, w.writes)
}

func TestNewPublisher_ShortBatchTimeout(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "lancamentos")
	t.Cleanup(func() { _ = p.Close() })

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, batchTimeout, w.BatchTimeout)
	assert.Less(t, w.BatchTimeout, 100*time.Millisecond)
}
