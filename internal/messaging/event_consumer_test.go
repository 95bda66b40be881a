package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

type recordingApplier struct {
	events []domain.OperationalEvent
}

func (r *recordingApplier) ApplyFromEvent(_ context.Context, ev domain.OperationalEvent) domain.EventResult {
	r.events = append(r.events, ev)
	return domain.EventResult{EventID: ev.ID, Success: true}
}

type sliceReader struct {
	messages []kafka.Message
	drained  chan struct{}
	closed   bool
}

func (s *sliceReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(s.messages) == 0 {
		close(s.drained)
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := s.messages[0]
	s.messages = s.messages[1:]
	return msg, nil
}

func (s *sliceReader) Close() error {
	s.closed = true
	return nil
}

func TestHandleMessageDecodesEvent(t *testing.T) {
	applier := &recordingApplier{}
	c := &EventConsumer{applier: applier}

	payload := []byte(`{"id":"evt-1","tenant_id":"t1","property_id":"villa-7","type":"cleaning_completed","note":"3x domestos","items":[{"name":"savo","quantity":2}]}`)
	result, err := c.handleMessage(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, result.Success)

	require.Len(t, applier.events, 1)
	ev := applier.events[0]
	assert.Equal(t, "evt-1", ev.ID)
	assert.Equal(t, "villa-7", ev.PropertyID)
	assert.Equal(t, "3x domestos", ev.Note)
	require.Len(t, ev.Items, 1)
	assert.Equal(t, 2.0, ev.Items[0].Quantity)
}

func TestHandleMessageRejectsBadPayloads(t *testing.T) {
	applier := &recordingApplier{}
	c := &EventConsumer{applier: applier}

	_, err := c.handleMessage(context.Background(), []byte(`{not json`))
	assert.Error(t, err)
	_, err = c.handleMessage(context.Background(), []byte(`{"tenant_id":"t1"}`))
	assert.Error(t, err)
	assert.Empty(t, applier.events)
}

func TestRunSkipsBadMessagesAndStopsOnCancel(t *testing.T) {
	applier := &recordingApplier{}
	reader := &sliceReader{messages: []kafka.Message{
		{Value: []byte(`garbage`)},
		{Value: []byte(`{"id":"a","tenant_id":"t1","property_id":"p1","note":"domestos"}`)},
		{Value: []byte(`{"id":"b","tenant_id":"t1","property_id":"p1","note":"savo"}`)},
	}, drained: make(chan struct{})}
	c := &EventConsumer{reader: reader, applier: applier}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(time.Second):
		t.Fatal("consumer did not drain the reader")
	}
	cancel()
	require.NoError(t, <-done)

	require.Len(t, applier.events, 2)
	assert.Equal(t, "a", applier.events[0].ID)
	assert.Equal(t, "b", applier.events[1].ID)

	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
}

func TestRunReturnsReaderErrors(t *testing.T) {
	c := &EventConsumer{reader: failingReader{}, applier: &recordingApplier{}}
	err := c.Run(context.Background())
	assert.ErrorContains(t, err, "broker down")
}

type failingReader struct{}

func (failingReader) ReadMessage(context.Context) (kafka.Message, error) {
	return kafka.Message{}, errors.New("broker down")
}

func (failingReader) Close() error { return nil }
