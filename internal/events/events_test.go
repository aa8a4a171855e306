package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherPublish(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}

	err := p.Publish(context.Background(), TopicProducts, "p-1", Event{"type": "product_created", "productID": "p-1"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	require.Equal(t, TopicProducts, w.msgs[0].Topic)
	require.Equal(t, []byte("p-1"), w.msgs[0].Key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	require.Equal(t, "product_created", got["type"])

	require.NoError(t, p.Close())
	require.True(t, w.closed)
}

func TestPublishBestEffortLogsFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	p := &KafkaPublisher{w: &fakeWriter{err: errors.New("broker down")}}

	PublishBestEffort(context.Background(), p, l, TopicOrders, "o-1", Event{"type": "order_created"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "event_publish_failed", line["msg"])
	require.Equal(t, TopicOrders, line["topic"])
	require.Contains(t, line["error"], "broker down")
}

func TestPublishBestEffortNilPublisher(t *testing.T) {
	t.Parallel()
	require.NotPanics(t, func() {
		PublishBestEffort(context.Background(), nil, slog.Default(), TopicUsers, "u", Event{})
	})
	require.NoError(t, Nop{}.Publish(context.Background(), TopicUsers, "u", Event{}))
}
