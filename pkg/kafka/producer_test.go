package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wishlist-backend/pkg/config"
	"github.com/angelmondragon/wishlist-backend/pkg/outbox"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestProducerPublishMapsMessage(t *testing.T) {
	writer := &fakeWriter{}
	p := &Producer{writer: writer, topic: "wishlist-events"}

	err := p.Publish(context.Background(), outbox.Message{
		Key:        "aggregate-1",
		Data:       []byte(`{"version":1}`),
		Attributes: map[string]string{"event_type": "wishlist_item_added"},
	})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)
	msg := writer.written[0]
	require.Equal(t, "aggregate-1", string(msg.Key))
	require.JSONEq(t, `{"version":1}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	require.Equal(t, "event_type", msg.Headers[0].Key)

	require.NoError(t, p.Close())
	require.True(t, writer.closed)
}

func TestProducerPublishWrapsErrors(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("broker down")}, topic: "wishlist-events"}
	err := p.Publish(context.Background(), outbox.Message{Key: "k"})
	require.ErrorContains(t, err, "wishlist-events")
}

func TestNewProducerValidation(t *testing.T) {
	_, err := NewProducer(config.KafkaConfig{WishlistTopic: "t"})
	require.ErrorIs(t, err, errNoBrokers)

	p, err := NewProducer(config.KafkaConfig{Brokers: []string{" kafka ", "kafka2:9093"}, WishlistTopic: "t"})
	require.NoError(t, err)
	require.Equal(t, []string{"kafka:9092", "kafka2:9093"}, p.brokers)
}
