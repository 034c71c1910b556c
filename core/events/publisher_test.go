package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ynab-exchange/core/reconcile"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &captureWriter{}
	p := &KafkaPublisher{writer: w, timeout: time.Second}

	event := reconcile.Event{
		Type:     reconcile.EventMirrorCreated,
		PassID:   "01HZX",
		BudgetID: "b",
		SourceID: "tx-1",
		MirrorID: "m-1",
		Amount:   -35000,
	}
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "b/tx-1", string(msg.Key))
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, "mirror_created", string(msg.Headers[0].Value))

	var decoded reconcile.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "m-1", decoded.MirrorID)
	assert.Equal(t, int64(-35000), decoded.Amount)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	p := &KafkaPublisher{writer: &captureWriter{err: errors.New("no brokers")}, timeout: time.Second}

	err := p.Publish(context.Background(), reconcile.Event{Type: reconcile.EventSourceMarked})
	assert.ErrorContains(t, err, "source_marked")
	assert.ErrorContains(t, err, "no brokers")
}

func TestConfig_BrokerList(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, Config{Brokers: " k1:9092, ,k2:9092"}.BrokerList())
	assert.True(t, Config{Brokers: "k1:9092"}.Enabled())
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher(Config{Brokers: "localhost:9092", Topic: "mirrors"})
	writer, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "mirrors", writer.Topic)
	assert.Equal(t, 10*time.Second, p.timeout)
}
