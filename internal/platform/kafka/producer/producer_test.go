package producer

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microauth/internal/platform/config"
)

func TestNew_RequiresBrokers(t *testing.T) {
	_, err := New(config.KafkaConfig{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brokers")
}

func TestToRecord(t *testing.T) {
	rec := toRecord(&Message{
		Topic:   "microauth.registry.events",
		Key:     []byte("K"),
		Value:   []byte("V"),
		Headers: map[string]string{"event_kind": "registered"},
	})
	assert.Equal(t, "microauth.registry.events", rec.Topic)
	assert.Equal(t, []byte("K"), rec.Key)
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, "event_kind", rec.Headers[0].Key)
}

func TestProduceAsync_ReportsDeliveryFailure(t *testing.T) {
	prod, err := New(config.KafkaConfig{
		Brokers:         "127.0.0.1:1",
		Acks:            "all",
		DeliveryTimeout: time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer prod.Close(100 * time.Millisecond)

	done := make(chan error, 1)
	require.NoError(t, prod.ProduceAsync(&Message{Topic: "unreachable", Value: []byte("v")}, func(err error) {
		done <- err
	}))

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("delivery failure was not reported")
	}
}

func TestProduceAsync_ClosedSkipsCallback(t *testing.T) {
	prod, err := New(config.KafkaConfig{Brokers: "127.0.0.1:1"}, nil)
	require.NoError(t, err)
	prod.Close(0)

	called := false
	assert.ErrorIs(t, prod.ProduceAsync(&Message{Topic: "x"}, func(error) { called = true }), ErrClosed)
	assert.False(t, called)
}
