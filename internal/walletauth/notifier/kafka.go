package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"microauth/internal/platform/kafka/producer"
	"microauth/internal/walletauth/models"
	"microauth/internal/walletauth/registry"
	"microauth/pkg/platform/circuit"
	"microauth/pkg/requestcontext"

	contract "microauth/contracts/registry"
)

// Publisher is the subset of producer.Producer used for events.
// onDone receives the delivery result unless ProduceAsync returns an error.
type Publisher interface {
	ProduceAsync(msg *producer.Message, onDone func(error)) error
}

// KafkaNotifier publishes each event as a JSON contract.EventPayload. Records are
// keyed by wallet so a wallet's history stays on one partition.
// Enqueue and delivery results both feed the breaker. While it is open
// individual failures are logged at debug level; the open and close
// transitions are logged once each.
type KafkaNotifier struct {
	publisher Publisher
	topic     string
	logger    *slog.Logger
	breaker   *circuit.Breaker
	now       func() time.Time
	newID     func() string
}

func NewKafka(publisher Publisher, topic string, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
		breaker:   circuit.New("kafka_events"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Degraded reports whether recent events have failed to reach the broker.
func (k *KafkaNotifier) Degraded() bool {
	return k.breaker.State() == circuit.StateOpen
}

func (k *KafkaNotifier) OnRegistered(ctx context.Context, wallet string, status models.AuthStatus, score uint8) {
	k.publish(ctx, wallet, contract.EventPayload{
		Kind:       contract.EventRegistered,
		Wallet:     wallet,
		Status:     status.String(),
		TrustScore: &score,
	})
}

func (k *KafkaNotifier) OnStatusChanged(ctx context.Context, wallet string, old, status models.AuthStatus, score uint8) {
	k.publish(ctx, wallet, contract.EventPayload{
		Kind:           contract.EventStatusChanged,
		Wallet:         wallet,
		PreviousStatus: old.String(),
		Status:         status.String(),
		TrustScore:     &score,
	})
}

func (k *KafkaNotifier) OnContractUpgraded(ctx context.Context, addr string) {
	k.publish(ctx, addr, contract.EventPayload{
		Kind:            contract.EventContractUpgraded,
		ContractAddress: addr,
	})
}

func (k *KafkaNotifier) publish(ctx context.Context, key string, payload contract.EventPayload) {
	payload.ID = k.newID()
	payload.Version = contract.ContractVersion
	payload.OccurredAt = k.now().Unix()

	value, err := json.Marshal(payload)
	if err != nil {
		k.logger.ErrorContext(ctx, "failed to encode registry event", "kind", payload.Kind, "error", err)
		return
	}

	headers := map[string]string{
		"event_kind":       payload.Kind,
		"contract_version": contract.ContractVersion,
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		headers["request_id"] = requestID
	}

	// Delivery completes on a producer goroutine after the request is gone.
	logCtx := context.WithoutCancel(ctx)
	err = k.publisher.ProduceAsync(&producer.Message{
		Topic:   k.topic,
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	}, func(err error) {
		k.record(logCtx, payload, err)
	})
	if err != nil {
		k.record(logCtx, payload, err)
	}
}

func (k *KafkaNotifier) record(ctx context.Context, payload contract.EventPayload, err error) {
	switch k.breaker.Record(err) {
	case circuit.Opened:
		k.logger.ErrorContext(ctx, "registry event publishing degraded", "breaker", k.breaker.Name(), "error", err)
	case circuit.Closed:
		k.logger.InfoContext(ctx, "registry event publishing recovered", "breaker", k.breaker.Name())
	}
	if err == nil {
		return
	}
	level := slog.LevelWarn
	if k.Degraded() {
		level = slog.LevelDebug
	}
	k.logger.Log(ctx, level, "failed to publish registry event",
		"kind", payload.Kind,
		"event_id", payload.ID,
		"error", err,
	)
}

var _ registry.Notifier = (*KafkaNotifier)(nil)
