// Package notifier provides registry event sinks: structured logs,
// Prometheus counters, Kafka publication and fan-out to several sinks.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"microauth/internal/walletauth/metrics"
	"microauth/internal/walletauth/models"
	"microauth/internal/walletauth/registry"
	"microauth/pkg/domain"
	"microauth/pkg/requestcontext"

	contract "microauth/contracts/registry"
)

// Multi delivers each event to every notifier in order. A panicking notifier
// is logged and skipped; the rest still receive the event.
type Multi struct {
	notifiers []registry.Notifier
	logger    *slog.Logger
}

func NewMulti(logger *slog.Logger, notifiers ...registry.Notifier) *Multi {
	return &Multi{notifiers: notifiers, logger: logger}
}

// Add appends n to the delivery order.
func (m *Multi) Add(n registry.Notifier) {
	m.notifiers = append(m.notifiers, n)
}

func (m *Multi) OnRegistered(ctx context.Context, wallet string, status models.AuthStatus, score uint8) {
	for _, n := range m.notifiers {
		m.deliver(ctx, n, contract.EventRegistered, func() {
			n.OnRegistered(ctx, wallet, status, score)
		})
	}
}

func (m *Multi) OnStatusChanged(ctx context.Context, wallet string, old, status models.AuthStatus, score uint8) {
	for _, n := range m.notifiers {
		m.deliver(ctx, n, contract.EventStatusChanged, func() {
			n.OnStatusChanged(ctx, wallet, old, status, score)
		})
	}
}

func (m *Multi) OnContractUpgraded(ctx context.Context, addr string) {
	for _, n := range m.notifiers {
		m.deliver(ctx, n, contract.EventContractUpgraded, func() {
			n.OnContractUpgraded(ctx, addr)
		})
	}
}

func (m *Multi) deliver(ctx context.Context, n registry.Notifier, kind string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			m.logger.ErrorContext(ctx, "registry notifier panicked",
				"event", kind,
				"notifier", fmt.Sprintf("%T", n),
				"panic", fmt.Sprint(rec),
			)
		}
	}()
	fn()
}

// LogNotifier writes one structured line per event.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) OnRegistered(ctx context.Context, wallet string, status models.AuthStatus, score uint8) {
	l.logger.InfoContext(ctx, "wallet registered",
		"event", contract.EventRegistered,
		"wallet", domain.WalletAddress(wallet).Short(),
		"status", status.String(),
		"trust_score", score,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func (l *LogNotifier) OnStatusChanged(ctx context.Context, wallet string, old, status models.AuthStatus, score uint8) {
	l.logger.InfoContext(ctx, "wallet status changed",
		"event", contract.EventStatusChanged,
		"wallet", domain.WalletAddress(wallet).Short(),
		"previous_status", old.String(),
		"status", status.String(),
		"trust_score", score,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func (l *LogNotifier) OnContractUpgraded(ctx context.Context, addr string) {
	l.logger.InfoContext(ctx, "registry contract upgraded",
		"event", contract.EventContractUpgraded,
		"next_contract", domain.WalletAddress(addr).Short(),
		"request_id", requestcontext.RequestID(ctx),
	)
}

// MetricsNotifier counts events by kind.
type MetricsNotifier struct {
	metrics *metrics.Metrics
}

func NewMetrics(m *metrics.Metrics) *MetricsNotifier {
	return &MetricsNotifier{metrics: m}
}

func (m *MetricsNotifier) OnRegistered(context.Context, string, models.AuthStatus, uint8) {
	m.metrics.IncrementEvent(contract.EventRegistered)
}

func (m *MetricsNotifier) OnStatusChanged(context.Context, string, models.AuthStatus, models.AuthStatus, uint8) {
	m.metrics.IncrementEvent(contract.EventStatusChanged)
}

func (m *MetricsNotifier) OnContractUpgraded(context.Context, string) {
	m.metrics.IncrementEvent(contract.EventContractUpgraded)
}

var (
	_ registry.Notifier = (*Multi)(nil)
	_ registry.Notifier = (*LogNotifier)(nil)
	_ registry.Notifier = (*MetricsNotifier)(nil)
)
