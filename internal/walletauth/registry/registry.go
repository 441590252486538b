// Package registry is the wallet authorization state machine.
//
// A Registry maps wallet addresses to authorization records and holds two
// single-valued settings: the admin address and the next-contract pointer.
// Mutators validate their input, apply the change atomically and then hand a
// notification to the configured Notifier. Invalid input is a soft rejection:
// the mutator returns false and nothing changes.
//
// Caller authorization is a precondition of every mutator. The registry does
// not know who is calling; hosts must check the caller against GetAdmin before
// invoking SetStatus, SetNextContract or TransferAdmin.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"microauth/internal/walletauth/models"
	"microauth/pkg/domain"
	dErrors "microauth/pkg/domain-errors"
)

// ErrInvalidAddress is returned by New and Restore when the admin address is malformed.
var ErrInvalidAddress = dErrors.New(dErrors.CodeInvalidInput, "invalid wallet address")

// Notifier observes successful state transitions. Calls are synchronous and
// made in mutation order; a Notifier must not call back into the Registry.
type Notifier interface {
	OnRegistered(ctx context.Context, wallet string, status models.AuthStatus, trustScore uint8)
	OnStatusChanged(ctx context.Context, wallet string, oldStatus, newStatus models.AuthStatus, trustScore uint8)
	OnContractUpgraded(ctx context.Context, newContract string)
}

// Registry is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	records      map[string]models.Record
	admin        string
	nextContract string

	// notifyMu is taken before mu is released so notifications leave in
	// the same order the mutations were applied.
	notifyMu sync.Mutex
	notifier Notifier
	clock    func() time.Time
	logger   *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithNotifier sets the event sink. Defaults to a no-op.
func WithNotifier(n Notifier) Option {
	return func(r *Registry) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithClock overrides the timestamp source used for UpdatedAt.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithLogger sets the logger used to report notifier panics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty registry administered by admin.
func New(admin string, opts ...Option) (*Registry, error) {
	if !domain.IsValidWalletAddress(admin) {
		return nil, ErrInvalidAddress
	}
	r := &Registry{
		records:  make(map[string]models.Record),
		admin:    admin,
		notifier: NoopNotifier{},
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Restore rebuilds a registry from a snapshot. Every entry is validated; a
// snapshot that could not have been produced by the mutators is rejected.
// No notifications are emitted for restored state.
func Restore(snap models.Snapshot, opts ...Option) (*Registry, error) {
	r, err := New(snap.Admin, opts...)
	if err != nil {
		return nil, err
	}
	if snap.NextContract != "" && !domain.IsValidWalletAddress(snap.NextContract) {
		return nil, dErrors.New(dErrors.CodeValidation, "snapshot next contract address is malformed")
	}
	r.nextContract = snap.NextContract
	for wallet, rec := range snap.Records {
		if !domain.IsValidWalletAddress(wallet) {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("snapshot wallet %q is malformed", wallet))
		}
		if !rec.Status.IsValid() || !domain.IsValidTrustScore(int(rec.TrustScore)) {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("snapshot record for %s is out of range", domain.WalletAddress(wallet).Short()))
		}
		r.records[wallet] = rec
	}
	return r, nil
}

// GetStatus returns the record for wallet. Malformed and unregistered wallets
// both yield the zero Record.
func (r *Registry) GetStatus(wallet string) models.Record {
	return r.Lookup(wallet).Record
}

// Lookup is GetStatus with the outcome spelled out.
func (r *Registry) Lookup(wallet string) LookupResult {
	if !domain.IsValidWalletAddress(wallet) {
		return LookupResult{Outcome: LookupInvalidAddress}
	}
	r.mu.RLock()
	rec, ok := r.records[wallet]
	r.mu.RUnlock()
	if !ok {
		return LookupResult{Outcome: LookupNotFound}
	}
	return LookupResult{Record: rec, Outcome: LookupFound}
}

// GetAdmin returns the current admin address.
func (r *Registry) GetAdmin() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admin
}

// GetNextContract returns the upgrade pointer, or "" when unset.
func (r *Registry) GetNextContract() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextContract
}

// Len returns the number of registered wallets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Snapshot returns a deep copy of the current state.
func (r *Registry) Snapshot() models.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make(map[string]models.Record, len(r.records))
	for k, v := range r.records {
		records[k] = v
	}
	return models.Snapshot{
		Admin:        r.admin,
		NextContract: r.nextContract,
		Records:      records,
	}
}

// SetStatus records status and trustScore for wallet. The wallet format is
// checked first, then the score range, then the status value. On success
// exactly one notification is emitted: Registered when the previous status was
// Unknown, StatusChanged otherwise.
func (r *Registry) SetStatus(ctx context.Context, wallet string, status models.AuthStatus, trustScore int) bool {
	if !domain.IsValidWalletAddress(wallet) {
		return false
	}
	if !domain.IsValidTrustScore(trustScore) {
		return false
	}
	if !status.IsValid() {
		return false
	}
	score := uint8(trustScore)

	r.mu.Lock()
	old := r.records[wallet].Status
	r.records[wallet] = models.Record{
		Status:     status,
		TrustScore: score,
		UpdatedAt:  r.clock().Unix(),
	}
	r.notifyMu.Lock()
	r.mu.Unlock()
	defer r.notifyMu.Unlock()

	if old == models.StatusUnknown {
		r.safeNotify("registered", func() {
			r.notifier.OnRegistered(ctx, wallet, status, score)
		})
	} else {
		r.safeNotify("status_changed", func() {
			r.notifier.OnStatusChanged(ctx, wallet, old, status, score)
		})
	}
	return true
}

// SetNextContract points the registry at its successor and emits ContractUpgraded.
func (r *Registry) SetNextContract(ctx context.Context, newContract string) bool {
	if !domain.IsValidWalletAddress(newContract) {
		return false
	}

	r.mu.Lock()
	r.nextContract = newContract
	r.notifyMu.Lock()
	r.mu.Unlock()
	defer r.notifyMu.Unlock()

	r.safeNotify("contract_upgraded", func() {
		r.notifier.OnContractUpgraded(ctx, newContract)
	})
	return true
}

// TransferAdmin replaces the admin address. No notification is emitted.
func (r *Registry) TransferAdmin(_ context.Context, newAdmin string) bool {
	if !domain.IsValidWalletAddress(newAdmin) {
		return false
	}
	r.mu.Lock()
	r.admin = newAdmin
	r.mu.Unlock()
	return true
}

// safeNotify isolates the mutation from notifier panics.
func (r *Registry) safeNotify(event string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("registry notifier panicked",
				"event", event,
				"panic", fmt.Sprint(rec),
			)
		}
	}()
	fn()
}

// NoopNotifier discards every event.
type NoopNotifier struct{}

func (NoopNotifier) OnRegistered(context.Context, string, models.AuthStatus, uint8) {}
func (NoopNotifier) OnStatusChanged(context.Context, string, models.AuthStatus, models.AuthStatus, uint8) {
}
func (NoopNotifier) OnContractUpgraded(context.Context, string) {}

var _ Notifier = NoopNotifier{}
