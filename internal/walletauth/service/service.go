package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"microauth/internal/walletauth/authz"
	"microauth/internal/walletauth/metrics"
	"microauth/internal/walletauth/models"
	"microauth/internal/walletauth/registry"
	"microauth/internal/walletauth/store"
	"microauth/internal/walletauth/tracer"
	"microauth/pkg/domain"
	dErrors "microauth/pkg/domain-errors"
	psync "microauth/pkg/platform/sync"
	"microauth/pkg/platform/validation"
)

// Store persists registry state.
// Error Contract:
// - Load returns store.ErrNotFound when nothing has been persisted
// - Save methods return nil on success or wrapped errors on failure
type Store interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	SaveRecord(ctx context.Context, wallet string, record models.Record) error
	SaveAdmin(ctx context.Context, admin string) error
	SaveNextContract(ctx context.Context, addr string) error
}

// Operation labels for metrics and logs.
const (
	opStatus          = "status"
	opBatchStatus     = "batch_status"
	opSetStatus       = "set_status"
	opSetNextContract = "set_next_contract"
	opTransferAdmin   = "transfer_admin"
)

// settingsKey guards the admin and next-contract pair in the per-key lock.
const settingsKey = "registry:settings"

// Service hosts a registry: it authorizes callers, serializes writers per
// wallet and persists every applied mutation.
type Service struct {
	registry   *registry.Registry
	store      Store
	authorizer authz.Checker
	metrics    *metrics.Metrics
	tracer     tracer.Tracer
	logger     *slog.Logger

	// adminMu is held shared by every guarded mutation and exclusively by
	// TransferAdmin, so no mutation lands under an admin it was not
	// authorized against.
	adminMu sync.RWMutex
	locks   *psync.ShardedMutex
}

type Option func(*Service)

// WithAuthorizer replaces the default admin check.
func WithAuthorizer(c authz.Checker) Option {
	return func(s *Service) {
		s.authorizer = c
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New wraps reg. Mutations are authorized against reg's current admin unless
// WithAuthorizer says otherwise.
func New(reg *registry.Registry, st Store, opts ...Option) *Service {
	svc := &Service{
		registry: reg,
		store:    st,
		tracer:   tracer.NewNoop(),
		logger:   slog.Default(),
		locks:    psync.NewShardedMutex(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.authorizer == nil {
		svc.authorizer = authz.NewAdminChecker(reg)
	}
	if svc.metrics != nil {
		svc.metrics.SetRegistered(reg.Len())
	}
	return svc
}

// Bootstrap restores the persisted registry, or creates one administered by
// admin and persists it when the store is empty. A persisted admin wins over
// the configured one.
func Bootstrap(ctx context.Context, st Store, admin string, regOpts []registry.Option, opts ...Option) (*Service, error) {
	snap, err := st.Load(ctx)
	switch {
	case err == nil:
		reg, restoreErr := registry.Restore(*snap, regOpts...)
		if restoreErr != nil {
			return nil, dErrors.Wrap(restoreErr, dErrors.CodeInternal, "restore registry")
		}
		svc := New(reg, st, opts...)
		if admin != "" && admin != snap.Admin {
			svc.logger.WarnContext(ctx, "configured admin ignored, using persisted admin",
				"persisted_admin", reg.GetAdmin(),
			)
		}
		svc.logger.InfoContext(ctx, "registry restored", "wallets", reg.Len())
		return svc, nil
	case errors.Is(err, store.ErrNotFound):
		reg, newErr := registry.New(admin, regOpts...)
		if newErr != nil {
			return nil, newErr
		}
		if saveErr := st.SaveAdmin(ctx, admin); saveErr != nil {
			return nil, dErrors.Wrap(saveErr, dErrors.CodeInternal, "persist initial admin")
		}
		svc := New(reg, st, opts...)
		svc.logger.InfoContext(ctx, "registry initialized")
		return svc, nil
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load registry state")
	}
}

// Registry exposes the hosted registry for health checks and wiring.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Status looks up one wallet. It never fails; malformed input is reported
// through the outcome.
func (s *Service) Status(ctx context.Context, wallet string) registry.LookupResult {
	start := time.Now()
	_, span := s.tracer.Start(ctx, tracer.SpanStatus, tracer.Wallet(tracer.AttrWallet, wallet))
	result := s.registry.Lookup(wallet)
	span.SetAttributes(tracer.String(tracer.AttrLookupOutcome, result.Outcome.String()))
	span.End(nil)

	if s.metrics != nil {
		s.metrics.IncrementLookup(result.Outcome.String())
		s.metrics.ObserveOperation(opStatus, start)
	}
	return result
}

// WalletResult is one entry of a batch lookup.
type WalletResult struct {
	Wallet string
	registry.LookupResult
}

// BatchStatus looks up at most validation.MaxBatchWallets wallets, preserving
// input order.
func (s *Service) BatchStatus(ctx context.Context, wallets []string) ([]WalletResult, error) {
	if len(wallets) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "wallets must not be empty")
	}
	if err := validation.CheckSliceCount("wallets", len(wallets), validation.MaxBatchWallets); err != nil {
		return nil, err
	}

	start := time.Now()
	_, span := s.tracer.Start(ctx, tracer.SpanBatchStatus, tracer.Int(tracer.AttrBatchSize, len(wallets)))
	defer span.End(nil)

	results := make([]WalletResult, len(wallets))
	for i, wallet := range wallets {
		results[i] = WalletResult{Wallet: wallet, LookupResult: s.registry.Lookup(wallet)}
		if s.metrics != nil {
			s.metrics.IncrementLookup(results[i].Outcome.String())
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveBatchSize(len(wallets))
		s.metrics.ObserveOperation(opBatchStatus, start)
	}
	return results, nil
}

func (s *Service) Admin(context.Context) string {
	return s.registry.GetAdmin()
}

func (s *Service) NextContract(context.Context) string {
	return s.registry.GetNextContract()
}

// SetStatus authorizes caller and applies the status update. A rejected
// update returns (false, nil). A persistence failure returns (true, err): the
// in-memory registry has already moved on.
func (s *Service) SetStatus(ctx context.Context, caller, wallet string, status models.AuthStatus, trustScore int) (bool, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanSetStatus,
		tracer.Wallet(tracer.AttrCaller, caller),
		tracer.Wallet(tracer.AttrWallet, wallet),
		tracer.String(tracer.AttrStatus, status.String()),
		tracer.Int(tracer.AttrTrustScore, trustScore),
	)

	s.adminMu.RLock()
	defer s.adminMu.RUnlock()

	if err := s.authorizer.Authorize(ctx, caller, authz.ActionSetStatus); err != nil {
		return s.finish(ctx, span, opSetStatus, start, false, err)
	}
	span.AddEvent(tracer.EventAuthorized)

	s.locks.Lock(wallet)
	defer s.locks.Unlock(wallet)

	if !s.registry.SetStatus(ctx, wallet, status, trustScore) {
		return s.finish(ctx, span, opSetStatus, start, false, nil)
	}

	record := s.registry.Lookup(wallet).Record
	err := s.persist(ctx, "save_record", func(ctx context.Context) error {
		return s.store.SaveRecord(ctx, wallet, record)
	})
	if s.metrics != nil {
		s.metrics.SetRegistered(s.registry.Len())
	}
	return s.finish(ctx, span, opSetStatus, start, true, err)
}

// SetNextContract authorizes caller and records the upgrade pointer.
func (s *Service) SetNextContract(ctx context.Context, caller, addr string) (bool, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanSetNextContract,
		tracer.Wallet(tracer.AttrCaller, caller),
		tracer.Wallet(tracer.AttrWallet, addr),
	)

	s.adminMu.RLock()
	defer s.adminMu.RUnlock()

	if err := s.authorizer.Authorize(ctx, caller, authz.ActionSetNextContract); err != nil {
		return s.finish(ctx, span, opSetNextContract, start, false, err)
	}
	span.AddEvent(tracer.EventAuthorized)

	s.locks.Lock(settingsKey)
	defer s.locks.Unlock(settingsKey)

	if !s.registry.SetNextContract(ctx, addr) {
		return s.finish(ctx, span, opSetNextContract, start, false, nil)
	}
	err := s.persist(ctx, "save_next_contract", func(ctx context.Context) error {
		return s.store.SaveNextContract(ctx, addr)
	})
	return s.finish(ctx, span, opSetNextContract, start, true, err)
}

// TransferAdmin authorizes caller and hands the registry to newAdmin.
func (s *Service) TransferAdmin(ctx context.Context, caller, newAdmin string) (bool, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanTransferAdmin,
		tracer.Wallet(tracer.AttrCaller, caller),
		tracer.Wallet(tracer.AttrWallet, newAdmin),
	)

	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	if err := s.authorizer.Authorize(ctx, caller, authz.ActionTransferAdmin); err != nil {
		return s.finish(ctx, span, opTransferAdmin, start, false, err)
	}
	span.AddEvent(tracer.EventAuthorized)

	s.locks.Lock(settingsKey)
	defer s.locks.Unlock(settingsKey)

	if !s.registry.TransferAdmin(ctx, newAdmin) {
		return s.finish(ctx, span, opTransferAdmin, start, false, nil)
	}
	err := s.persist(ctx, "save_admin", func(ctx context.Context) error {
		return s.store.SaveAdmin(ctx, newAdmin)
	})
	if err == nil {
		s.logger.InfoContext(ctx, "registry admin transferred",
			"previous_admin", domain.WalletAddress(caller).Short(),
			"new_admin", domain.WalletAddress(newAdmin).Short(),
		)
	}
	return s.finish(ctx, span, opTransferAdmin, start, true, err)
}

func (s *Service) persist(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanPersist, tracer.String("store.operation", op))
	err := fn(ctx)
	span.End(err)
	if s.metrics != nil {
		s.metrics.ObserveStore(op, start)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist registry mutation", "operation", op, "error", err)
		return &dErrors.Error{Code: dErrors.CodeInternal, Message: "failed to persist registry state", Err: err}
	}
	return nil
}

func (s *Service) finish(ctx context.Context, span tracer.Span, op string, start time.Time, applied bool, err error) (bool, error) {
	span.SetAttributes(tracer.Bool(tracer.AttrApplied, applied))
	span.End(err)

	outcome := metrics.OutcomeApplied
	switch {
	case dErrors.HasCode(err, dErrors.CodeUnauthorized), dErrors.HasCode(err, dErrors.CodeForbidden):
		outcome = metrics.OutcomeDenied
		s.logger.WarnContext(ctx, "registry mutation denied", "operation", op, "error", err)
	case err != nil:
		outcome = metrics.OutcomeError
	case !applied:
		outcome = metrics.OutcomeRejected
	}
	if s.metrics != nil {
		s.metrics.IncrementMutation(op, outcome)
		s.metrics.ObserveOperation(op, start)
	}
	return applied, err
}
