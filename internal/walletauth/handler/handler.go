package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"microauth/internal/walletauth/models"
	"microauth/internal/walletauth/registry"
	"microauth/internal/walletauth/service"
	"microauth/pkg/platform/httputil"
	"microauth/pkg/requestcontext"
)

// Service is the wallet authorization surface the handler depends on.
type Service interface {
	Status(ctx context.Context, wallet string) registry.LookupResult
	BatchStatus(ctx context.Context, wallets []string) ([]service.WalletResult, error)
	Admin(ctx context.Context) string
	NextContract(ctx context.Context) string
	SetStatus(ctx context.Context, caller, wallet string, status models.AuthStatus, trustScore int) (bool, error)
	SetNextContract(ctx context.Context, caller, addr string) (bool, error)
	TransferAdmin(ctx context.Context, caller, newAdmin string) (bool, error)
}

// Handler serves the registry over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the registry routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/wallets/{wallet}", h.handleGetStatus)
	r.Post("/wallets/status/batch", h.handleBatchStatus)
	r.Put("/wallets/{wallet}/status", h.handleSetStatus)
	r.Get("/admin", h.handleGetAdmin)
	r.Post("/admin/transfer", h.handleTransferAdmin)
	r.Get("/contract/next", h.handleGetNextContract)
	r.Put("/contract/next", h.handleSetNextContract)
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "wallet")
	result := h.service.Status(r.Context(), wallet)
	httputil.WriteJSON(w, http.StatusOK, toWalletStatus(wallet, result))
}

func (h *Handler) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	results, err := h.service.BatchStatus(ctx, req.Wallets)
	if err != nil {
		h.logger.WarnContext(ctx, "batch status lookup failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBatchStatusResponse(results))
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SetStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	applied, err := h.service.SetStatus(ctx, requestcontext.Caller(ctx), chi.URLParam(r, "wallet"), req.AuthStatus(), *req.TrustScore)
	h.writeMutation(ctx, w, "set status", applied, err)
}

func (h *Handler) handleGetAdmin(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, &AdminResponse{Admin: h.service.Admin(r.Context())})
}

func (h *Handler) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TransferAdminRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	applied, err := h.service.TransferAdmin(ctx, requestcontext.Caller(ctx), *req.NewAdmin)
	h.writeMutation(ctx, w, "transfer admin", applied, err)
}

func (h *Handler) handleGetNextContract(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, &NextContractResponse{NextContract: h.service.NextContract(r.Context())})
}

func (h *Handler) handleSetNextContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SetNextContractRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	applied, err := h.service.SetNextContract(ctx, requestcontext.Caller(ctx), *req.Address)
	h.writeMutation(ctx, w, "set next contract", applied, err)
}

// writeMutation maps a mutator result to HTTP. A soft rejection is a 200.
func (h *Handler) writeMutation(ctx context.Context, w http.ResponseWriter, op string, applied bool, err error) {
	if err != nil {
		h.logger.WarnContext(ctx, "registry mutation failed",
			"operation", op,
			"applied", applied,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &MutationResponse{Applied: applied})
}
