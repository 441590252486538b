package handler

import (
	"strings"

	"microauth/internal/walletauth/models"
	dErrors "microauth/pkg/domain-errors"
	"microauth/pkg/platform/validation"
)

// Address fields are deliberately not format-checked here: a malformed
// address is a soft rejection reported as {"applied": false}.

// SetStatusRequest is the body of PUT /wallets/{wallet}/status.
type SetStatusRequest struct {
	Status     string `json:"status" validate:"required,notblank"`
	TrustScore *int   `json:"trust_score" validate:"required"`
}

func (r *SetStatusRequest) Normalize() {
	if r == nil {
		return
	}
	r.Status = strings.TrimSpace(r.Status)
}

func (r *SetStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	_, err := models.ParseAuthStatus(r.Status)
	return err
}

// AuthStatus is valid only after Validate succeeded.
func (r *SetStatusRequest) AuthStatus() models.AuthStatus {
	status, _ := models.ParseAuthStatus(r.Status)
	return status
}

// BatchStatusRequest is the body of POST /wallets/status/batch.
type BatchStatusRequest struct {
	Wallets []string `json:"wallets" validate:"required,min=1"`
}

func (r *BatchStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckSliceCount("wallets", len(r.Wallets), validation.MaxBatchWallets); err != nil {
		return err
	}
	return validation.Validate(r)
}

// TransferAdminRequest is the body of POST /admin/transfer.
type TransferAdminRequest struct {
	NewAdmin *string `json:"new_admin" validate:"required"`
}

func (r *TransferAdminRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// SetNextContractRequest is the body of PUT /contract/next.
type SetNextContractRequest struct {
	Address *string `json:"address" validate:"required"`
}

func (r *SetNextContractRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}
