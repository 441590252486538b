// Package authz decides whether a caller may perform a registry mutation.
package authz

import (
	"context"
	"crypto/subtle"

	dErrors "microauth/pkg/domain-errors"
)

// Action names a guarded registry mutation.
type Action string

const (
	ActionSetStatus       Action = "set_status"
	ActionSetNextContract Action = "set_next_contract"
	ActionTransferAdmin   Action = "transfer_admin"
)

// Checker authorizes caller for action. It returns nil when allowed.
type Checker interface {
	Authorize(ctx context.Context, caller string, action Action) error
}

// AdminSource exposes the registry's current admin.
type AdminSource interface {
	GetAdmin() string
}

// AdminChecker allows only the current registry admin.
type AdminChecker struct {
	source AdminSource
}

func NewAdminChecker(source AdminSource) *AdminChecker {
	return &AdminChecker{source: source}
}

// Authorize returns CodeUnauthorized when there is no caller and CodeForbidden
// when the caller is not the current admin.
func (c *AdminChecker) Authorize(_ context.Context, caller string, action Action) error {
	if caller == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity required for "+string(action))
	}
	admin := c.source.GetAdmin()
	if subtle.ConstantTimeCompare([]byte(caller), []byte(admin)) != 1 {
		return dErrors.New(dErrors.CodeForbidden, "caller is not the registry admin")
	}
	return nil
}

// AllowAll performs no checks. Use it only when the embedding host has
// already authorized the caller.
type AllowAll struct{}

func (AllowAll) Authorize(context.Context, string, Action) error { return nil }

var (
	_ Checker = (*AdminChecker)(nil)
	_ Checker = AllowAll{}
)
