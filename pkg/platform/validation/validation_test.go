package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "microauth/pkg/domain-errors"
)

type transferRequest struct {
	NewAdmin string   `json:"new_admin" validate:"required,wallet"`
	Note     string   `json:"note" validate:"omitempty,notblank"`
	Wallets  []string `json:"wallets" validate:"omitempty,max=2,dive,wallet"`
}

func TestValidate(t *testing.T) {
	valid := strings.Repeat("K", 60)

	t.Run("passes well-formed request", func(t *testing.T) {
		require.NoError(t, Validate(transferRequest{NewAdmin: valid}))
	})

	t.Run("missing field uses json name", func(t *testing.T) {
		err := Validate(transferRequest{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "new_admin is required", err.Error())
	})

	t.Run("malformed wallet is invalid input", func(t *testing.T) {
		err := Validate(transferRequest{NewAdmin: strings.ToLower(valid)})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, "new_admin must be 60 uppercase letters A-Z", err.Error())
	})

	t.Run("blank note is rejected", func(t *testing.T) {
		err := Validate(transferRequest{NewAdmin: valid, Note: "   "})
		assert.Equal(t, "note must not be blank", err.Error())
	})

	t.Run("max applies to slices", func(t *testing.T) {
		err := Validate(transferRequest{NewAdmin: valid, Wallets: []string{valid, valid, valid}})
		assert.Equal(t, "wallets must be at most 2", err.Error())
	})
}
