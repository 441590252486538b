package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"microauth/pkg/domain"
	dErrors "microauth/pkg/domain-errors"
)

func TestWallet_ProducesDistinctValidAddresses(t *testing.T) {
	seen := make(map[string]bool)
	for i := range 1000 {
		w := Wallet(i)
		assert.True(t, domain.IsValidWalletAddress(w), w)
		assert.False(t, seen[w], "duplicate wallet for %d", i)
		seen[w] = true
	}
}

func TestRunConcurrent_BucketsErrors(t *testing.T) {
	res := RunConcurrent(40, func(idx int) error {
		switch idx % 4 {
		case 0:
			return nil
		case 1:
			return dErrors.New(dErrors.CodeForbidden, "no")
		case 2:
			return dErrors.New(dErrors.CodeNotFound, "gone")
		default:
			return dErrors.New(dErrors.CodeInternal, "boom")
		}
	})
	assert.Equal(t, int32(10), res.Successes)
	assert.Equal(t, int32(10), res.Denied)
	assert.Equal(t, int32(10), res.NotFounds)
	assert.Equal(t, int32(10), res.Errors)
	assert.Equal(t, int32(40), res.Total())
}
