package validation

import (
	"fmt"

	dErrors "microauth/pkg/domain-errors"
)

const (
	// MaxBodySize is the maximum accepted request body (64 KB).
	MaxBodySize = 64 * 1024

	// MaxBatchWallets is the maximum number of wallets per batch status lookup.
	MaxBatchWallets = 100
)

// CheckSliceCount fails with CodeLimitExceeded when count is above max.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeLimitExceeded, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength fails with CodeValidation when value is longer than max bytes.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
