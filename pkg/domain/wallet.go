// Package domain holds the primitive value types shared by every layer:
// wallet addresses and trust scores.
package domain

import (
	"fmt"
	"strings"

	dErrors "microauth/pkg/domain-errors"
)

const (
	// WalletAddressLength is the exact number of characters in a wallet address.
	WalletAddressLength = 60

	// MaxTrustScore is the inclusive upper bound of a trust score.
	MaxTrustScore = 100
)

// WalletAddress is an account identifier of exactly 60 characters A-Z.
type WalletAddress string

// ParseWalletAddress validates s at a trust boundary.
func ParseWalletAddress(s string) (WalletAddress, error) {
	if !IsValidWalletAddress(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("wallet address must be %d uppercase letters A-Z", WalletAddressLength))
	}
	return WalletAddress(s), nil
}

// IsValidWalletAddress reports whether s is exactly 60 bytes, each in 'A'..'Z'.
// Multi-byte runes fail the per-byte check, so length is measured in bytes.
func IsValidWalletAddress(s string) bool {
	if len(s) != WalletAddressLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// IsValidTrustScore reports whether score lies in [0, MaxTrustScore].
func IsValidTrustScore(score int) bool {
	return score >= 0 && score <= MaxTrustScore
}

func (w WalletAddress) String() string { return string(w) }

// IsNil reports whether the address is unset.
func (w WalletAddress) IsNil() bool { return w == "" }

// Short returns a log-friendly abbreviation of the address.
func (w WalletAddress) Short() string {
	if len(w) <= 12 {
		return string(w)
	}
	return string(w[:6]) + "..." + string(w[len(w)-6:])
}

// NormalizeWalletAddress trims surrounding whitespace. Case is preserved;
// lowercase input stays invalid.
func NormalizeWalletAddress(s string) string {
	return strings.TrimSpace(s)
}
