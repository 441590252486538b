package models

import (
	"fmt"
	"strings"

	dErrors "microauth/pkg/domain-errors"
)

// AuthStatus is the authorization state of a wallet.
type AuthStatus uint8

const (
	StatusUnknown AuthStatus = iota
	StatusActive
	StatusBlocked
	StatusReview
)

var statusNames = [...]string{
	StatusUnknown: "UNKNOWN",
	StatusActive:  "ACTIVE",
	StatusBlocked: "BLOCKED",
	StatusReview:  "REVIEW",
}

// IsValid reports whether s is one of the four defined statuses.
func (s AuthStatus) IsValid() bool {
	return int(s) < len(statusNames)
}

func (s AuthStatus) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("AuthStatus(%d)", uint8(s))
	}
	return statusNames[s]
}

// ParseAuthStatus accepts the text form case-insensitively.
func ParseAuthStatus(raw string) (AuthStatus, error) {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	for i, name := range statusNames {
		if name == upper {
			return AuthStatus(i), nil
		}
	}
	return StatusUnknown, dErrors.New(dErrors.CodeInvalidInput,
		fmt.Sprintf("status must be one of [%s]", strings.Join(statusNames[:], " ")))
}

func (s AuthStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid auth status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *AuthStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseAuthStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Record is the stored authorization state for one wallet. The zero value
// doubles as the answer for wallets that were never registered.
type Record struct {
	Status     AuthStatus `json:"status"`
	TrustScore uint8      `json:"trust_score"`
	// UpdatedAt is Unix seconds of the last successful SetStatus.
	UpdatedAt int64 `json:"updated_at"`
}

// IsZero reports whether r equals the default record.
func (r Record) IsZero() bool {
	return r == Record{}
}

// Snapshot is a point-in-time copy of the whole registry, used for
// persistence and restore.
type Snapshot struct {
	Admin        string
	NextContract string
	Records      map[string]Record
}
