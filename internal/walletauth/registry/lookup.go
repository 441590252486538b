package registry

import "microauth/internal/walletauth/models"

// LookupOutcome distinguishes the cases GetStatus folds into the zero record.
type LookupOutcome int

const (
	LookupFound LookupOutcome = iota
	LookupNotFound
	LookupInvalidAddress
)

func (o LookupOutcome) String() string {
	switch o {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	case LookupInvalidAddress:
		return "invalid_address"
	default:
		return "unknown"
	}
}

// LookupResult pairs a record with how it was obtained.
type LookupResult struct {
	Record  models.Record
	Outcome LookupOutcome
}

// Registered reports whether the wallet has an entry.
func (l LookupResult) Registered() bool {
	return l.Outcome == LookupFound
}
