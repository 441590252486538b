package registry

// ContractVersion identifies the schema for registry events shared across services.
const ContractVersion = "v1.0.0"

// Event kinds published by the wallet registry.
const (
	EventRegistered       = "registered"
	EventStatusChanged    = "status_changed"
	EventContractUpgraded = "contract_upgraded"
)

// WalletStatus is the public view of a wallet's authorization record.
type WalletStatus struct {
	Wallet     string `json:"wallet"`
	Status     string `json:"status"`
	TrustScore uint8  `json:"trust_score"`
	UpdatedAt  int64  `json:"updated_at"`
	Registered bool   `json:"registered"`
}

// EventPayload is the wire form of a registry state transition.
// Fields that do not apply to a given kind are omitted.
type EventPayload struct {
	ID              string `json:"id"`
	Version         string `json:"version"`
	Kind            string `json:"kind"`
	Wallet          string `json:"wallet,omitempty"`
	Status          string `json:"status,omitempty"`
	PreviousStatus  string `json:"previous_status,omitempty"`
	TrustScore      *uint8 `json:"trust_score,omitempty"`
	ContractAddress string `json:"contract_address,omitempty"`
	OccurredAt      int64  `json:"occurred_at"`
}
