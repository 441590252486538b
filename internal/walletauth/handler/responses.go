package handler

import (
	"microauth/internal/walletauth/registry"
	"microauth/internal/walletauth/service"

	contract "microauth/contracts/registry"
)

// MutationResponse reports whether a mutation changed registry state.
type MutationResponse struct {
	Applied bool `json:"applied"`
}

type BatchStatusResponse struct {
	Statuses []contract.WalletStatus `json:"statuses"`
}

type AdminResponse struct {
	Admin string `json:"admin"`
}

type NextContractResponse struct {
	NextContract string `json:"next_contract"`
}

func toWalletStatus(wallet string, result registry.LookupResult) contract.WalletStatus {
	return contract.WalletStatus{
		Wallet:     wallet,
		Status:     result.Record.Status.String(),
		TrustScore: result.Record.TrustScore,
		UpdatedAt:  result.Record.UpdatedAt,
		Registered: result.Registered(),
	}
}

func toBatchStatusResponse(results []service.WalletResult) *BatchStatusResponse {
	statuses := make([]contract.WalletStatus, 0, len(results))
	for _, r := range results {
		statuses = append(statuses, toWalletStatus(r.Wallet, r.LookupResult))
	}
	return &BatchStatusResponse{Statuses: statuses}
}
