package server

import "github.com/solflow/swap-gateway/internal/jupiter"

// ErrorResponse is the standardized error response format.
type ErrorResponse struct {
	Error   string   `json:"error"`             // Human-readable error message
	Code    int      `json:"code"`              // HTTP status code
	Kind    string   `json:"kind,omitempty"`    // Pipeline failure classification
	Logs    []string `json:"logs,omitempty"`    // On-chain program logs when available
	Details any      `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse is the health check response.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// QuoteBody is the request body for POST /swap/quote.
type QuoteBody struct {
	InputMint        string  `json:"inputMint"`
	OutputMint       string  `json:"outputMint"`
	Amount           string  `json:"amount"` // raw units, base-10 string
	SlippageBps      *uint16 `json:"slippageBps,omitempty"`
	SwapMode         string  `json:"swapMode,omitempty"`
	OnlyDirectRoutes *bool   `json:"onlyDirectRoutes,omitempty"`
	MaxAccounts      *uint64 `json:"maxAccounts,omitempty"`
}

// SwapBody is the request body for POST /swap/swap.
type SwapBody struct {
	Quote          *jupiter.QuoteResponse `json:"quoteResponse"`
	UserPrivateKey string                 `json:"userPrivateKey"`
}

// SwapResponse is returned when the swap confirmed on-chain.
type SwapResponse struct {
	Signature string `json:"signature"`
}

// NeedsAccountsResponse is returned (202) when required token accounts are
// missing and the client must sign the creation transaction first.
type NeedsAccountsResponse struct {
	Status          string           `json:"status"` // always "needs_token_accounts"
	Message         string           `json:"message"`
	Transaction     string           `json:"createAccountTransaction"` // base64-encoded unsigned transaction
	MissingAccounts []MissingAccount `json:"missingAccounts"`
}

type MissingAccount struct {
	Mint    string `json:"mint"`
	Address string `json:"address"`
}

// CreateAccountsBody is the request body for POST /swap/create-token-accounts.
type CreateAccountsBody struct {
	SignedTransaction string `json:"signedTransaction"` // base64-encoded signed transaction
}

// ToggleUpsertRequest creates or updates an operational toggle.
type ToggleUpsertRequest struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
}

// ToggleUpdateRequest updates an existing operational toggle.
type ToggleUpdateRequest struct {
	Enabled bool `json:"enabled"`
}
