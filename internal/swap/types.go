package swap

import (
	"context"

	"github.com/solflow/swap-gateway/internal/jupiter"
	"github.com/solflow/swap-gateway/internal/rpc"
)

// MissingAccount identifies a token account that does not yet exist for the
// swap's payer: the asset mint and the derived associated account address.
type MissingAccount struct {
	Mint    string `json:"mint"`
	Address string `json:"address"`
}

// Outcome is the terminal result of one swap attempt. Either Signature is set
// (confirmed on-chain) or NeedsTokenAccounts is true and the caller must sign
// and submit CreateAccountsTransaction before trying again with a new quote.
type Outcome struct {
	Signature string

	NeedsTokenAccounts        bool
	CreateAccountsTransaction string // base64-encoded unsigned transaction
	MissingAccounts           []MissingAccount
}

// ChainRPC is the RPC node surface the pipeline depends on. *rpc.Client
// implements it; tests substitute fakes.
type ChainRPC interface {
	LatestBlockhash(ctx context.Context, commitment string) (rpc.Blockhash, error)
	BlockHeight(ctx context.Context) (uint64, error)
	AccountExists(ctx context.Context, pubkey string) (bool, error)
	AccountData(ctx context.Context, pubkey string) ([]byte, error)
	Simulate(ctx context.Context, encodedTx string) (*rpc.SimulationResult, error)
	SendRawTransaction(ctx context.Context, encodedTx string, maxRetries int) (string, error)
	SignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
}

// InstructionSource resolves a quote into a concrete instruction bundle.
// *jupiter.Client implements it.
type InstructionSource interface {
	SwapInstructions(ctx context.Context, req jupiter.SwapInstructionsRequest) (*jupiter.InstructionSet, error)
}
