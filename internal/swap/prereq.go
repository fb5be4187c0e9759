package swap

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/solflow/swap-gateway/internal/jupiter"
)

// prereqCheck is the outcome of the prerequisite account gate: the token
// accounts that must exist before the swap can execute, plus the creation
// instructions for the missing ones.
type prereqCheck struct {
	Missing   []MissingAccount
	CreateIxs []solana.Instruction
}

// checkPrerequisites determines whether the payer's associated token accounts
// for the quote's input and output mints already exist on-chain. Token
// transfers require the destination account to pre-exist; the system uses an
// explicit two-phase flow so creation fees are always covered by a
// transaction the account owner's own key signs, never folded into the swap.
func (e *Engine) checkPrerequisites(ctx context.Context, payer solana.PublicKey, quote *jupiter.QuoteResponse) (*prereqCheck, error) {
	check := &prereqCheck{}

	for _, mintStr := range []string{quote.InputMint, quote.OutputMint} {
		mint, err := solana.PublicKeyFromBase58(mintStr)
		if err != nil {
			return nil, failf(KindInstructionResolution, "invalid mint %q: %v", mintStr, err)
		}

		ata, _, err := findAssociatedTokenAddress(payer, mint)
		if err != nil {
			return nil, failf(KindInstructionResolution, "failed to derive token account for %s: %v", mintStr, err)
		}

		exists, err := e.rpc.AccountExists(ctx, ata.String())
		if err != nil {
			return nil, failf(KindUpstreamError, "token account check for %s: %v", mintStr, err)
		}
		if exists {
			continue
		}

		check.Missing = append(check.Missing, MissingAccount{
			Mint:    mintStr,
			Address: ata.String(),
		})
		check.CreateIxs = append(check.CreateIxs, newCreateAssociatedTokenAccountIx(payer, ata, payer, mint))
	}

	return check, nil
}

// buildCreateAccountsTransaction composes the unsigned account-creation
// transaction returned to the client for out-of-band signing. It contains
// only the creation instructions, fee payer set to the owner; signature
// slots are zero-filled so standard wallet tooling can deserialize it.
func (e *Engine) buildCreateAccountsTransaction(ctx context.Context, payer solana.PublicKey, createIxs []solana.Instruction) (string, error) {
	bh, err := e.rpc.LatestBlockhash(ctx, "finalized")
	if err != nil {
		return "", failf(KindUpstreamError, "failed to fetch blockhash: %v", err)
	}
	hash, err := solana.HashFromBase58(bh.Hash)
	if err != nil {
		return "", failf(KindUpstreamError, "invalid blockhash from node: %v", err)
	}

	tx, err := solana.NewTransaction(createIxs, hash, solana.TransactionPayer(payer))
	if err != nil {
		return "", fmt.Errorf("failed to build create-accounts transaction: %w", err)
	}
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize create-accounts transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
