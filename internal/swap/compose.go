package swap

import (
	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/solflow/swap-gateway/internal/jupiter"
)

// maxTransactionBytes is the network's serialized transaction limit
// (IPv6 MTU 1280 minus headers).
const maxTransactionBytes = 1232

// composeSwapTransaction assembles the final versioned transaction. Pure and
// deterministic given its inputs.
//
// Instruction order is load-bearing:
//  1. compute-unit-price (priority fee) — always index 0 so it governs the
//     whole transaction's fee market priority
//  2. aggregator compute-budget instructions
//  3. setup instructions
//  4. the swap instruction
//  5. the cleanup instruction
//
// Absent instructions are omitted, never inserted as no-ops.
func composeSwapTransaction(
	payer solana.PublicKey,
	set *jupiter.InstructionSet,
	tables map[solana.PublicKey]solana.PublicKeySlice,
	recentBlockhash solana.Hash,
	priorityFeeMicroLamports uint64,
) (*solana.Transaction, error) {
	priorityIx := computebudget.NewSetComputeUnitPriceInstructionBuilder().
		SetMicroLamports(priorityFeeMicroLamports).
		Build()

	budgetIxs, err := decodeInstructions(set.ComputeBudgetInstructions)
	if err != nil {
		return nil, failf(KindInstructionResolution, "compute budget: %v", err)
	}
	setupIxs, err := decodeInstructions(set.SetupInstructions)
	if err != nil {
		return nil, failf(KindInstructionResolution, "setup: %v", err)
	}
	if set.SwapInstruction == nil {
		return nil, failf(KindInstructionResolution, "instruction set has no swap instruction")
	}
	swapIx, err := decodeInstruction(*set.SwapInstruction)
	if err != nil {
		return nil, failf(KindInstructionResolution, "swap: %v", err)
	}

	ixs := make([]solana.Instruction, 0, 3+len(budgetIxs)+len(setupIxs))
	ixs = append(ixs, priorityIx)
	ixs = append(ixs, budgetIxs...)
	ixs = append(ixs, setupIxs...)
	ixs = append(ixs, swapIx)

	if set.CleanupInstruction != nil {
		cleanupIx, err := decodeInstruction(*set.CleanupInstruction)
		if err != nil {
			return nil, failf(KindInstructionResolution, "cleanup: %v", err)
		}
		ixs = append(ixs, cleanupIx)
	}

	opts := []solana.TransactionOption{solana.TransactionPayer(payer)}
	if len(tables) > 0 {
		opts = append(opts, solana.TransactionAddressTables(tables))
	}

	tx, err := solana.NewTransaction(ixs, recentBlockhash, opts...)
	if err != nil {
		return nil, failf(KindInstructionResolution, "failed to build transaction: %v", err)
	}

	if size, err := wireSize(tx); err != nil {
		return nil, failf(KindInstructionResolution, "failed to serialize transaction: %v", err)
	} else if size > maxTransactionBytes {
		return nil, failf(KindTransactionTooLarge, "serialized transaction is %d bytes, limit %d", size, maxTransactionBytes)
	}

	return tx, nil
}

// wireSize computes the fully-signed serialized size without mutating the
// transaction: message bytes plus the signature array the header requires.
func wireSize(tx *solana.Transaction) (int, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return 0, err
	}
	numSigs := int(tx.Message.Header.NumRequiredSignatures)
	// compact-u16 length prefix is one byte for < 128 signatures
	return 1 + numSigs*64 + len(msg), nil
}
