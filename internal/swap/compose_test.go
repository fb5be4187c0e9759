package swap

import (
	"encoding/base64"
	"testing"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solflow/swap-gateway/internal/jupiter"
)

func wireIx(program solana.PublicKey, signer solana.PublicKey, data []byte) jupiter.Instruction {
	return jupiter.Instruction{
		ProgramID: program.String(),
		Accounts: []jupiter.AccountMeta{
			{Pubkey: signer.String(), IsSigner: true, IsWritable: true},
		},
		Data: base64.StdEncoding.EncodeToString(data),
	}
}

func testInstructionSet(payer solana.PublicKey) *jupiter.InstructionSet {
	program := solana.NewWallet().PublicKey()
	swapIx := wireIx(program, payer, []byte{9, 9, 9})
	setupIx := wireIx(program, payer, []byte{1})
	cleanupIx := wireIx(program, payer, []byte{2})
	return &jupiter.InstructionSet{
		SetupInstructions:  []jupiter.Instruction{setupIx},
		SwapInstruction:    &swapIx,
		CleanupInstruction: &cleanupIx,
	}
}

func TestComposeSwapTransaction_PriorityFeeFirst(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	set := testInstructionSet(payer)

	tx, err := composeSwapTransaction(payer, set, nil, solana.Hash{}, 5000)
	require.NoError(t, err)

	// priority fee + setup + swap + cleanup
	require.Len(t, tx.Message.Instructions, 4)

	first := tx.Message.Instructions[0]
	require.Less(t, int(first.ProgramIDIndex), len(tx.Message.AccountKeys))
	assert.Equal(t, computebudget.ProgramID, tx.Message.AccountKeys[first.ProgramIDIndex])

	assert.Equal(t, payer, tx.Message.AccountKeys[0])
}

func TestComposeSwapTransaction_CleanupOmitted(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	set := testInstructionSet(payer)
	set.CleanupInstruction = nil

	tx, err := composeSwapTransaction(payer, set, nil, solana.Hash{}, 5000)
	require.NoError(t, err)

	// priority fee + setup + swap, no no-op in place of cleanup
	assert.Len(t, tx.Message.Instructions, 3)
}

func TestComposeSwapTransaction_Deterministic(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	set := testInstructionSet(payer)

	tx1, err := composeSwapTransaction(payer, set, nil, solana.Hash{}, 5000)
	require.NoError(t, err)
	tx2, err := composeSwapTransaction(payer, set, nil, solana.Hash{}, 5000)
	require.NoError(t, err)

	b1, err := tx1.Message.MarshalBinary()
	require.NoError(t, err)
	b2, err := tx2.Message.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestComposeSwapTransaction_MissingSwapInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	set := testInstructionSet(payer)
	set.SwapInstruction = nil

	_, err := composeSwapTransaction(payer, set, nil, solana.Hash{}, 5000)
	require.Error(t, err)

	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, KindInstructionResolution, f.Kind)
}

func TestComposeSwapTransaction_TooLarge(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	set := testInstructionSet(payer)

	big := wireIx(solana.NewWallet().PublicKey(), payer, make([]byte, 2000))
	set.SwapInstruction = &big

	_, err := composeSwapTransaction(payer, set, nil, solana.Hash{}, 5000)
	require.Error(t, err)

	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, KindTransactionTooLarge, f.Kind)
}

func TestComposeSwapTransaction_SizeWithinLimit(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	set := testInstructionSet(payer)

	tx, err := composeSwapTransaction(payer, set, nil, solana.Hash{}, 5000)
	require.NoError(t, err)

	size, err := wireSize(tx)
	require.NoError(t, err)
	assert.LessOrEqual(t, size, maxTransactionBytes)
	assert.Positive(t, size)
}
