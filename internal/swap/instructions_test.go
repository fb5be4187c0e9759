package swap

import (
	"encoding/base64"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solflow/swap-gateway/internal/jupiter"
)

func TestDecodeInstruction(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	acc1 := solana.NewWallet().PublicKey()
	acc2 := solana.NewWallet().PublicKey()
	data := []byte{1, 2, 3, 4}

	in := jupiter.Instruction{
		ProgramID: program.String(),
		Accounts: []jupiter.AccountMeta{
			{Pubkey: acc1.String(), IsSigner: true, IsWritable: true},
			{Pubkey: acc2.String(), IsSigner: false, IsWritable: false},
		},
		Data: base64.StdEncoding.EncodeToString(data),
	}

	ix, err := decodeInstruction(in)
	require.NoError(t, err)

	assert.Equal(t, program, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, acc1, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, acc2, accounts[1].PublicKey)
	assert.False(t, accounts[1].IsSigner)

	got, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDecodeInstruction_Invalid(t *testing.T) {
	valid := solana.NewWallet().PublicKey().String()

	t.Run("bad program id", func(t *testing.T) {
		_, err := decodeInstruction(jupiter.Instruction{ProgramID: "not-base58!"})
		assert.ErrorContains(t, err, "programId")
	})

	t.Run("bad account pubkey", func(t *testing.T) {
		_, err := decodeInstruction(jupiter.Instruction{
			ProgramID: valid,
			Accounts:  []jupiter.AccountMeta{{Pubkey: "nope"}},
		})
		assert.ErrorContains(t, err, "account pubkey")
	})

	t.Run("bad data encoding", func(t *testing.T) {
		_, err := decodeInstruction(jupiter.Instruction{
			ProgramID: valid,
			Data:      "%%%not-base64%%%",
		})
		assert.ErrorContains(t, err, "data")
	})
}

func TestDecodeInstructions_PreservesOrder(t *testing.T) {
	program := solana.NewWallet().PublicKey().String()
	in := []jupiter.Instruction{
		{ProgramID: program, Data: base64.StdEncoding.EncodeToString([]byte{1})},
		{ProgramID: program, Data: base64.StdEncoding.EncodeToString([]byte{2})},
		{ProgramID: program, Data: base64.StdEncoding.EncodeToString([]byte{3})},
	}

	out, err := decodeInstructions(in)
	require.NoError(t, err)
	require.Len(t, out, 3)

	for i, ix := range out {
		data, err := ix.Data()
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(i + 1)}, data)
	}
}

func TestFindAssociatedTokenAddress(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	ata, _, err := findAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)

	// Must agree with the library's own derivation.
	want, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, want, ata)

	// Different mint, different account.
	other, _, err := findAssociatedTokenAddress(owner, solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.NotEqual(t, ata, other)
}

func TestNewCreateAssociatedTokenAccountIx(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	owner := payer
	mint := solana.NewWallet().PublicKey()
	ata, _, err := findAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)

	ix := newCreateAssociatedTokenAccountIx(payer, ata, owner, mint)

	assert.Equal(t, associatedTokenProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 6)
	assert.Equal(t, payer, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, ata, accounts[1].PublicKey)
	assert.False(t, accounts[1].IsSigner)
	assert.True(t, accounts[1].IsWritable)
	assert.Equal(t, owner, accounts[2].PublicKey)
	assert.Equal(t, mint, accounts[3].PublicKey)
	assert.Equal(t, solana.SystemProgramID, accounts[4].PublicKey)
	assert.Equal(t, solana.TokenProgramID, accounts[5].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Empty(t, data)
}
