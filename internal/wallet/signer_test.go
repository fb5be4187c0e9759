package wallet

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSecretKey_Base64Seed(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	want := ed25519.NewKeyFromSeed(seed)

	priv, err := ParseSecretKey(base64.StdEncoding.EncodeToString(seed))
	require.NoError(t, err)
	assert.Equal(t, []byte(want), []byte(priv))
	assert.True(t, priv.IsValid())
}

func TestParseSecretKey_Base64FullKey(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 7
	full := ed25519.NewKeyFromSeed(seed)

	priv, err := ParseSecretKey(base64.StdEncoding.EncodeToString(full))
	require.NoError(t, err)
	assert.Equal(t, []byte(full), []byte(priv))
}

func TestParseSecretKey_Base58(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	seed[5] = 42
	full := ed25519.NewKeyFromSeed(seed)

	priv, err := ParseSecretKey(base58.Encode(full))
	require.NoError(t, err)
	assert.Equal(t, []byte(full), []byte(priv))
}

func TestParseSecretKey_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"garbage", "!!not-a-key!!"},
		{"wrong length", base64.StdEncoding.EncodeToString([]byte("short"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			priv, err := ParseSecretKey(tc.in)
			assert.Error(t, err)
			assert.Nil(t, priv)
		})
	}
}

func TestZero(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = 0xAA
	}

	priv, err := ParseSecretKey(base64.StdEncoding.EncodeToString(seed))
	require.NoError(t, err)

	Zero(priv)
	for i, b := range priv {
		assert.Zerof(t, b, "byte %d not scrubbed", i)
	}

	// Safe on nil.
	Zero(nil)
}
