package wallet

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ParseSecretKey parses a caller-supplied signing key. Accepted encodings:
// base64 (preferred on the wire) or base58, holding either the 32-byte
// ed25519 seed or the full 64-byte secret key.
//
// The returned key is owned by the caller for the duration of one request
// and must be passed to Zero on every exit path.
func ParseSecretKey(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("wallet: secret key is required")
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		raw, err = base58.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("wallet: secret key is neither base64 nor base58")
		}
	}

	switch len(raw) {
	case ed25519.SeedSize:
		key := ed25519.NewKeyFromSeed(raw)
		zero(raw)
		return solana.PrivateKey(key), nil
	case ed25519.PrivateKeySize:
		return solana.PrivateKey(ed25519.PrivateKey(raw)), nil
	default:
		zero(raw)
		return nil, fmt.Errorf("wallet: expected %d or %d key bytes, got %d",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}

// Zero scrubs key material in place. Safe on nil.
func Zero(priv solana.PrivateKey) {
	zero(priv)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
