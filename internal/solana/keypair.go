package solana

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Keypair is an ed25519 signing identity for a custodial wallet.
type Keypair struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// ParseKeypair decodes a 64-byte secret key from either base58 or a
// JSON array ("[1,2,3,...]"), the two formats wallets export.
// The embedded public key must be a valid curve point.
func ParseKeypair(secret string) (*Keypair, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("empty secret key")
	}

	var raw []byte
	if strings.HasPrefix(secret, "[") && strings.HasSuffix(secret, "]") {
		var arr []byte
		if err := json.Unmarshal([]byte(secret), &arr); err != nil {
			return nil, fmt.Errorf("decode JSON-array secret key: %w", err)
		}
		raw = arr
	} else {
		decoded, err := base58.Decode(secret)
		if err != nil {
			return nil, fmt.Errorf("decode base58 secret key: %w", err)
		}
		raw = decoded
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	priv := ed25519.PrivateKey(raw)
	pub := priv.Public().(ed25519.PublicKey)

	if _, err := new(edwards25519.Point).SetBytes(pub); err != nil {
		return nil, fmt.Errorf("secret key public half is not on curve: %w", err)
	}

	return &Keypair{priv: priv, pub: pub}, nil
}

// Address returns the base58 public key of the keypair.
func (k *Keypair) Address() string {
	return base58.Encode(k.pub)
}

// PublicKey returns the raw 32-byte public key.
func (k *Keypair) PublicKey() []byte {
	out := make([]byte, len(k.pub))
	copy(out, k.pub)
	return out
}

// Sign signs a serialized transaction message.
func (k *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(k.priv, message)
}

// ValidateAddress reports whether s is a syntactically valid Solana
// address: base58 text decoding to exactly 32 bytes. Off-curve
// addresses (PDAs) are accepted; the runtime allows transfers to them.
func ValidateAddress(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}
