package keys

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const ed25519Flag byte = 0x00

// transactionIntent prefixes transaction bytes before hashing: scope
// TransactionData, version 0, app id Sui.
var transactionIntent = []byte{0, 0, 0}

var ErrInvalidSecretKey = errors.New("invalid secret key")

// Ed25519Signer signs transactions with a single ed25519 key.
type Ed25519Signer struct {
	private ed25519.PrivateKey
	address string
}

// ParseSecretKey accepts a hex or base64 encoded seed. Besides the 32 byte
// seed it accepts 33 bytes with a leading ed25519 scheme flag and the 64 byte
// legacy keypair layout whose first half is the seed.
func ParseSecretKey(value string) (*Ed25519Signer, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSecretKey)
	}

	raw, err := decodeKey(value)
	if err != nil {
		return nil, err
	}

	var seed []byte
	switch len(raw) {
	case ed25519.SeedSize:
		seed = raw
	case ed25519.SeedSize + 1:
		if raw[0] != ed25519Flag {
			return nil, fmt.Errorf("%w: unsupported key scheme flag 0x%02x", ErrInvalidSecretKey, raw[0])
		}
		seed = raw[1:]
	case ed25519.PrivateKeySize:
		seed = raw[:ed25519.SeedSize]
	default:
		return nil, fmt.Errorf("%w: unexpected length %d", ErrInvalidSecretKey, len(raw))
	}

	return NewEd25519Signer(ed25519.NewKeyFromSeed(seed)), nil
}

func NewEd25519Signer(private ed25519.PrivateKey) *Ed25519Signer {
	public := private.Public().(ed25519.PublicKey)
	return &Ed25519Signer{
		private: private,
		address: DeriveAddress(public),
	}
}

func (s *Ed25519Signer) Address() string {
	return s.address
}

func (s *Ed25519Signer) PublicKey() ed25519.PublicKey {
	return s.private.Public().(ed25519.PublicKey)
}

// Sign returns the serialized signature for txBytes: scheme flag, ed25519
// signature over the intent digest, then the public key, base64 encoded.
func (s *Ed25519Signer) Sign(ctx context.Context, txBytes []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	digest := IntentDigest(txBytes)
	signature := ed25519.Sign(s.private, digest[:])

	out := make([]byte, 0, 1+ed25519.SignatureSize+ed25519.PublicKeySize)
	out = append(out, ed25519Flag)
	out = append(out, signature...)
	out = append(out, s.PublicKey()...)
	return base64.StdEncoding.EncodeToString(out), nil
}

func IntentDigest(txBytes []byte) [blake2b.Size256]byte {
	msg := make([]byte, 0, len(transactionIntent)+len(txBytes))
	msg = append(msg, transactionIntent...)
	msg = append(msg, txBytes...)
	return blake2b.Sum256(msg)
}

// DeriveAddress hashes the scheme flag and public key into a 0x-prefixed
// address.
func DeriveAddress(public ed25519.PublicKey) string {
	msg := make([]byte, 0, 1+len(public))
	msg = append(msg, ed25519Flag)
	msg = append(msg, public...)
	sum := blake2b.Sum256(msg)
	return "0x" + hex.EncodeToString(sum[:])
}

// VerifySignature checks a serialized signature produced by Sign.
func VerifySignature(serialized string, txBytes []byte) (bool, error) {
	raw, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}
	if len(raw) != 1+ed25519.SignatureSize+ed25519.PublicKeySize || raw[0] != ed25519Flag {
		return false, errors.New("not an ed25519 signature")
	}
	signature := raw[1 : 1+ed25519.SignatureSize]
	public := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])
	digest := IntentDigest(txBytes)
	return ed25519.Verify(public, digest[:], signature), nil
}

func decodeKey(value string) ([]byte, error) {
	hexValue := strings.TrimPrefix(value, "0x")
	if raw, err := hex.DecodeString(hexValue); err == nil {
		return raw, nil
	}
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: neither hex nor base64", ErrInvalidSecretKey)
	}
	return raw, nil
}
