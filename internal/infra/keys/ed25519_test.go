package keys

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func testSeed() []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return seed
}

func TestParseSecretKeyFormats(t *testing.T) {
	seed := testSeed()
	expected := NewEd25519Signer(ed25519.NewKeyFromSeed(seed)).Address()

	flagged := append([]byte{0x00}, seed...)
	legacy := ed25519.NewKeyFromSeed(seed)

	cases := map[string]string{
		"hex":            hex.EncodeToString(seed),
		"hex prefixed":   "0x" + hex.EncodeToString(seed),
		"base64":         base64.StdEncoding.EncodeToString(seed),
		"base64 flagged": base64.StdEncoding.EncodeToString(flagged),
		"legacy":         base64.StdEncoding.EncodeToString(legacy),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			signer, err := ParseSecretKey(value)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if signer.Address() != expected {
				t.Fatalf("expected address %s, got %s", expected, signer.Address())
			}
		})
	}
}

func TestParseSecretKeyRejects(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"short":     hex.EncodeToString([]byte{1, 2, 3}),
		"bad flag":  base64.StdEncoding.EncodeToString(append([]byte{0x01}, testSeed()...)),
		"not a key": "???",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSecretKey(value); !errors.Is(err, ErrInvalidSecretKey) {
				t.Fatalf("expected invalid secret key, got %v", err)
			}
		})
	}
}

func TestAddressShape(t *testing.T) {
	signer := NewEd25519Signer(ed25519.NewKeyFromSeed(testSeed()))
	addr := signer.Address()
	if !strings.HasPrefix(addr, "0x") || len(addr) != 66 {
		t.Fatalf("unexpected address: %s", addr)
	}
}

func TestSignLayoutAndVerify(t *testing.T) {
	signer := NewEd25519Signer(ed25519.NewKeyFromSeed(testSeed()))
	txBytes := []byte("transaction")

	sig, err := signer.Sign(context.Background(), txBytes)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) != 97 || raw[0] != 0x00 {
		t.Fatalf("unexpected signature layout: %d bytes, flag %x", len(raw), raw[0])
	}
	if !bytes.Equal(raw[65:], signer.PublicKey()) {
		t.Fatalf("public key not appended")
	}

	ok, err := VerifySignature(sig, txBytes)
	if err != nil || !ok {
		t.Fatalf("expected valid signature, got %v %v", ok, err)
	}
	ok, err = VerifySignature(sig, []byte("other"))
	if err != nil || ok {
		t.Fatalf("expected signature mismatch, got %v %v", ok, err)
	}
}
