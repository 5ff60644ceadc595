package hash

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Blake2b256 fingerprints encoded transactions for the deployment journal.
type Blake2b256 struct{}

func (Blake2b256) SumHex(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
