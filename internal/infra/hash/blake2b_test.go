package hash

import "testing"

func TestSumHex(t *testing.T) {
	// BLAKE2b-256 of the empty input.
	const empty = "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"
	if got := (Blake2b256{}).SumHex(nil); got != empty {
		t.Fatalf("expected %s, got %s", empty, got)
	}
	if (Blake2b256{}).SumHex([]byte("a")) == (Blake2b256{}).SumHex([]byte("b")) {
		t.Fatalf("distinct inputs hashed equal")
	}
}
