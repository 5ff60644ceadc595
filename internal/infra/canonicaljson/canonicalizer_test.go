package canonicaljson

import (
	"context"
	"strings"
	"testing"
)

func TestCanonicalizeSortsKeys(t *testing.T) {
	input := []byte(`{"b":1,"a":2}`)
	out, err := (Canonicalizer{}).Canonicalize(context.Background(), input)
	if err != nil {
		t.Fatalf("Canonicalize returned error: %v", err)
	}

	expected := `{"a":2,"b":1}`
	if string(out) != expected {
		t.Fatalf("expected %s, got %s", expected, string(out))
	}
}

func TestPrettyOrdersKeysAndEndsWithNewline(t *testing.T) {
	out, err := (Canonicalizer{}).Pretty(context.Background(), map[string]any{
		"upgradeCapId": "0xcap",
		"packageId":    "0xpkg",
		"houseCapId":   "0xhouse",
	})
	if err != nil {
		t.Fatalf("Pretty returned error: %v", err)
	}

	text := string(out)
	if !strings.HasSuffix(text, "\n") {
		t.Fatalf("expected trailing newline, got %q", text)
	}
	house := strings.Index(text, "houseCapId")
	pkg := strings.Index(text, "packageId")
	upgrade := strings.Index(text, "upgradeCapId")
	if house < 0 || !(house < pkg && pkg < upgrade) {
		t.Fatalf("keys not in canonical order: %s", text)
	}
}

func TestCanonicalizeRejectsInvalidJSON(t *testing.T) {
	if _, err := (Canonicalizer{}).Canonicalize(context.Background(), []byte(`{"a":`)); err == nil {
		t.Fatalf("expected error")
	}
}
