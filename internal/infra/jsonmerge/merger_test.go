package jsonmerge

import (
	"context"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

func TestMerge(t *testing.T) {
	doc := []byte(`{"packageId":"0x1","houseCapId":"0xh"}`)
	patch := []byte(`{"packageId":"0x2"}`)

	out, err := (Merger{}).Merge(context.Background(), doc, patch)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got["packageId"] != "0x2" || got["houseCapId"] != "0xh" || len(got) != 2 {
		t.Fatalf("unexpected output: %s", string(out))
	}
}

func TestMergeStateKeepsPriorFields(t *testing.T) {
	prior := domain.PublishState{
		"packageId":  "0xold",
		"houseCapId": "0xhouse",
		"note":       "kept",
	}
	update := domain.PublishState{
		"packageId":    "0xnew",
		"upgradeCapId": "0xcap",
		"publisherIds": []any{"0xpub"},
	}

	merged, err := (Merger{}).MergeState(context.Background(), prior, update)
	if err != nil {
		t.Fatalf("MergeState returned error: %v", err)
	}
	if merged.PackageID() != "0xnew" {
		t.Fatalf("expected updated package id, got %q", merged.PackageID())
	}
	if merged.UpgradeCapID() != "0xcap" {
		t.Fatalf("expected upgrade cap, got %q", merged.UpgradeCapID())
	}
	if merged["houseCapId"] != "0xhouse" || merged["note"] != "kept" {
		t.Fatalf("prior fields lost: %v", merged)
	}
	ids, ok := merged["publisherIds"].([]any)
	if !ok || len(ids) != 1 || ids[0] != "0xpub" {
		t.Fatalf("unexpected publisher ids: %v", merged["publisherIds"])
	}
	if prior["packageId"] != "0xold" {
		t.Fatalf("prior state mutated")
	}
}

func TestMergeStateNilPrior(t *testing.T) {
	merged, err := (Merger{}).MergeState(context.Background(), nil, domain.PublishState{"packageId": "0x1"})
	if err != nil {
		t.Fatalf("MergeState returned error: %v", err)
	}
	if merged.PackageID() != "0x1" || len(merged) != 1 {
		t.Fatalf("unexpected state: %v", merged)
	}
}

func TestMergeStatePatchSemantics(t *testing.T) {
	prior := domain.PublishState{
		"packageId": "0xold",
		"legacyId":  "0xlegacy",
		"extra":     map[string]any{"admin": "0xa", "treasury": "0xt"},
	}
	update := domain.PublishState{
		"packageId": "0xnew",
		"legacyId":  nil,
		"extra":     map[string]any{"admin": "0xb"},
	}

	merged, err := (Merger{}).MergeState(context.Background(), prior, update)
	if err != nil {
		t.Fatalf("MergeState returned error: %v", err)
	}
	if _, ok := merged["legacyId"]; ok {
		t.Fatalf("nil value should remove the key: %v", merged)
	}
	extra, ok := merged["extra"].(map[string]any)
	if !ok || extra["admin"] != "0xb" || extra["treasury"] != "0xt" {
		t.Fatalf("nested object not merged: %v", merged["extra"])
	}
	if merged.PackageID() != "0xnew" {
		t.Fatalf("expected updated package id, got %q", merged.PackageID())
	}
}

func TestMergeRejectsInvalidDocument(t *testing.T) {
	if _, err := (Merger{}).Merge(context.Background(), []byte(`{`), []byte(`{}`)); err == nil {
		t.Fatalf("expected error")
	}
}
