package news

import "testing"

func TestItemKey_SameURLSameKey(t *testing.T) {
	a := Item{CompanyID: "ACME", URL: "https://example.com/news/1"}
	b := Item{CompanyID: "OTHER", Text: "different text", URL: "https://example.com/news/1"}
	if a.Key() != b.Key() {
		t.Fatalf("same URL should produce same key: %s vs %s", a.Key(), b.Key())
	}
}

func TestItemKey_DifferentURLDifferentKey(t *testing.T) {
	a := Item{URL: "https://example.com/news/1"}
	b := Item{URL: "https://example.com/news/2"}
	if a.Key() == b.Key() {
		t.Fatal("different URLs should produce different keys")
	}
}

func TestItemKey_HexEncoded(t *testing.T) {
	key := Item{URL: "https://example.com/x"}.Key()
	if len(key) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(key))
	}
}
