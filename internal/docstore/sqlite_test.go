package docstore

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreSearchRanksByTermOverlap(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	docs := map[string]string{
		"doc_0": `{"portfolio": {"holdings": [{"symbol": "AAPL"}]}}`,
		"doc_1": `general market commentary with no holdings`,
		"doc_2": `portfolio holdings and allocations for the technology sector`,
	}
	for id, text := range docs {
		if err := store.Upsert(ctx, id, text, "test"); err != nil {
			t.Fatalf("Upsert %s: %v", id, err)
		}
	}

	fragments, err := store.Search(ctx, "portfolio holdings", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}
	if fragments[0].ID != "doc_2" {
		t.Errorf("expected doc_2 ranked first, got %s", fragments[0].ID)
	}
	if fragments[0].Score < fragments[1].Score {
		t.Error("fragments not sorted by score")
	}
}

func TestSQLiteStoreSearchNoMatchesReturnsAll(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "doc_0", "some text", "test"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	fragments, err := store.Search(ctx, "zzz qqq", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(fragments) != 1 {
		t.Errorf("expected unmatched documents to still be returned, got %d", len(fragments))
	}
}

func TestSQLiteStoreUpsertReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "doc_0", "first version", "test"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Upsert(ctx, "doc_0", "second version", "test"); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}

	fragments, err := store.Search(ctx, "version", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment after replace, got %d", len(fragments))
	}
	if fragments[0].Text != "second version" {
		t.Errorf("expected replaced text, got %q", fragments[0].Text)
	}
}
