package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dyike/DepotGo/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreInsertAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	entries := []Interaction{
		{Kind: KindStock, Subject: "fuel", Target: "stock_fuel", Outcome: OutcomeOK, Detail: "90", CreatedAt: base},
		{Kind: KindOrder, Subject: "fuel", Outcome: OutcomeFailed, Detail: "status 500", CreatedAt: base.Add(time.Second)},
		{Kind: KindSignup, Subject: "rey", Outcome: OutcomeRejected, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if _, err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Kind != KindSignup || got[1].Kind != KindOrder {
		t.Fatalf("expected newest first, got %s then %s", got[0].Kind, got[1].Kind)
	}
	if got[1].Detail != "status 500" || got[1].CreatedAt.UnixMilli() != base.Add(time.Second).UnixMilli() {
		t.Fatalf("row not round-tripped: %+v", got[1])
	}
}

func TestStoreInsertRequiresKind(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Insert(context.Background(), Interaction{Outcome: OutcomeOK}); err == nil {
		t.Fatalf("expected error without kind")
	}
}

func TestRecorderFlushesOnClose(t *testing.T) {
	store := openTestStore(t)
	rec, err := NewRecorder(store, nil)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	for i := 0; i < 10; i++ {
		rec.Record(Interaction{Kind: KindStock, Subject: "fuel", Outcome: OutcomeOK})
	}
	rec.Close()
	rec.Close()
	rec.Record(Interaction{Kind: KindStock, Subject: "late", Outcome: OutcomeOK})

	got, err := store.List(context.Background(), 100)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 rows after close, got %d", len(got))
	}
}

func TestOpenConfigured(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	store, err := OpenConfigured(cfg)
	if err != nil {
		t.Fatalf("OpenConfigured: %v", err)
	}
	store.Close()

	cfg.DataDir = ""
	if _, err := OpenConfigured(cfg); err != ErrDataDirNotConfigured {
		t.Fatalf("expected ErrDataDirNotConfigured, got %v", err)
	}
}
