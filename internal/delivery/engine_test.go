package delivery

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/remindd/internal/storage"
)

func TestEngineFiresInInstantOrder(t *testing.T) {
	engine := NewEngine(nil, 8)
	engine.Start()
	defer engine.Stop()

	ctx := context.Background()
	now := time.Now().UTC()
	if err := engine.RegisterTrigger(ctx, Trigger{ID: "later", At: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("register later: %v", err)
	}
	if err := engine.RegisterTrigger(ctx, Trigger{ID: "sooner", At: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("register sooner: %v", err)
	}

	first := waitFired(t, engine.C(), time.Second)
	second := waitFired(t, engine.C(), time.Second)
	if first.Trigger.ID != "sooner" || second.Trigger.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.Trigger.ID, second.Trigger.ID)
	}
}

func TestRegisterTriggerReplacesSameID(t *testing.T) {
	engine := NewEngine(nil, 8)
	engine.Start()
	defer engine.Stop()

	ctx := context.Background()
	now := time.Now().UTC()
	if err := engine.RegisterTrigger(ctx, Trigger{ID: "dup", At: now.Add(time.Hour)}); err != nil {
		t.Fatalf("register first: %v", err)
	}
	if err := engine.RegisterTrigger(ctx, Trigger{ID: "dup", At: now.Add(30 * time.Millisecond)}); err != nil {
		t.Fatalf("register second: %v", err)
	}

	ids, err := engine.ListTriggerIDs(ctx)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected one queued trigger, got %d", len(ids))
	}

	fired := waitFired(t, engine.C(), time.Second)
	if fired.Trigger.ID != "dup" {
		t.Fatalf("unexpected trigger: %s", fired.Trigger.ID)
	}
	select {
	case extra := <-engine.C():
		t.Fatalf("expected single alert, got extra: %s", extra.Trigger.ID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelTriggerRemovesExactlyOne(t *testing.T) {
	engine := NewEngine(nil, 8)
	engine.Start()
	defer engine.Stop()

	ctx := context.Background()
	now := time.Now().UTC()
	if err := engine.RegisterTrigger(ctx, Trigger{ID: "keep", At: now.Add(40 * time.Millisecond)}); err != nil {
		t.Fatalf("register keep: %v", err)
	}
	if err := engine.RegisterTrigger(ctx, Trigger{ID: "drop", At: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("register drop: %v", err)
	}
	if err := engine.CancelTrigger(ctx, "drop"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := engine.CancelTrigger(ctx, "unknown"); err != nil {
		t.Fatalf("cancel unknown: %v", err)
	}

	fired := waitFired(t, engine.C(), time.Second)
	if fired.Trigger.ID != "keep" {
		t.Fatalf("expected keep to fire, got: %s", fired.Trigger.ID)
	}
}

func TestRegisterTriggerValidation(t *testing.T) {
	engine := NewEngine(nil, 1)
	ctx := context.Background()
	if err := engine.RegisterTrigger(ctx, Trigger{At: time.Now()}); err != ErrMissingTriggerID {
		t.Fatalf("expected ErrMissingTriggerID, got: %v", err)
	}
	if err := engine.RegisterTrigger(ctx, Trigger{ID: "x"}); err != ErrInvalidFireTime {
		t.Fatalf("expected ErrInvalidFireTime, got: %v", err)
	}
}

func TestReplaySplitsMissedAndFuture(t *testing.T) {
	store := newEngineTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	past := Trigger{ID: "missed", At: now.Add(-time.Hour)}
	future := Trigger{ID: "future", At: now.Add(90 * time.Millisecond)}
	seed := NewEngine(store, 8)
	if err := seed.RegisterTrigger(ctx, past); err != nil {
		t.Fatalf("seed past: %v", err)
	}
	if err := seed.RegisterTrigger(ctx, future); err != nil {
		t.Fatalf("seed future: %v", err)
	}

	// Fresh engine simulates a daemon restart over the same store.
	engine := NewEngine(store, 8)
	engine.Start()
	defer engine.Stop()

	missed, queued, err := engine.Replay(ctx, now)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if missed != 1 || queued != 1 {
		t.Fatalf("expected 1 missed / 1 queued, got %d / %d", missed, queued)
	}

	first := waitFired(t, engine.C(), time.Second)
	if first.Trigger.ID != "missed" || !first.Missed {
		t.Fatalf("expected missed replay first, got: %+v", first)
	}
	second := waitFired(t, engine.C(), time.Second)
	if second.Trigger.ID != "future" || second.Missed {
		t.Fatalf("expected future trigger to fire, got: %+v", second)
	}

	ids, err := store.ListTriggerIDs(ctx)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected store drained after firing, got: %v", ids)
	}
}

func TestRequestPermissionReadsSetting(t *testing.T) {
	store := newEngineTestStore(t)
	engine := NewEngine(store, 1)
	ctx := context.Background()

	granted, err := engine.RequestPermission(ctx)
	if err != nil {
		t.Fatalf("request permission: %v", err)
	}
	if !granted {
		t.Fatal("expected default granted")
	}

	if err := store.PutSetting(ctx, PermissionSetting, "denied"); err != nil {
		t.Fatalf("put setting: %v", err)
	}
	granted, err = engine.RequestPermission(ctx)
	if err != nil {
		t.Fatalf("request permission: %v", err)
	}
	if granted {
		t.Fatal("expected denied permission")
	}
}

func newEngineTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "engine-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.MigrateUp(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func waitFired(t *testing.T, ch <-chan Fired, timeout time.Duration) Fired {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for fired trigger")
		return Fired{}
	}
}
