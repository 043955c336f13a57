package cache

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/robalobadob/wheelyhard/assets"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "data", "cache.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(db, assets.Migrations()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewStore(db, ttl)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t, 0)
	if err := Migrate(s.db, assets.Migrations()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("_migrations rows = %d; want 1", n)
	}
}

func TestArtworkRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Hour)

	if _, ok, err := s.Artwork(ctx, "https://img.test/a.jpg"); ok || err != nil {
		t.Fatalf("empty cache hit: ok=%v err=%v", ok, err)
	}
	if err := s.PutArtwork(ctx, "https://img.test/a.jpg", []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutArtwork(ctx, "https://img.test/a.jpg", []byte{4, 5}); err != nil {
		t.Fatal(err)
	}
	body, ok, err := s.Artwork(ctx, "https://img.test/a.jpg")
	if err != nil || !ok || !reflect.DeepEqual(body, []byte{4, 5}) {
		t.Fatalf("Artwork = %v, %v, %v", body, ok, err)
	}
}

func TestSuggestionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Hour)

	want := []string{"Black Lotus", "Black Knight"}
	if err := s.PutSuggestions(ctx, "black", want); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Suggestions(ctx, "black")
	if err != nil || !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("Suggestions = %v, %v, %v", got, ok, err)
	}

	if err := s.PutSuggestions(ctx, "qqqq", []string{}); err != nil {
		t.Fatal(err)
	}
	got, ok, err = s.Suggestions(ctx, "qqqq")
	if err != nil || !ok || got == nil || len(got) != 0 {
		t.Fatalf("empty catalog = %#v, %v, %v", got, ok, err)
	}
}

func TestExpiryAndPrune(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.PutArtwork(ctx, "old", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.PutSuggestions(ctx, "old", []string{"x"}); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Hour)
	if err := s.PutArtwork(ctx, "new", []byte("y")); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := s.Artwork(ctx, "old"); ok {
		t.Fatal("expired artwork returned")
	}
	if _, ok, _ := s.Suggestions(ctx, "old"); ok {
		t.Fatal("expired suggestions returned")
	}

	n, err := s.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("pruned %d rows; want 2", n)
	}
	if _, ok, _ := s.Artwork(ctx, "new"); !ok {
		t.Fatal("fresh artwork pruned")
	}
}
