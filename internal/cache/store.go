// internal/cache/store.go
//
// SQLite-backed cache of Scryfall responses (artwork bytes and
// autocomplete catalogs). Entries older than the TTL read as misses and are
// removed by Prune.

package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Store implements scryfall.Cache on top of *sql.DB.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewStore wraps db. ttl <= 0 means entries never expire.
func NewStore(db *sql.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl, now: time.Now}
}

// cutoff is the oldest fetched_at still considered fresh.
func (s *Store) cutoff() int64 {
	if s.ttl <= 0 {
		return 0
	}
	return s.now().Add(-s.ttl).Unix()
}

// Artwork returns cached bytes for url.
func (s *Store) Artwork(ctx context.Context, url string) ([]byte, bool, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM artwork WHERE url=? AND fetched_at>=?`, url, s.cutoff(),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// PutArtwork stores or refreshes artwork bytes.
func (s *Store) PutArtwork(ctx context.Context, url string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artwork(url, body, fetched_at) VALUES(?,?,?)
		 ON CONFLICT(url) DO UPDATE SET body=excluded.body, fetched_at=excluded.fetched_at`,
		url, body, s.now().Unix(),
	)
	return err
}

// Suggestions returns the cached catalog for query.
func (s *Store) Suggestions(ctx context.Context, query string) ([]string, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT names FROM suggestions WHERE query=? AND fetched_at>=?`, query, s.cutoff(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	names := []string{}
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, false, err
	}
	return names, true, nil
}

// PutSuggestions stores or refreshes a catalog.
func (s *Store) PutSuggestions(ctx context.Context, query string, names []string) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO suggestions(query, names, fetched_at) VALUES(?,?,?)
		 ON CONFLICT(query) DO UPDATE SET names=excluded.names, fetched_at=excluded.fetched_at`,
		query, string(raw), s.now().Unix(),
	)
	return err
}

// Prune deletes expired rows and reports how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cut := s.cutoff()
	var total int64
	for _, q := range []string{
		`DELETE FROM artwork WHERE fetched_at<?`,
		`DELETE FROM suggestions WHERE fetched_at<?`,
	} {
		res, err := s.db.ExecContext(ctx, q, cut)
		if err != nil {
			return total, err
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}
