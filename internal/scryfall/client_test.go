package scryfall

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/robalobadob/wheelyhard/internal/game"
	"github.com/robalobadob/wheelyhard/internal/reveal"
)

type memCache struct {
	mu    sync.Mutex
	art   map[string][]byte
	names map[string][]string
}

func newMemCache() *memCache {
	return &memCache{art: map[string][]byte{}, names: map[string][]string{}}
}

func (m *memCache) Artwork(_ context.Context, u string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.art[u]
	return b, ok, nil
}

func (m *memCache) PutArtwork(_ context.Context, u string, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.art[u] = b
	return nil
}

func (m *memCache) Suggestions(_ context.Context, q string) ([]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.names[q]
	return n, ok, nil
}

func (m *memCache) PutSuggestions(_ context.Context, q string, n []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[q] = n
	return nil
}

func TestQuery(t *testing.T) {
	if got := Query(nil); got != "is:hires has:art_crop" {
		t.Fatalf("Query(nil) = %q", got)
	}
	if got, want := Query([]string{"lea", "arn"}), "is:hires has:art_crop (set:lea or set:arn)"; got != want {
		t.Fatalf("Query = %q; want %q", got, want)
	}
}

func TestRandomCard(t *testing.T) {
	var gotQuery, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/random" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"object":"card","name":"Black Lotus","image_uris":{"art_crop":"https://img.test/lotus.jpg"}}`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL, SetFilter: []string{"lea"}})
	card, err := c.RandomCard(context.Background())
	if err != nil {
		t.Fatalf("RandomCard: %v", err)
	}
	if card.Name != "Black Lotus" || card.ArtworkURL != "https://img.test/lotus.jpg" {
		t.Fatalf("card = %+v", card)
	}
	if gotQuery != "is:hires has:art_crop (set:lea)" {
		t.Fatalf("query = %q", gotQuery)
	}
	if gotUA != DefaultUserAgent {
		t.Fatalf("user agent = %q", gotUA)
	}
}

func TestRandomCardDoubleFacedAndMissingArt(t *testing.T) {
	bodies := []string{
		`{"name":"Delver of Secrets // Insectile Aberration","card_faces":[{"image_uris":{"art_crop":"https://img.test/delver.jpg"}},{}]}`,
		`{"name":"Plains"}`,
	}
	want := []string{"https://img.test/delver.jpg", ""}
	i := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bodies[i]))
		i++
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL})
	for j := range bodies {
		card, err := c.RandomCard(context.Background())
		if err != nil {
			t.Fatalf("card %d: %v", j, err)
		}
		if card.ArtworkURL != want[j] {
			t.Fatalf("card %d: art = %q; want %q", j, card.ArtworkURL, want[j])
		}
	}
}

func TestRandomCardFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"object":"error","details":"down"}`))
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"name":`))
		},
		"no name": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"image_uris":{"art_crop":"x"}}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(h)
			defer ts.Close()
			_, err := New(Options{BaseURL: ts.URL}).RandomCard(context.Background())
			if !errors.Is(err, game.ErrFetchFailed) {
				t.Fatalf("err = %v; want ErrFetchFailed", err)
			}
		})
	}
}

func TestAutocompleteUsesCache(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("q") != "Black L" {
			t.Errorf("q = %q", r.URL.Query().Get("q"))
		}
		_, _ = w.Write([]byte(`{"object":"catalog","data":["Black Lotus","Black Library"]}`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL, Cache: newMemCache()})
	for i := 0; i < 3; i++ {
		names, err := c.Autocomplete(context.Background(), "Black L")
		if err != nil {
			t.Fatal(err)
		}
		if len(names) != 2 || names[0] != "Black Lotus" {
			t.Fatalf("names = %v", names)
		}
	}
	if calls != 1 {
		t.Fatalf("upstream calls = %d; want 1", calls)
	}
}

func TestAutocompleteEmptyCatalog(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"object":"catalog","total_values":0}`))
	}))
	defer ts.Close()

	names, err := New(Options{BaseURL: ts.URL}).Autocomplete(context.Background(), "zzzq")
	if err != nil {
		t.Fatal(err)
	}
	if names == nil || len(names) != 0 {
		t.Fatalf("names = %#v; want empty non-nil", names)
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestArtwork(t *testing.T) {
	art := pngBytes(t)
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(art)
	}))
	defer ts.Close()

	c := New(Options{Cache: newMemCache()})
	for i := 0; i < 2; i++ {
		b, err := c.Artwork(context.Background(), ts.URL+"/art.png")
		if err != nil || !bytes.Equal(b, art) {
			t.Fatalf("Artwork = %d bytes, %v", len(b), err)
		}
	}
	if calls != 1 {
		t.Fatalf("upstream calls = %d; want 1", calls)
	}

	if _, err := c.Artwork(context.Background(), ts.URL+"/missing.jpg"); !errors.Is(err, game.ErrFetchFailed) {
		t.Fatalf("missing: err = %v", err)
	}
	if _, err := c.Artwork(context.Background(), ""); !errors.Is(err, game.ErrFetchFailed) {
		t.Fatalf("empty url: err = %v", err)
	}
}

func TestArtworkDoesNotCacheNonImage(t *testing.T) {
	art := pngBytes(t)
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			_, _ = w.Write([]byte("<html>cdn hiccup</html>"))
			return
		}
		_, _ = w.Write(art)
	}))
	defer ts.Close()

	cache := newMemCache()
	c := New(Options{Cache: cache})
	u := ts.URL + "/art.png"

	first, err := c.Artwork(context.Background(), u)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := reveal.Decode(bytes.NewReader(first)); !errors.Is(err, reveal.ErrDecodeFailed) {
		t.Fatalf("first body decoded: err = %v", err)
	}
	if _, ok, _ := cache.Artwork(context.Background(), u); ok {
		t.Fatal("non-image body was cached")
	}

	second, err := c.Artwork(context.Background(), u)
	if err != nil || !bytes.Equal(second, art) {
		t.Fatalf("second = %q, %v", second, err)
	}
	if calls != 2 {
		t.Fatalf("upstream calls = %d; want 2", calls)
	}
	if _, ok, _ := cache.Artwork(context.Background(), u); !ok {
		t.Fatal("valid image was not cached")
	}
}

func TestArtworkRejectsOversizedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, maxArtworkBytes+1000))
	}))
	defer ts.Close()

	cache := newMemCache()
	c := New(Options{Cache: cache})
	b, err := c.Artwork(context.Background(), ts.URL+"/huge.png")
	if !errors.Is(err, game.ErrFetchFailed) {
		t.Fatalf("err = %v; want ErrFetchFailed", err)
	}
	if b != nil {
		t.Fatalf("returned %d bytes; want none", len(b))
	}
	if len(cache.art) != 0 {
		t.Fatal("oversized body was cached")
	}
}
