// internal/scryfall/client.go
//
// Minimal Scryfall API client.
// Responsibilities:
//   - Draw a random card with high-resolution artwork, optionally limited to
//     an allow-list of set codes.
//   - Fetch name suggestions for a partial name.
//   - Download artwork bytes.
//
// Notes:
//   - Responses for suggestions and artwork go through an optional Cache.
//     Cache failures are logged and never fail a request.
//   - Every upstream failure is wrapped in game.ErrFetchFailed.
package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wheelyhard/internal/game"
	"github.com/robalobadob/wheelyhard/internal/reveal"
)

const (
	DefaultBaseURL   = "https://api.scryfall.com"
	DefaultUserAgent = "wheelyhard/1.0"

	maxArtworkBytes = 16 << 20
	maxJSONBytes    = 1 << 20
)

// Cache stores upstream responses. Implementations report ok=false on a miss.
type Cache interface {
	Artwork(ctx context.Context, url string) (body []byte, ok bool, err error)
	PutArtwork(ctx context.Context, url string, body []byte) error
	Suggestions(ctx context.Context, query string) (names []string, ok bool, err error)
	PutSuggestions(ctx context.Context, query string, names []string) error
}

// Options configure a Client. Zero values pick sensible defaults.
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	SetFilter  []string // lowercase set codes; empty means any set
	Cache      Cache
	HTTPClient *http.Client
}

// Client talks to the Scryfall REST API.
type Client struct {
	base      string
	userAgent string
	sets      []string
	cache     Cache
	http      *http.Client
}

// New constructs a Client.
func New(o Options) *Client {
	c := &Client{
		base:      strings.TrimRight(o.BaseURL, "/"),
		userAgent: o.UserAgent,
		sets:      o.SetFilter,
		cache:     o.Cache,
		http:      o.HTTPClient,
	}
	if c.base == "" {
		c.base = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.http == nil {
		timeout := o.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	return c
}

// imageURIs is the subset of Scryfall's image_uris object we use.
type imageURIs struct {
	ArtCrop string `json:"art_crop"`
}

// cardRes is the subset of a Scryfall card object we use.
type cardRes struct {
	Name      string     `json:"name"`
	ImageURIs *imageURIs `json:"image_uris"`
	CardFaces []struct {
		ImageURIs *imageURIs `json:"image_uris"`
	} `json:"card_faces"`
}

// catalogRes is Scryfall's catalog object (autocomplete).
type catalogRes struct {
	Data []string `json:"data"`
}

// errorRes is Scryfall's error object.
type errorRes struct {
	Details string `json:"details"`
}

// Query builds the random-card search query.
//
//	is:hires has:art_crop
//	is:hires has:art_crop (set:lea or set:leb)
func Query(sets []string) string {
	q := "is:hires has:art_crop"
	if len(sets) == 0 {
		return q
	}
	terms := make([]string, len(sets))
	for i, s := range sets {
		terms[i] = "set:" + s
	}
	return q + " (" + strings.Join(terms, " or ") + ")"
}

// RandomCard draws a random card. A missing artwork URL is not an error;
// the card is returned with an empty ArtworkURL.
func (c *Client) RandomCard(ctx context.Context) (game.Card, error) {
	u := c.base + "/cards/random?" + url.Values{"q": {Query(c.sets)}}.Encode()
	var res cardRes
	if err := c.getJSON(ctx, u, &res); err != nil {
		return game.Card{}, err
	}
	if res.Name == "" {
		return game.Card{}, fmt.Errorf("%w: card without name", game.ErrFetchFailed)
	}
	return game.Card{Name: res.Name, ArtworkURL: res.artCrop()}, nil
}

// artCrop prefers the card's own art, falling back to the first face for
// double-faced cards.
func (r cardRes) artCrop() string {
	if r.ImageURIs != nil && r.ImageURIs.ArtCrop != "" {
		return r.ImageURIs.ArtCrop
	}
	for _, f := range r.CardFaces {
		if f.ImageURIs != nil && f.ImageURIs.ArtCrop != "" {
			return f.ImageURIs.ArtCrop
		}
	}
	return ""
}

// Autocomplete returns up to 20 card names starting with partial.
func (c *Client) Autocomplete(ctx context.Context, partial string) ([]string, error) {
	key := strings.ToLower(partial)
	if c.cache != nil {
		names, ok, err := c.cache.Suggestions(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("query", key).Msg("suggestion cache read")
		} else if ok {
			return names, nil
		}
	}

	u := c.base + "/cards/autocomplete?" + url.Values{"q": {partial}}.Encode()
	var res catalogRes
	if err := c.getJSON(ctx, u, &res); err != nil {
		return nil, err
	}
	names := res.Data
	if names == nil {
		names = []string{}
	}

	if c.cache != nil {
		if err := c.cache.PutSuggestions(ctx, key, names); err != nil {
			log.Warn().Err(err).Str("query", key).Msg("suggestion cache write")
		}
	}
	return names, nil
}

// Artwork downloads the image at artURL.
func (c *Client) Artwork(ctx context.Context, artURL string) ([]byte, error) {
	if artURL == "" {
		return nil, fmt.Errorf("%w: no artwork url", game.ErrFetchFailed)
	}
	if c.cache != nil {
		body, ok, err := c.cache.Artwork(ctx, artURL)
		if err != nil {
			log.Warn().Err(err).Str("url", artURL).Msg("artwork cache read")
		} else if ok {
			return body, nil
		}
	}

	resp, err := c.do(ctx, artURL, "image/*")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArtworkBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read artwork: %w", game.ErrFetchFailed, err)
	}
	if len(body) > maxArtworkBytes {
		return nil, fmt.Errorf("%w: artwork larger than %d bytes", game.ErrFetchFailed, maxArtworkBytes)
	}

	// Only bytes that look like a usable image are cached, so one bad
	// response is retried on the next request.
	if c.cache != nil {
		if err := reveal.Check(bytes.NewReader(body)); err != nil {
			log.Warn().Err(err).Str("url", artURL).Msg("artwork not cached")
		} else if err := c.cache.PutArtwork(ctx, artURL, body); err != nil {
			log.Warn().Err(err).Str("url", artURL).Msg("artwork cache write")
		}
	}
	return body, nil
}

// getJSON performs a GET and decodes a JSON body into out.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	resp, err := c.do(ctx, u, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", game.ErrFetchFailed, u, err)
	}
	return nil
}

// do issues a GET and turns non-2xx statuses into errors.
func (c *Client) do(ctx context.Context, u, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", game.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", game.ErrFetchFailed, err)
	}
	log.Debug().Str("url", u).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("scryfall")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		var e errorRes
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxJSONBytes)).Decode(&e)
		if e.Details != "" {
			return nil, fmt.Errorf("%w: %s: %d %s", game.ErrFetchFailed, u, resp.StatusCode, e.Details)
		}
		return nil, fmt.Errorf("%w: %s: %d", game.ErrFetchFailed, u, resp.StatusCode)
	}
	return resp, nil
}
