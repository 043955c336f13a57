// internal/suggest/suggest.go
//
// Candidate card names for the guess input.
//
// Suggestions are advisory only: picking one fills the pending guess text and
// never submits it. Short inputs are answered locally with no upstream call.

package suggest

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/robalobadob/wheelyhard/internal/game"
)

// DefaultMinLength is the shortest input that triggers a lookup.
const DefaultMinLength = 3

// Lookup is the external name-suggestion service.
type Lookup interface {
	Autocomplete(ctx context.Context, partial string) ([]string, error)
}

// Suggester gates calls to a Lookup.
type Suggester struct {
	lookup    Lookup
	minLength int
	enabled   bool
}

// New returns a Suggester. minLength < 0 falls back to DefaultMinLength.
func New(lookup Lookup, minLength int, enabled bool) *Suggester {
	if minLength < 0 {
		minLength = DefaultMinLength
	}
	return &Suggester{lookup: lookup, minLength: minLength, enabled: enabled}
}

// Enabled reports whether the suggestion dropdown is shown at all.
func (s *Suggester) Enabled() bool { return s.enabled }

// MinLength is the rune count below which Suggest returns nothing.
func (s *Suggester) MinLength() int { return s.minLength }

// Suggest returns candidate names for partial. The result is never nil.
func (s *Suggester) Suggest(ctx context.Context, partial string) ([]string, error) {
	if !s.enabled || s.lookup == nil || utf8.RuneCountInString(partial) < s.minLength {
		return []string{}, nil
	}
	names, err := s.lookup.Autocomplete(ctx, partial)
	if err != nil {
		return []string{}, fmt.Errorf("%w: suggestions: %w", game.ErrFetchFailed, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
