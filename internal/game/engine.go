// internal/game/engine.go
//
// Core game engine for a single player's artwork guessing session.
// Responsibilities:
//   - Start rounds by fetching a card through an injected CardFetcher.
//   - Validate and apply guesses, counting attempts.
//   - Advance the reveal level on misses and decide won/lost.
//
// Notes:
//   - A Session is reused across rounds; StartRound discards the prior card.
//   - Fetching happens outside the lock. A generation counter makes sure
//     only the most recently requested round is installed.
//   - Failed operations never leave partial mutations behind.
package game

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Session holds the state of one player's game.
type Session struct {
	mu          sync.Mutex
	maxReveal   int
	generation  uint64
	card        *Card
	attempts    int
	revealLevel int
	status      Status
}

// New constructs a session in NotStarted.
// maxReveal <= 0 falls back to DefaultMaxReveal.
func New(maxReveal int) *Session {
	if maxReveal <= 0 {
		maxReveal = DefaultMaxReveal
	}
	return &Session{maxReveal: maxReveal, status: StatusNotStarted}
}

// StartRound fetches a new card and, on success, resets the session to a
// fresh InProgress round. It may be called from any status.
//
// Errors:
//   - ErrFetchFailed (wrapped) if fetch fails or yields a nameless card.
//   - ErrSuperseded if another StartRound was issued while fetching.
func (s *Session) StartRound(ctx context.Context, fetch CardFetcher) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	card, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if strings.TrimSpace(card.Name) == "" {
		return fmt.Errorf("%w: card has no name", ErrFetchFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrSuperseded
	}
	s.card = &card
	s.attempts = 0
	s.revealLevel = 0
	s.status = StatusInProgress
	return nil
}

// SubmitGuess applies a guess to the current round.
//
// Validation rules:
//   - The round must be in progress.
//   - The guess must contain something other than whitespace.
//
// Both failures return ErrInvalidGuess and consume no attempt.
//
// Matching is case-folded equality against the card name. A match reveals the
// whole artwork and wins; a miss reveals one more step and loses once the
// reveal level reaches its maximum.
func (s *Session) SubmitGuess(raw string) (Outcome, error) {
	out, _, err := s.Guess(raw)
	return out, err
}

// Guess is SubmitGuess that also returns the state the guess produced, read
// under the same lock. On ErrInvalidGuess the state is the unchanged one.
func (s *Session) Guess(raw string) (Outcome, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.apply(raw)
	return out, s.snapshot(), err
}

func (s *Session) apply(raw string) (Outcome, error) {
	if s.status != StatusInProgress || strings.TrimSpace(raw) == "" {
		return Outcome{}, ErrInvalidGuess
	}
	s.attempts++

	if Matches(raw, s.card.Name) {
		s.revealLevel = s.maxReveal
		s.status = StatusWon
		return Outcome{Kind: OutcomeWon, Attempts: s.attempts}, nil
	}

	s.revealLevel = min(s.revealLevel+1, s.maxReveal)
	if s.revealLevel == s.maxReveal {
		s.status = StatusLost
		return Outcome{Kind: OutcomeLost, CardName: s.card.Name}, nil
	}
	return Outcome{Kind: OutcomeContinue, RevealLevel: s.revealLevel}, nil
}

// Snapshot returns a copy of the observable state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() State {
	st := State{
		Attempts:    s.attempts,
		RevealLevel: s.revealLevel,
		MaxReveal:   s.maxReveal,
		Status:      s.status,
	}
	if s.card != nil {
		c := *s.card
		st.Card = &c
	}
	return st
}

// Matches reports whether guess names the card, ignoring case.
// No trimming or fuzzy matching is applied.
func Matches(guess, name string) bool {
	return fold(guess) == fold(name)
}

// fold applies locale-independent Unicode case folding.
// A Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
