// internal/game/types.go
//
// Core type definitions for the artwork guessing game.
// Defines:
//   - Card: the card being guessed this round.
//   - Status: coarse lifecycle state of a session.
//   - Outcome: result of a single accepted guess.
//   - State: a copy of a session's observable fields.

package game

import (
	"context"
	"errors"
)

// DefaultMaxReveal is the number of reveal steps (and therefore misses)
// a round allows before it is lost.
const DefaultMaxReveal = 10

var (
	// ErrFetchFailed wraps any failure to retrieve a card or suggestions.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrInvalidGuess is returned for blank guesses or guesses outside a round.
	ErrInvalidGuess = errors.New("invalid guess")
	// ErrSuperseded is returned by StartRound when a newer round was requested
	// while this one was still fetching.
	ErrSuperseded = errors.New("round superseded")
)

// Card is the immutable card drawn for a round.
type Card struct {
	Name       string `json:"name"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
}

// CardFetcher retrieves a random card. It is the only suspension point of
// StartRound.
type CardFetcher func(ctx context.Context) (Card, error)

// Status represents the lifecycle position of a session.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Terminal reports whether the round is over.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// OutcomeKind classifies an accepted guess.
type OutcomeKind string

const (
	OutcomeContinue OutcomeKind = "continue"
	OutcomeWon      OutcomeKind = "won"
	OutcomeLost     OutcomeKind = "lost"
)

// Outcome is returned by SubmitGuess.
//   - Won:      Attempts is the number of guesses it took.
//   - Lost:     CardName is the answer.
//   - Continue: RevealLevel is the new reveal level.
type Outcome struct {
	Kind        OutcomeKind `json:"outcome"`
	Attempts    int         `json:"attempts,omitempty"`
	CardName    string      `json:"card,omitempty"`
	RevealLevel int         `json:"revealLevel,omitempty"`
}

// State is a point-in-time copy of a session.
type State struct {
	Card        *Card  `json:"-"`
	Attempts    int    `json:"attempts"`
	RevealLevel int    `json:"revealLevel"`
	MaxReveal   int    `json:"maxReveal"`
	Status      Status `json:"status"`
}
