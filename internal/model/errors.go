package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session code already in use")
	ErrInvalidPhase    = errors.New("operation not allowed in current phase")
	ErrAlreadyStarted  = errors.New("session already started")
	ErrNotStarted      = errors.New("session not started yet")
	ErrNoPlayers       = errors.New("no players in session")

	// Cell errors
	ErrInvalidIndex  = errors.New("invalid cell index")
	ErrImmutableCell = errors.New("free space cannot be edited")

	// Player errors
	ErrPlayerNotFound   = errors.New("player not found")
	ErrAlreadyCompleted = errors.New("player already finished")
	ErrIncompleteGrid   = errors.New("not all cells are filled")

	// Prompt errors
	ErrInvalidPrompts = errors.New("invalid prompt list")
)

// IncompleteGridError reports which cells still need an answer
type IncompleteGridError struct {
	Missing []int
}

func (e *IncompleteGridError) Error() string {
	return fmt.Sprintf("%s: %d blank cells %v", ErrIncompleteGrid, len(e.Missing), e.Missing)
}

// Unwrap allows errors.Is(err, ErrIncompleteGrid)
func (e *IncompleteGridError) Unwrap() error {
	return ErrIncompleteGrid
}
