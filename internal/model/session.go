package model

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

const (
	// GridSize is the dimension of the bingo grid
	GridSize = 5
	// CellCount is the number of cells in a grid
	CellCount = GridSize * GridSize
	// FreeCellIndex is the centre cell, which is never editable
	FreeCellIndex = 12
	// FreeCellText is the fixed prompt shown in the free cell
	FreeCellText = "FREE SPACE"
	// DefaultDuration is the advisory round length in minutes
	DefaultDuration = 15
)

// SessionCode is a human-readable identifier for joining sessions
type SessionCode string

// NormalizeCode uppercases and trims a user-supplied code
func NormalizeCode(code string) SessionCode {
	return SessionCode(strings.ToUpper(strings.TrimSpace(code)))
}

// Phase represents the current phase of a session
type Phase string

const (
	PhaseLobby   Phase = "lobby"   // Host is editing prompts, players are joining
	PhaseRunning Phase = "running" // Players are filling their grids
)

// FinishRecord records a player completing their grid
type FinishRecord struct {
	Name    string
	Time    time.Time
	Elapsed time.Duration // Time from session start to finish
}

// Session is one game of bingo
type Session struct {
	Code      SessionCode
	Cells     []string // Prompt text, CellCount entries
	Players   map[string]*PlayerEntry
	Phase     Phase
	StartTime *time.Time // nil until the session starts
	Duration  int        // Minutes, advisory only
	Finished  []FinishRecord
	CreatedAt time.Time
}

// NewSession creates a session in the lobby phase with the given prompts.
// The free cell is always set to FreeCellText.
func NewSession(code SessionCode, prompts []string, duration int, now time.Time) *Session {
	cells := make([]string, CellCount)
	copy(cells, prompts)
	cells[FreeCellIndex] = FreeCellText

	return &Session{
		Code:      code,
		Cells:     cells,
		Players:   make(map[string]*PlayerEntry),
		Phase:     PhaseLobby,
		Duration:  duration,
		Finished:  []FinishRecord{},
		CreatedAt: now,
	}
}

// IsStarted returns true once the session has left the lobby
func (s *Session) IsStarted() bool {
	return s.Phase == PhaseRunning
}

// GetPlayer returns the player with the given name, or nil if not found
func (s *Session) GetPlayer(name string) *PlayerEntry {
	return s.Players[name]
}

// PlayerNames returns player names in join order
func (s *Session) PlayerNames() []string {
	names := make([]string, 0, len(s.Players))
	for name := range s.Players {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		pa, pb := s.Players[a], s.Players[b]
		if c := pa.JoinedAt.Compare(pb.JoinedAt); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return names
}

// RecordFinish appends a finish record, keeps the list ordered by elapsed
// time and returns the finisher's rank: the list length once the record is
// in. Ranks are handed out in arrival order and never collide, even when a
// later finisher sorts ahead of earlier ones.
func (s *Session) RecordFinish(name string, at time.Time) int {
	var elapsed time.Duration
	if s.StartTime != nil {
		elapsed = at.Sub(*s.StartTime)
	}
	s.Finished = append(s.Finished, FinishRecord{Name: name, Time: at, Elapsed: elapsed})
	slices.SortStableFunc(s.Finished, func(a, b FinishRecord) int {
		return cmp.Compare(a.Elapsed, b.Elapsed)
	})
	return len(s.Finished)
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Cells = slices.Clone(s.Cells)
	out.Finished = slices.Clone(s.Finished)
	if out.Finished == nil {
		out.Finished = []FinishRecord{}
	}
	if s.StartTime != nil {
		t := *s.StartTime
		out.StartTime = &t
	}
	out.Players = make(map[string]*PlayerEntry, len(s.Players))
	for name, p := range s.Players {
		out.Players[name] = p.Clone()
	}
	return &out
}

// ValidIndex returns true if the index addresses a grid cell
func ValidIndex(index int) bool {
	return index >= 0 && index < CellCount
}
