package model

import (
	"slices"
	"strings"
	"time"
)

// PlayerEntry is a player's state within one session
type PlayerEntry struct {
	Name       string
	Grid       []string // Answers, index-aligned with Session.Cells
	Completed  bool
	FinishTime *time.Time // Set once, when Completed becomes true
	JoinedAt   time.Time
}

// NewPlayerEntry creates a player with an empty grid
func NewPlayerEntry(name string, now time.Time) *PlayerEntry {
	return &PlayerEntry{
		Name:     name,
		Grid:     make([]string, CellCount),
		JoinedAt: now,
	}
}

// MissingCells returns the indices, other than the free cell, whose answer
// is blank or whitespace-only
func (p *PlayerEntry) MissingCells() []int {
	var missing []int
	for i, answer := range p.Grid {
		if i == FreeCellIndex {
			continue
		}
		if strings.TrimSpace(answer) == "" {
			missing = append(missing, i)
		}
	}
	return missing
}

// MarkCompleted flags the player as finished at the given time
func (p *PlayerEntry) MarkCompleted(at time.Time) {
	p.Completed = true
	p.FinishTime = &at
}

// Clone returns a deep copy of the player
func (p *PlayerEntry) Clone() *PlayerEntry {
	if p == nil {
		return nil
	}
	out := *p
	out.Grid = slices.Clone(p.Grid)
	if p.FinishTime != nil {
		t := *p.FinishTime
		out.FinishTime = &t
	}
	return &out
}
