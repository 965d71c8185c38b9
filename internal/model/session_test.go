package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prompts() []string {
	out := make([]string, CellCount)
	for i := range out {
		out[i] = fmt.Sprintf("p%d", i)
	}
	return out
}

func TestNewSessionForcesFreeCell(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSession("ABC123", prompts(), 15, now)

	assert.Len(t, s.Cells, CellCount)
	assert.Equal(t, FreeCellText, s.Cells[FreeCellIndex])
	assert.Equal(t, "p0", s.Cells[0])
	assert.Equal(t, PhaseLobby, s.Phase)
	assert.False(t, s.IsStarted())
	assert.NotNil(t, s.Finished)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, SessionCode("ABC123"), NormalizeCode(" abc123 "))
	assert.Equal(t, SessionCode("ABC123"), NormalizeCode("ABC123"))
}

func TestPlayerNamesInJoinOrder(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSession("ABC123", prompts(), 15, base)
	s.Players["zed"] = NewPlayerEntry("zed", base)
	s.Players["amy"] = NewPlayerEntry("amy", base.Add(time.Second))
	s.Players["bob"] = NewPlayerEntry("bob", base)

	assert.Equal(t, []string{"bob", "zed", "amy"}, s.PlayerNames())
}

func TestRecordFinishKeepsElapsedOrder(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSession("ABC123", prompts(), 15, start)
	s.Phase = PhaseRunning
	s.StartTime = &start

	assert.Equal(t, 1, s.RecordFinish("A", start.Add(120*time.Second)))
	assert.Equal(t, 2, s.RecordFinish("B", start.Add(90*time.Second)))
	assert.Equal(t, 3, s.RecordFinish("C", start.Add(150*time.Second)))

	names := make([]string, 0, len(s.Finished))
	for _, rec := range s.Finished {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"B", "A", "C"}, names)
}

func TestRecordFinishTiesKeepArrivalOrder(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSession("ABC123", prompts(), 15, start)
	s.StartTime = &start

	at := start.Add(time.Minute)
	assert.Equal(t, 1, s.RecordFinish("first", at))
	assert.Equal(t, 2, s.RecordFinish("second", at))
}

func TestMissingCells(t *testing.T) {
	p := NewPlayerEntry("Ann", time.Now())
	assert.Len(t, p.MissingCells(), CellCount-1)
	assert.NotContains(t, p.MissingCells(), FreeCellIndex)

	for i := range p.Grid {
		p.Grid[i] = "x"
	}
	p.Grid[FreeCellIndex] = ""
	p.Grid[3] = " \t"
	assert.Equal(t, []int{3}, p.MissingCells())
}

func TestCloneIsDeep(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSession("ABC123", prompts(), 15, start)
	s.StartTime = &start
	s.Players["Ann"] = NewPlayerEntry("Ann", start)
	s.RecordFinish("Ann", start.Add(time.Minute))

	c := s.Clone()
	c.Cells[0] = "changed"
	c.Players["Ann"].Grid[0] = "changed"
	c.Finished[0].Name = "changed"
	*c.StartTime = start.Add(time.Hour)
	delete(c.Players, "Ann")

	require.Contains(t, s.Players, "Ann")
	assert.Equal(t, "p0", s.Cells[0])
	assert.Equal(t, "", s.Players["Ann"].Grid[0])
	assert.Equal(t, "Ann", s.Finished[0].Name)
	assert.Equal(t, start, *s.StartTime)
}

func TestIncompleteGridErrorUnwraps(t *testing.T) {
	var err error = &IncompleteGridError{Missing: []int{1, 2}}
	assert.ErrorIs(t, err, ErrIncompleteGrid)
	assert.Contains(t, err.Error(), "2 blank cells")
}

func TestValidIndex(t *testing.T) {
	assert.True(t, ValidIndex(0))
	assert.True(t, ValidIndex(24))
	assert.False(t, ValidIndex(-1))
	assert.False(t, ValidIndex(25))
}
