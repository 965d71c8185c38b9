package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Game:
		o.printGame(v)
	case CreateResult:
		o.printf("Game code: %s\n", v.GameCode)
		o.printGame(v.Game)
	case GameMessage:
		o.printf("%s\n", v.Message)
		o.printGame(v.Game)
	case PlayerMessage:
		o.printf("%s\n", v.Message)
		o.printPlayer(v.Player)
	case FinishResult:
		o.printf("%s\n", v.Message)
		o.printf("Position: %d\n", v.Position)
	case Insights:
		o.printInsights(v)
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	case RootResult:
		o.printf("%s\n", v.Message)
		o.printf("Active games: %d\n", v.ActiveGames)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// Player response type (matches API)
type Player struct {
	Name       string     `json:"name"`
	Grid       []string   `json:"grid"`
	Completed  bool       `json:"completed"`
	FinishTime *time.Time `json:"finish_time"`
	JoinedAt   time.Time  `json:"joined_at"`
}

// Finisher response type
type Finisher struct {
	Name    string    `json:"name"`
	Time    time.Time `json:"time"`
	Elapsed float64   `json:"elapsed"`
}

// Game response type
type Game struct {
	Code      string            `json:"code"`
	Cells     []string          `json:"cells"`
	Players   map[string]Player `json:"players"`
	Started   bool              `json:"started"`
	Phase     string            `json:"phase"`
	Duration  int               `json:"duration"`
	StartTime *time.Time        `json:"start_time"`
	Finished  []Finisher        `json:"finished"`
	CreatedAt time.Time         `json:"created_at"`
}

// CreateResult response type
type CreateResult struct {
	GameCode string `json:"game_code"`
	Game     Game   `json:"game"`
}

// GameMessage response type
type GameMessage struct {
	Message string `json:"message"`
	Game    Game   `json:"game"`
}

// PlayerMessage response type
type PlayerMessage struct {
	Message string `json:"message"`
	Player  Player `json:"player"`
}

// FinishResult response type
type FinishResult struct {
	Message  string `json:"message"`
	Position int    `json:"position"`
	Player   Player `json:"player"`
}

// Insight response type
type Insight struct {
	Index         int            `json:"index"`
	Cell          string         `json:"cell"`
	TotalEntries  int            `json:"total_entries"`
	UniqueEntries int            `json:"unique_entries"`
	NameCounts    map[string]int `json:"name_counts"`
}

// Insights response type
type Insights struct {
	Insights []Insight `json:"insights"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// RootResult response type
type RootResult struct {
	Message     string `json:"message"`
	ActiveGames int    `json:"active_games"`
}

func (o *Output) printGame(g Game) {
	o.printf("Game: %s\n", g.Code)
	o.printf("Phase: %s\n", g.Phase)
	o.printf("Duration: %d min\n", g.Duration)
	if g.StartTime != nil {
		o.printf("Started: %s\n", g.StartTime.Format(time.RFC3339))
	}

	o.printf("\nPrompts:\n")
	o.printGrid(g.Cells)

	names := make([]string, 0, len(g.Players))
	for name := range g.Players {
		names = append(names, name)
	}
	sort.Strings(names)
	o.printf("\nPlayers (%d):\n", len(names))
	for _, name := range names {
		p := g.Players[name]
		status := ""
		if p.Completed {
			status = " [done]"
		}
		o.printf("  - %s (%d/24 filled)%s\n", name, filledCount(p.Grid), status)
	}

	if len(g.Finished) > 0 {
		o.printf("\nFinished:\n")
		for i, f := range g.Finished {
			o.printf("  %d. %s (%s)\n", i+1, f.Name, formatElapsed(f.Elapsed))
		}
	}
}

func (o *Output) printPlayer(p Player) {
	o.printf("Player: %s\n", p.Name)
	o.printf("Completed: %t\n", p.Completed)
	o.printGrid(p.Grid)
}

func (o *Output) printGrid(cells []string) {
	for i, cell := range cells {
		if cell == "" {
			cell = "."
		}
		o.printf("  [%2d] %s\n", i, cell)
	}
}

func (o *Output) printInsights(in Insights) {
	for _, ins := range in.Insights {
		o.printf("[%2d] %s\n", ins.Index, ins.Cell)
		o.printf("     %d entries, %d unique\n", ins.TotalEntries, ins.UniqueEntries)

		values := make([]string, 0, len(ins.NameCounts))
		for v := range ins.NameCounts {
			values = append(values, v)
		}
		sort.Slice(values, func(i, j int) bool {
			ci, cj := ins.NameCounts[values[i]], ins.NameCounts[values[j]]
			if ci != cj {
				return ci > cj
			}
			return values[i] < values[j]
		})
		for _, v := range values {
			o.printf("     - %s: %d\n", v, ins.NameCounts[v])
		}
	}
}

func filledCount(grid []string) int {
	n := 0
	for i, v := range grid {
		if i != 12 && strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

func formatElapsed(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}
