package response

import (
	"time"

	"github.com/mcoot/peoplebingo/internal/model"
)

// Player represents a player in API responses
type Player struct {
	Name       string     `json:"name"`
	Grid       []string   `json:"grid"`
	Completed  bool       `json:"completed"`
	FinishTime *time.Time `json:"finish_time"`
	JoinedAt   time.Time  `json:"joined_at"`
}

// PlayerFromModel converts a model.PlayerEntry to a response Player
func PlayerFromModel(p *model.PlayerEntry) Player {
	return Player{
		Name:       p.Name,
		Grid:       p.Grid,
		Completed:  p.Completed,
		FinishTime: p.FinishTime,
		JoinedAt:   p.JoinedAt,
	}
}

// Finisher is one entry of the ordered finish list
type Finisher struct {
	Name    string    `json:"name"`
	Time    time.Time `json:"time"`
	Elapsed float64   `json:"elapsed"` // Seconds since the round started
}

// Game represents a session in API responses
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

// GameFromModel converts a model.Session
func GameFromModel(s *model.Session) Game {
	players := make(map[string]Player, len(s.Players))
	for name, p := range s.Players {
		players[name] = PlayerFromModel(p)
	}

	finished := make([]Finisher, len(s.Finished))
	for i, f := range s.Finished {
		finished[i] = Finisher{
			Name:    f.Name,
			Time:    f.Time,
			Elapsed: f.Elapsed.Seconds(),
		}
	}

	return Game{
		Code:      string(s.Code),
		Cells:     s.Cells,
		Players:   players,
		Started:   s.IsStarted(),
		Phase:     string(s.Phase),
		Duration:  s.Duration,
		StartTime: s.StartTime,
		Finished:  finished,
		CreatedAt: s.CreatedAt,
	}
}

// CreateGameResponse is the response after creating a session
type CreateGameResponse struct {
	GameCode string `json:"game_code"`
	Game     Game   `json:"game"`
}

// GameMessageResponse pairs a status message with the session state
type GameMessageResponse struct {
	Message string `json:"message"`
	Game    Game   `json:"game"`
}

// PlayerMessageResponse pairs a status message with a player's state
type PlayerMessageResponse struct {
	Message string `json:"message"`
	Player  Player `json:"player"`
}

// FinishResponse is the response after a player finishes
type FinishResponse struct {
	Message  string `json:"message"`
	Position int    `json:"position"`
	Player   Player `json:"player"`
}

// Insight summarises the answers given for one prompt
type Insight struct {
	Index         int            `json:"index"`
	Cell          string         `json:"cell"`
	TotalEntries  int            `json:"total_entries"`
	UniqueEntries int            `json:"unique_entries"`
	NameCounts    map[string]int `json:"name_counts"`
}

// InsightsResponse lists insights in prompt order
type InsightsResponse struct {
	Insights []Insight `json:"insights"`
}

// InsightsFromModel converts model.PromptInsight values
func InsightsFromModel(in []model.PromptInsight) InsightsResponse {
	out := make([]Insight, len(in))
	for i, pi := range in {
		out[i] = Insight{
			Index:         pi.Index,
			Cell:          pi.Prompt,
			TotalEntries:  pi.TotalEntries,
			UniqueEntries: pi.UniqueEntries,
			NameCounts:    pi.NameCounts,
		}
	}
	return InsightsResponse{Insights: out}
}

// RootResponse describes the running service
type RootResponse struct {
	Message     string `json:"message"`
	ActiveGames int    `json:"active_games"`
}
