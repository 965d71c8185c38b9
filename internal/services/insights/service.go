package insights

import (
	"context"
	"strings"

	"github.com/mcoot/peoplebingo/internal/model"
)

// SessionReader loads session snapshots
type SessionReader interface {
	GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error)
}

// Service computes per-prompt answer statistics for a session
type Service struct {
	sessions SessionReader
}

// New creates a new insights Service
func New(sessions SessionReader) *Service {
	return &Service{sessions: sessions}
}

// GetInsights computes insights from the current state of the session
func (s *Service) GetInsights(ctx context.Context, code model.SessionCode) ([]model.PromptInsight, error) {
	session, err := s.sessions.GetSession(ctx, code)
	if err != nil {
		return nil, err
	}
	return Compute(session), nil
}

// Compute returns one insight per prompt, in index order, skipping the free
// cell. Answers are trimmed and blank answers are ignored.
func Compute(session *model.Session) []model.PromptInsight {
	insights := make([]model.PromptInsight, 0, len(session.Cells)-1)

	for idx, prompt := range session.Cells {
		if idx == model.FreeCellIndex {
			continue
		}

		insight := model.PromptInsight{
			Index:      idx,
			Prompt:     prompt,
			NameCounts: make(map[string]int),
		}
		for _, player := range session.Players {
			if idx >= len(player.Grid) {
				continue
			}
			answer := strings.TrimSpace(player.Grid[idx])
			if answer == "" {
				continue
			}
			insight.TotalEntries++
			insight.NameCounts[answer]++
		}
		insight.UniqueEntries = len(insight.NameCounts)

		insights = append(insights, insight)
	}

	return insights
}
