package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/peoplebingo/internal/dependencies/clock"
	"github.com/mcoot/peoplebingo/internal/dependencies/random"
	"github.com/mcoot/peoplebingo/internal/model"
	"github.com/mcoot/peoplebingo/internal/storage"
)

const (
	// CodeLength is the length of generated session codes
	CodeLength = 6
	// CodeAlphabet is the characters used in session codes
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds code generation against a broken random source
	maxCodeAttempts = 1000
)

// Publisher delivers session events to live observers.
// Publish must not block and must not fail the caller.
type Publisher interface {
	Publish(code model.SessionCode, event model.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.SessionCode, model.Event) {}

// Controller manages the session registry and the session state machine.
// Every operation on a session runs under that session's mutex, covering
// load, validation, mutation, save and event publication.
type Controller struct {
	storage   storage.Storage
	publisher Publisher
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
	locks     *lockTable
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	publisher Publisher,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Controller{
		storage:   storage,
		publisher: publisher,
		clock:     clock,
		random:    random,
		logger:    logger.With(slog.String("component", "session")),
		locks:     newLockTable(),
	}
}

// CreateSession creates a new session in the lobby phase with the given
// prompts and advisory duration in minutes
func (c *Controller) CreateSession(ctx context.Context, prompts []string, duration int) (*model.Session, error) {
	if len(prompts) != model.CellCount {
		return nil, fmt.Errorf("%w: got %d prompts, want %d", model.ErrInvalidPrompts, len(prompts), model.CellCount)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := model.SessionCode(c.random.String(CodeLength, CodeAlphabet))
		if len(code) != CodeLength {
			continue
		}

		// The lock must exist before the session becomes visible
		c.locks.ensure(code)

		session := model.NewSession(code, prompts, duration, c.clock.Now())
		err := c.storage.CreateSession(ctx, session)
		if errors.Is(err, model.ErrSessionExists) {
			continue
		}
		if err != nil {
			c.logger.Error("failed to save session",
				slog.String("session", string(code)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}

		c.logger.Info("session created",
			slog.String("session", string(code)),
			slog.Int("duration", duration),
		)
		return session, nil
	}

	return nil, fmt.Errorf("could not allocate a session code after %d attempts", maxCodeAttempts)
}

// GetSession returns a snapshot of the session
func (c *Controller) GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	return c.read(ctx, code)
}

// SessionExists reports whether a session with the code is live
func (c *Controller) SessionExists(ctx context.Context, code model.SessionCode) (bool, error) {
	return c.storage.SessionExists(ctx, code)
}

// CountSessions returns the number of live sessions
func (c *Controller) CountSessions(ctx context.Context) (int, error) {
	return c.storage.CountSessions(ctx)
}

// JoinSession adds a player to the session. Joining with a name that is
// already present is a no-op; joined reports whether a new entry was made.
func (c *Controller) JoinSession(ctx context.Context, code model.SessionCode, name string) (session *model.Session, joined bool, err error) {
	session, err = c.mutate(ctx, code, func(s *model.Session) (model.Event, error) {
		if s.GetPlayer(name) != nil {
			return nil, nil
		}
		s.Players[name] = model.NewPlayerEntry(name, c.clock.Now())
		joined = true
		return model.NewPlayerJoinedEvent(name, len(s.Players)), nil
	})
	if err != nil {
		return nil, false, err
	}

	if joined {
		c.logger.Info("player joined",
			slog.String("session", string(code)),
			slog.String("player", name),
			slog.Int("player_count", len(session.Players)),
		)
	}
	return session, joined, nil
}

// EditPromptCell replaces the prompt text at index while the session is in
// the lobby
func (c *Controller) EditPromptCell(ctx context.Context, code model.SessionCode, index int, text string) (*model.Session, error) {
	return c.mutate(ctx, code, func(s *model.Session) (model.Event, error) {
		if !model.ValidIndex(index) {
			return nil, model.ErrInvalidIndex
		}
		if index == model.FreeCellIndex {
			return nil, model.ErrImmutableCell
		}
		if s.Phase != model.PhaseLobby {
			return nil, model.ErrInvalidPhase
		}
		s.Cells[index] = text
		return model.NewCellUpdatedEvent(index, text), nil
	})
}

// StartSession moves the session from the lobby to running and stamps the
// start time
func (c *Controller) StartSession(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	session, err := c.mutate(ctx, code, func(s *model.Session) (model.Event, error) {
		if s.Phase != model.PhaseLobby {
			return nil, model.ErrAlreadyStarted
		}
		if len(s.Players) == 0 {
			return nil, model.ErrNoPlayers
		}
		now := c.clock.Now()
		s.Phase = model.PhaseRunning
		s.StartTime = &now
		return model.NewGameStartedEvent(now), nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("session started",
		slog.String("session", string(code)),
		slog.Int("player_count", len(session.Players)),
		slog.Any("players", session.PlayerNames()),
	)
	return session, nil
}

// UpdatePlayerCell writes an answer into a player's personal grid.
// Personal edits are not broadcast.
func (c *Controller) UpdatePlayerCell(ctx context.Context, code model.SessionCode, name string, index int, value string) (*model.PlayerEntry, error) {
	session, err := c.mutate(ctx, code, func(s *model.Session) (model.Event, error) {
		if s.Phase != model.PhaseRunning {
			return nil, model.ErrNotStarted
		}
		player := s.GetPlayer(name)
		if player == nil {
			return nil, model.ErrPlayerNotFound
		}
		if player.Completed {
			return nil, model.ErrAlreadyCompleted
		}
		if !model.ValidIndex(index) {
			return nil, model.ErrInvalidIndex
		}
		player.Grid[index] = value
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return session.GetPlayer(name), nil
}

// FinishSession marks the player's grid complete and returns their rank:
// the number of finishers once this player is recorded
func (c *Controller) FinishSession(ctx context.Context, code model.SessionCode, name string) (int, *model.PlayerEntry, error) {
	var rank int
	session, err := c.mutate(ctx, code, func(s *model.Session) (model.Event, error) {
		player := s.GetPlayer(name)
		if player == nil {
			return nil, model.ErrPlayerNotFound
		}
		if player.Completed {
			return nil, model.ErrAlreadyCompleted
		}
		if missing := player.MissingCells(); len(missing) > 0 {
			return nil, &model.IncompleteGridError{Missing: missing}
		}
		if s.StartTime == nil {
			return nil, model.ErrNotStarted
		}

		now := c.clock.Now()
		player.MarkCompleted(now)
		rank = s.RecordFinish(name, now)
		return model.NewPlayerFinishedEvent(name, now, rank), nil
	})
	if err != nil {
		return 0, nil, err
	}

	c.logger.Info("player finished",
		slog.String("session", string(code)),
		slog.String("player", name),
		slog.Int("position", rank),
	)
	return rank, session.GetPlayer(name), nil
}

// read loads a snapshot of the session under its lock
func (c *Controller) read(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	lock, ok := c.locks.get(code)
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	return c.storage.GetSession(ctx, code)
}

// mutate runs fn against the session under its lock. If fn succeeds the
// session is saved and the returned event, if any, is published before the
// lock is released, so observers see events in operation order. If fn
// fails nothing is saved or published.
func (c *Controller) mutate(ctx context.Context, code model.SessionCode, fn func(*model.Session) (model.Event, error)) (*model.Session, error) {
	lock, ok := c.locks.get(code)
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, code)
	if err != nil {
		return nil, err
	}

	event, err := fn(session)
	if err != nil {
		return nil, err
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session", string(code)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if event != nil {
		c.publisher.Publish(code, event)
	}

	return session.Clone(), nil
}

// ControllerInterface is the set of session operations exposed to transports
type ControllerInterface interface {
	CreateSession(ctx context.Context, prompts []string, duration int) (*model.Session, error)
	GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error)
	SessionExists(ctx context.Context, code model.SessionCode) (bool, error)
	CountSessions(ctx context.Context) (int, error)
	JoinSession(ctx context.Context, code model.SessionCode, name string) (*model.Session, bool, error)
	EditPromptCell(ctx context.Context, code model.SessionCode, index int, text string) (*model.Session, error)
	StartSession(ctx context.Context, code model.SessionCode) (*model.Session, error)
	UpdatePlayerCell(ctx context.Context, code model.SessionCode, name string, index int, value string) (*model.PlayerEntry, error)
	FinishSession(ctx context.Context, code model.SessionCode, name string) (int, *model.PlayerEntry, error)
}

var _ ControllerInterface = (*Controller)(nil)
