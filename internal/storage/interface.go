package storage

import (
	"context"

	"github.com/mcoot/peoplebingo/internal/model"
)

// Storage defines the interface for the session registry.
// Implementations hand out and accept copies, never shared references.
type Storage interface {
	// CreateSession inserts a new session, failing with model.ErrSessionExists
	// if the code is already taken. The check and insert are atomic.
	CreateSession(ctx context.Context, session *model.Session) error
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error)
	SessionExists(ctx context.Context, code model.SessionCode) (bool, error)
	CountSessions(ctx context.Context) (int, error)
}
