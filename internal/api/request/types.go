package request

import (
	"strings"

	"github.com/mcoot/peoplebingo/internal/api/apierr"
	"github.com/mcoot/peoplebingo/internal/model"
)

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Duration *int `json:"duration,omitempty"`
}

// DurationOrDefault returns the requested duration, or the default if unset
func (r CreateSessionRequest) DurationOrDefault() int {
	if r.Duration == nil {
		return model.DefaultDuration
	}
	return *r.Duration
}

// Validate checks the request
func (r CreateSessionRequest) Validate() error {
	if r.Duration != nil && *r.Duration < 0 {
		return apierr.NewInvalidRequestError("duration must not be negative")
	}
	return nil
}

// JoinSessionRequest is the request body for joining a session
type JoinSessionRequest struct {
	GameCode   string `json:"game_code"`
	PlayerName string `json:"player_name"`
}

// Validate checks the request
func (r JoinSessionRequest) Validate() error {
	if err := requireCode(r.GameCode); err != nil {
		return err
	}
	return requireName(r.PlayerName)
}

// UpdateCellRequest is the request body for editing a prompt
type UpdateCellRequest struct {
	GameCode string  `json:"game_code"`
	Index    *int    `json:"index"`
	Value    *string `json:"value"`
}

// Validate checks the request
func (r UpdateCellRequest) Validate() error {
	if err := requireCode(r.GameCode); err != nil {
		return err
	}
	if r.Index == nil {
		return apierr.NewInvalidRequestError("index is required")
	}
	if r.Value == nil {
		return apierr.NewInvalidRequestError("value is required")
	}
	return nil
}

// StartSessionRequest is the request body for starting a session
type StartSessionRequest struct {
	GameCode string `json:"game_code"`
}

// Validate checks the request
func (r StartSessionRequest) Validate() error {
	return requireCode(r.GameCode)
}

// UpdatePlayerCellRequest is the request body for filling in a player's grid
type UpdatePlayerCellRequest struct {
	GameCode   string  `json:"game_code"`
	PlayerName string  `json:"player_name"`
	CellIndex  *int    `json:"cell_index"`
	NameValue  *string `json:"name_value"`
}

// Validate checks the request
func (r UpdatePlayerCellRequest) Validate() error {
	if err := requireCode(r.GameCode); err != nil {
		return err
	}
	if err := requireName(r.PlayerName); err != nil {
		return err
	}
	if r.CellIndex == nil {
		return apierr.NewInvalidRequestError("cell_index is required")
	}
	if r.NameValue == nil {
		return apierr.NewInvalidRequestError("name_value is required")
	}
	return nil
}

// FinishSessionRequest is the request body for declaring a grid complete
type FinishSessionRequest struct {
	GameCode   string `json:"game_code"`
	PlayerName string `json:"player_name"`
}

// Validate checks the request
func (r FinishSessionRequest) Validate() error {
	if err := requireCode(r.GameCode); err != nil {
		return err
	}
	return requireName(r.PlayerName)
}

func requireCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return apierr.NewInvalidRequestError("game_code is required")
	}
	return nil
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apierr.NewInvalidRequestError("player_name is required")
	}
	return nil
}
