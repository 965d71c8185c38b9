package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventPlayerJoined   EventType = "player_joined"
	EventCellUpdated    EventType = "cell_updated"
	EventGameStarted    EventType = "game_started"
	EventPlayerFinished EventType = "player_finished"
)

// Event is a state change pushed to a session's observers
type Event interface {
	EventType() EventType
}

// PlayerJoinedEvent is emitted when a new name joins a session
type PlayerJoinedEvent struct {
	Type        EventType `json:"type"`
	PlayerName  string    `json:"player_name"`
	PlayerCount int       `json:"player_count"`
}

// NewPlayerJoinedEvent creates a player joined event
func NewPlayerJoinedEvent(name string, count int) PlayerJoinedEvent {
	return PlayerJoinedEvent{Type: EventPlayerJoined, PlayerName: name, PlayerCount: count}
}

func (e PlayerJoinedEvent) EventType() EventType { return e.Type }

// CellUpdatedEvent is emitted when the host edits a prompt
type CellUpdatedEvent struct {
	Type  EventType `json:"type"`
	Index int       `json:"index"`
	Value string    `json:"value"`
}

// NewCellUpdatedEvent creates a cell updated event
func NewCellUpdatedEvent(index int, value string) CellUpdatedEvent {
	return CellUpdatedEvent{Type: EventCellUpdated, Index: index, Value: value}
}

func (e CellUpdatedEvent) EventType() EventType { return e.Type }

// GameStartedEvent is emitted when the round starts
type GameStartedEvent struct {
	Type      EventType `json:"type"`
	StartTime time.Time `json:"start_time"`
}

// NewGameStartedEvent creates a game started event
func NewGameStartedEvent(start time.Time) GameStartedEvent {
	return GameStartedEvent{Type: EventGameStarted, StartTime: start}
}

func (e GameStartedEvent) EventType() EventType { return e.Type }

// PlayerFinishedEvent is emitted when a player completes their grid
type PlayerFinishedEvent struct {
	Type       EventType `json:"type"`
	PlayerName string    `json:"player_name"`
	FinishTime time.Time `json:"finish_time"`
	Position   int       `json:"position"`
}

// NewPlayerFinishedEvent creates a player finished event
func NewPlayerFinishedEvent(name string, at time.Time, position int) PlayerFinishedEvent {
	return PlayerFinishedEvent{Type: EventPlayerFinished, PlayerName: name, FinishTime: at, Position: position}
}

func (e PlayerFinishedEvent) EventType() EventType { return e.Type }
