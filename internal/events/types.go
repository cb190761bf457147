package events

// EventType represents the type of combat event
type EventType string

// Event is the base interface for all combat events
type Event interface {
	GetType() EventType
	GetEncounterID() string
	GetActorID() string
	GetTargetID() string
	GetRound() int
	IsCancelled() bool
	Cancel()
}

// BaseEvent provides common implementation for all events
type BaseEvent struct {
	Type        EventType `json:"type"`
	EncounterID string    `json:"encounter_id"`
	ActorID     string    `json:"actor_id,omitempty"`
	TargetID    string    `json:"target_id,omitempty"`
	Round       int       `json:"round"`
	Cancelled   bool      `json:"-"`
}

func (e *BaseEvent) GetType() EventType     { return e.Type }
func (e *BaseEvent) GetEncounterID() string { return e.EncounterID }
func (e *BaseEvent) GetActorID() string     { return e.ActorID }
func (e *BaseEvent) GetTargetID() string    { return e.TargetID }
func (e *BaseEvent) GetRound() int          { return e.Round }
func (e *BaseEvent) IsCancelled() bool      { return e.Cancelled }
func (e *BaseEvent) Cancel()                { e.Cancelled = true }
