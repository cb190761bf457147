package events

// TurnEvent is emitted when a turn starts, ends or is delayed
type TurnEvent struct {
	BaseEvent
	Initiative int      `json:"initiative"`
	Expired    []string `json:"expired,omitempty"`
}

// RoundEvent is emitted when the turn order wraps
type RoundEvent struct {
	BaseEvent
	Order []string `json:"order"`
}

// ActionEvent is emitted after an action or reaction resolves
type ActionEvent struct {
	BaseEvent
	ActionID string         `json:"action_id"`
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
}

// ReadyEvent is emitted when an action is readied and when it fires
type ReadyEvent struct {
	BaseEvent
	ActionID  string `json:"action_id"`
	Condition string `json:"condition"`
}

// MoveEvent is emitted after a combatant moves
type MoveEvent struct {
	BaseEvent
	FromX float64 `json:"from_x"`
	FromZ float64 `json:"from_z"`
	ToX   float64 `json:"to_x"`
	ToZ   float64 `json:"to_z"`
	Cost  float64 `json:"cost"`
}

// HealthEvent is emitted for damage, healing and death
type HealthEvent struct {
	BaseEvent
	Amount     int    `json:"amount"`
	DamageType string `json:"damage_type,omitempty"`
	HP         int    `json:"hp"`
	MaxHP      int    `json:"max_hp"`
}

// EffectEvent is emitted when a status effect is applied, removed or expires
type EffectEvent struct {
	BaseEvent
	Effect   string `json:"effect"`
	Duration int    `json:"duration"`
}

// PerceptionEvent is emitted after an active perception check
type PerceptionEvent struct {
	BaseEvent
	Success    bool    `json:"success"`
	Margin     float64 `json:"margin"`
	Visibility string  `json:"visibility"`
}

// CombatEvent covers lifecycle and roster changes
type CombatEvent struct {
	BaseEvent
	Winner string `json:"winner,omitempty"`
}
