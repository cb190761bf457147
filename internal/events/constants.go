package events

// Event type constants
const (
	// Lifecycle
	EventTypeCombatStarted EventType = "combat_started"
	EventTypeCombatEnded   EventType = "combat_ended"
	EventTypeRoundStarted  EventType = "round_started"

	// Turns
	EventTypeTurnStart      EventType = "turn_start"
	EventTypeTurnEnd        EventType = "turn_end"
	EventTypeTurnDelayed    EventType = "turn_delayed"
	EventTypeActionReadied  EventType = "action_readied"
	EventTypeReadyTriggered EventType = "ready_triggered"

	// Actions
	EventTypeActionTaken EventType = "action_taken"
	EventTypeReaction    EventType = "reaction"
	EventTypeMove        EventType = "move"

	// Health
	EventTypeDamage EventType = "damage"
	EventTypeHeal   EventType = "heal"
	EventTypeDeath  EventType = "death"

	// Effects
	EventTypeEffectApplied EventType = "effect_applied"
	EventTypeEffectRemoved EventType = "effect_removed"
	EventTypeEffectExpired EventType = "effect_expired"

	// Senses
	EventTypePerception EventType = "perception"

	// Roster
	EventTypeCombatantJoined EventType = "combatant_joined"
	EventTypeCombatantLeft   EventType = "combatant_left"
)

// Priority levels for listener order
const (
	PriorityState     = 0   // Bookkeeping that later listeners rely on
	PriorityRules     = 100 // Readied actions, reactions
	PriorityNarrative = 300 // Logs and narration
	PriorityDisplay   = 500 // Animation and presentation
)
