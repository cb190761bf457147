// Package turnqueue orders combatants by initiative and walks them round by
// round.
package turnqueue

import (
	"sort"

	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/logger"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=mock/mock_observer.go -package=mockturnqueue -source=queue.go

// TurnObserver is notified as turns begin and end. Observers run in the
// order they were registered.
type TurnObserver interface {
	OnTurnStart(combatantID string)
	OnTurnEnd(combatantID string)
}

// Entry is one slot in the queue. Dexterity and Override are read by
// Initialize; Initiative is the value the queue settled on.
type Entry struct {
	ID         string `json:"id"`
	Initiative int    `json:"initiative"`
	Delayed    bool   `json:"delayed,omitempty"`

	Dexterity int  `json:"-"`
	Override  *int `json:"-"`
}

// DefaultInitiative is the initiative of a combatant that supplies no
// override: 10 plus the dexterity modifier, rounded down.
func DefaultInitiative(dexterity int) int {
	diff := dexterity - 10
	if diff < 0 {
		return 10 + (diff-1)/2
	}
	return 10 + diff/2
}

// Config configures a Queue
type Config struct {
	Logger logrus.FieldLogger
}

// Queue is an initiative-ordered turn scheduler. The zero pointer value is
// -1, meaning no turn has started. Equal initiatives keep insertion order.
type Queue struct {
	entries []*Entry
	current int

	// vacated is set when the acting combatant leaves mid-turn. The pointer
	// then sits on whoever acts next and no turn is in progress.
	vacated bool

	observers []TurnObserver
	log       logrus.FieldLogger
}

// New creates an empty queue
func New(cfg *Config) *Queue {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Queue{
		current: -1,
		log:     logger.OrDiscard(cfg.Logger).WithField("component", "turn_queue"),
	}
}

// Register adds an observer
func (q *Queue) Register(o TurnObserver) {
	q.observers = append(q.observers, o)
}

// Unregister removes an observer, reporting whether it was registered
func (q *Queue) Unregister(o TurnObserver) bool {
	for i, existing := range q.observers {
		if existing == o {
			q.observers = append(q.observers[:i], q.observers[i+1:]...)
			return true
		}
	}
	return false
}

// Initialize replaces the queue's contents and resets the pointer. Each
// entry's initiative is its override, or DefaultInitiative of its
// dexterity score.
func (q *Queue) Initialize(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	list := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			return dnderr.InvalidArgument("combatant id is required")
		}
		if _, dup := seen[e.ID]; dup {
			return dnderr.AlreadyExistsf("combatant %s is already in the queue", e.ID)
		}
		seen[e.ID] = struct{}{}
		initiative := DefaultInitiative(e.Dexterity)
		if e.Override != nil {
			initiative = *e.Override
		}
		list = append(list, &Entry{ID: e.ID, Initiative: initiative})
	}

	q.entries = list
	q.sort()
	q.current = -1
	q.vacated = false

	q.log.WithField("order", q.ids()).Debug("Turn queue initialized")
	return nil
}

func (q *Queue) sort() {
	sort.SliceStable(q.entries, func(i, j int) bool {
		return q.entries[i].Initiative > q.entries[j].Initiative
	})
}

// anchor returns the id the pointer rests on, or "" when it rests nowhere
func (q *Queue) anchor() string {
	if q.current < 0 || q.current >= len(q.entries) {
		return ""
	}
	return q.entries[q.current].ID
}

func (q *Queue) relocate(id string) {
	if id == "" {
		return
	}
	q.current = q.index(id)
}

func (q *Queue) index(id string) int {
	for i, e := range q.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Add inserts a combatant. When it lands ahead of the acting combatant the
// pointer moves with the acting combatant, so nobody is skipped or repeated
// this round.
func (q *Queue) Add(id string, initiative int) error {
	if id == "" {
		return dnderr.InvalidArgument("combatant id is required")
	}
	if q.index(id) >= 0 {
		return dnderr.AlreadyExistsf("combatant %s is already in the queue", id)
	}

	held := q.anchor()
	pastEnd := q.vacated && q.current >= len(q.entries)
	q.entries = append(q.entries, &Entry{ID: id, Initiative: initiative})
	q.sort()
	q.relocate(held)
	if pastEnd {
		q.current = len(q.entries)
	}

	q.log.WithFields(logrus.Fields{
		"combatant_id": id,
		"initiative":   initiative,
	}).Debug("Combatant added to turn queue")
	return nil
}

// Remove takes a combatant out of the queue. Removing an earlier combatant
// shifts the pointer down so the acting combatant stays current. Removing
// the acting combatant ends its turn without notifying observers; the next
// Advance starts whoever followed it.
func (q *Queue) Remove(id string) bool {
	idx := q.index(id)
	if idx < 0 {
		return false
	}

	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)

	switch {
	case len(q.entries) == 0:
		q.current = -1
		q.vacated = false
	case q.current < 0:
	case idx < q.current:
		q.current--
	case idx == q.current && !q.vacated:
		q.vacated = true
	}

	q.log.WithField("combatant_id", id).Debug("Combatant removed from turn queue")
	return true
}

// Advance ends the current turn and starts the next one. wrapped is true
// when the pointer went past the last entry, which begins a new round.
func (q *Queue) Advance() (previous, next string, wrapped bool) {
	if len(q.entries) == 0 {
		return "", "", false
	}

	switch {
	case q.current < 0:
		q.current = 0
	case q.vacated:
		q.vacated = false
		if q.current >= len(q.entries) {
			q.current = 0
			wrapped = true
		}
	default:
		previous = q.entries[q.current].ID
		q.notifyEnd(previous)
		q.current = (q.current + 1) % len(q.entries)
		wrapped = q.current == 0
	}

	next = q.entries[q.current].ID
	q.startTurn()

	q.log.WithFields(logrus.Fields{
		"previous": previous,
		"next":     next,
		"wrapped":  wrapped,
	}).Debug("Turn advanced")
	return previous, next, wrapped
}

// startTurn notifies observers for the entry at the pointer. A delayed
// entry keeps its flag until every observer has seen the start, so they
// can ask IsDelayed.
func (q *Queue) startTurn() {
	e := q.entries[q.current]
	for _, o := range q.observers {
		o.OnTurnStart(e.ID)
	}
	e.Delayed = false
}

func (q *Queue) notifyEnd(id string) {
	for _, o := range q.observers {
		o.OnTurnEnd(id)
	}
}

// Delay moves the acting combatant to the end of the current round and
// starts the next combatant's turn. Its initiative drops to the lowest in
// the queue so later re-sorts keep it there. No end notification is sent
// for the delaying combatant; it has not finished its turn.
func (q *Queue) Delay(id string) (next string, err error) {
	cur, ok := q.Current()
	if !ok || cur != id {
		return "", dnderr.NotYourTurn(id)
	}
	last := len(q.entries) - 1
	if q.current == last {
		return "", dnderr.FailedPreconditionf("combatant %s already acts last this round", id)
	}

	e := q.entries[q.current]
	e.Delayed = true
	e.Initiative = min(e.Initiative, q.entries[last].Initiative)

	q.entries = append(q.entries[:q.current], q.entries[q.current+1:]...)
	q.entries = append(q.entries, e)

	next = q.entries[q.current].ID
	q.startTurn()

	q.log.WithFields(logrus.Fields{
		"combatant_id": id,
		"next":         next,
	}).Debug("Combatant delayed")
	return next, nil
}

// RecomputeInitiative changes a combatant's initiative and re-sorts,
// keeping the pointer on the same combatant.
func (q *Queue) RecomputeInitiative(id string, initiative int) error {
	idx := q.index(id)
	if idx < 0 {
		return dnderr.NotFoundf("combatant %s is not in the queue", id)
	}

	held := q.anchor()
	q.entries[idx].Initiative = initiative
	q.sort()
	q.relocate(held)
	return nil
}

// Current returns the acting combatant. ok is false before the first
// Advance and after the acting combatant was removed.
func (q *Queue) Current() (id string, ok bool) {
	if q.vacated {
		return "", false
	}
	id = q.anchor()
	return id, id != ""
}

// IsStartOfRound reports whether the first combatant of the round is acting
func (q *Queue) IsStartOfRound() bool {
	return q.current == 0 && !q.vacated
}

// WillWrap reports whether the next Advance begins a new round
func (q *Queue) WillWrap() bool {
	switch {
	case len(q.entries) == 0 || q.current < 0:
		return false
	case q.vacated:
		return q.current >= len(q.entries)
	default:
		return q.current == len(q.entries)-1
	}
}

// Initiative returns a combatant's initiative
func (q *Queue) Initiative(id string) (int, bool) {
	if idx := q.index(id); idx >= 0 {
		return q.entries[idx].Initiative, true
	}
	return 0, false
}

// IsDelayed reports whether a combatant delayed and has not restarted yet
func (q *Queue) IsDelayed(id string) bool {
	if idx := q.index(id); idx >= 0 {
		return q.entries[idx].Delayed
	}
	return false
}

// Has reports whether a combatant is queued
func (q *Queue) Has(id string) bool {
	return q.index(id) >= 0
}

// Order returns a copy of the entries in turn order
func (q *Queue) Order() []Entry {
	out := make([]Entry, len(q.entries))
	for i, e := range q.entries {
		out[i] = *e
	}
	return out
}

func (q *Queue) ids() []string {
	out := make([]string, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.ID
	}
	return out
}

// Len returns the number of queued combatants
func (q *Queue) Len() int {
	return len(q.entries)
}

// Clear empties the queue. Observers stay registered.
func (q *Queue) Clear() {
	q.entries = nil
	q.current = -1
	q.vacated = false
}
