package events

import (
	"sort"
	"sync"

	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/logger"
	"github.com/sirupsen/logrus"
)

// EventListener processes events
type EventListener interface {
	HandleEvent(event Event) error
	Priority() int
	ID() string
}

// ListenerFunc adapts a function to an EventListener
type ListenerFunc struct {
	Name   string
	Order  int
	Handle func(Event) error
}

func (l *ListenerFunc) ID() string                    { return l.Name }
func (l *ListenerFunc) Priority() int                 { return l.Order }
func (l *ListenerFunc) HandleEvent(event Event) error { return l.Handle(event) }

// Bus manages event distribution. A nil *Bus drops every event.
type Bus struct {
	listeners map[EventType][]EventListener
	wildcard  []EventListener
	mu        sync.RWMutex
	log       logrus.FieldLogger
}

// NewBus creates a new event bus
func NewBus(log logrus.FieldLogger) *Bus {
	return &Bus{
		listeners: make(map[EventType][]EventListener),
		log:       logger.OrDiscard(log).WithField("component", "event_bus"),
	}
}

func sortByPriority(listeners []EventListener) {
	sort.SliceStable(listeners, func(i, j int) bool {
		return listeners[i].Priority() < listeners[j].Priority()
	})
}

// Subscribe adds a listener for specific event types
func (b *Bus) Subscribe(eventType EventType, listener EventListener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners[eventType] = append(b.listeners[eventType], listener)
	sortByPriority(b.listeners[eventType])

	b.log.WithFields(logrus.Fields{
		"listener":   listener.ID(),
		"event_type": eventType,
		"priority":   listener.Priority(),
	}).Debug("Subscribed listener")
}

// SubscribeAll adds a listener that receives every event
func (b *Bus) SubscribeAll(listener EventListener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.wildcard = append(b.wildcard, listener)
	sortByPriority(b.wildcard)

	b.log.WithField("listener", listener.ID()).Debug("Subscribed listener to all events")
}

// Unsubscribe removes a listener from one event type, or from the wildcard
// list when eventType is empty
func (b *Bus) Unsubscribe(eventType EventType, listenerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.listeners[eventType]
	if eventType == "" {
		list = b.wildcard
	}

	kept := list[:0]
	for _, l := range list {
		if l.ID() != listenerID {
			kept = append(kept, l)
		}
	}

	if eventType == "" {
		b.wildcard = kept
	} else {
		b.listeners[eventType] = kept
	}
}

// Emit sends an event to all registered listeners in priority order. A
// cancelled event stops propagating. The first listener error aborts the
// emit and is returned.
func (b *Bus) Emit(event Event) error {
	if b == nil {
		return nil
	}

	b.mu.RLock()
	listeners := make([]EventListener, 0, len(b.listeners[event.GetType()])+len(b.wildcard))
	listeners = append(listeners, b.listeners[event.GetType()]...)
	listeners = append(listeners, b.wildcard...)
	b.mu.RUnlock()
	sortByPriority(listeners)

	b.log.WithFields(logrus.Fields{
		"event_type":   event.GetType(),
		"encounter_id": event.GetEncounterID(),
		"listeners":    len(listeners),
	}).Debug("Emitting event")

	for _, listener := range listeners {
		if event.IsCancelled() {
			b.log.WithField("event_type", event.GetType()).Debug("Event cancelled, stopping propagation")
			break
		}

		if err := listener.HandleEvent(event); err != nil {
			return dnderr.Wrapf(err, "listener %s failed", listener.ID()).
				WithMeta("event_type", string(event.GetType()))
		}
	}

	return nil
}

// Clear removes all listeners
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners = make(map[EventType][]EventListener)
	b.wildcard = nil
	b.log.Debug("Cleared all listeners")
}
