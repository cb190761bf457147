package combatant

import (
	"fmt"

	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
)

// View is the read surface the action economy and effect engine need from a
// combatant, regardless of how the caller stores it.
type View interface {
	effects.Holder
	Level() int
	ArmorClass() int
	Attributes() map[string]int
	Equipment() []string
	Abilities() []string
	Tags() []string
}

type structView struct {
	c *Combatant
}

func (v *structView) ID() string                                 { return v.c.ID }
func (v *structView) Level() int                                 { return v.c.Level }
func (v *structView) ArmorClass() int                            { return v.c.ArmorClass }
func (v *structView) Equipment() []string                        { return v.c.Equipment }
func (v *structView) Abilities() []string                        { return v.c.Abilities }
func (v *structView) Tags() []string                             { return v.c.Tags }
func (v *structView) StatusEffects() []*effects.StatusEffect     { return v.c.Effects }
func (v *structView) SetStatusEffects(l []*effects.StatusEffect) { v.c.Effects = l }

// Attributes includes current MP under "mp" unless the attribute map already
// carries one.
func (v *structView) Attributes() map[string]int {
	out := make(map[string]int, len(v.c.Attributes)+1)
	for k, val := range v.c.Attributes {
		out[k] = val
	}
	if _, ok := out["mp"]; !ok {
		out["mp"] = v.c.MP
	}
	return out
}

// AsView converts a *Combatant, a View, or a plain record into a View.
// Anything else is an invalid argument.
func AsView(v any) (View, error) {
	switch t := v.(type) {
	case nil:
		return nil, dnderr.InvalidArgument("combatant is nil")
	case View:
		return t, nil
	case *Combatant:
		if t == nil {
			return nil, dnderr.InvalidArgument("combatant is nil")
		}
		return t.View(), nil
	case map[string]any:
		return NewRecordView(t)
	default:
		return nil, dnderr.InvalidArgumentf("unsupported combatant representation %T", v)
	}
}

// MustView is AsView that panics on an unsupported representation
func MustView(v any) View {
	view, err := AsView(v)
	if err != nil {
		panic(fmt.Sprintf("combatant: %v", err))
	}
	return view
}
