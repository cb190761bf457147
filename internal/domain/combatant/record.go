package combatant

import (
	"encoding/json"
	"fmt"
	"strings"

	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
)

// recordView adapts a loosely typed record, as decoded from JSON or handed
// over by a persistence layer. Effects are normalised once on construction
// and written back to the record on every change.
type recordView struct {
	rec     map[string]any
	effects []*effects.StatusEffect
}

// NewRecordView validates rec and wraps it. The record needs a non-empty
// string "id"; "status_effects", "attributes", "equipment", "abilities" and
// "tags" are optional but must have the right shape when present.
func NewRecordView(rec map[string]any) (View, error) {
	if rec == nil {
		return nil, dnderr.InvalidArgument("combatant record is nil")
	}
	id, ok := rec["id"].(string)
	if !ok || id == "" {
		return nil, dnderr.InvalidArgument("combatant record needs a string id")
	}

	list, err := decodeEffects(rec["status_effects"])
	if err != nil {
		return nil, dnderr.Wrapf(err, "combatant record %s", id)
	}
	for _, key := range []string{"equipment", "abilities", "tags"} {
		if _, err := stringList(rec[key]); err != nil {
			return nil, dnderr.Wrapf(err, "combatant record %s field %s", id, key)
		}
	}
	if _, err := intMap(rec["attributes"]); err != nil {
		return nil, dnderr.Wrapf(err, "combatant record %s field attributes", id)
	}

	v := &recordView{rec: rec, effects: list}
	v.rec["status_effects"] = list
	return v, nil
}

func (v *recordView) ID() string { return v.rec["id"].(string) }

func (v *recordView) Level() int {
	if n, ok := toInt(v.rec["level"]); ok && n > 0 {
		return n
	}
	return 1
}

// ArmorClass reads "ac" or "armor_class", 10 when neither is set
func (v *recordView) ArmorClass() int {
	for _, key := range []string{"ac", "armor_class"} {
		if n, ok := toInt(v.rec[key]); ok {
			return n
		}
	}
	return 10
}

func (v *recordView) Attributes() map[string]int {
	out, _ := intMap(v.rec["attributes"])
	if out == nil {
		out = make(map[string]int)
	}
	// Records written by older callers keep ability scores at the top level
	for _, key := range []string{"STR", "DEX", "CON", "INT", "WIS", "CHA", "mp"} {
		if _, ok := out[key]; ok {
			continue
		}
		if n, ok := toInt(v.rec[key]); ok {
			out[key] = n
		}
	}
	return out
}

func (v *recordView) Equipment() []string { l, _ := stringList(v.rec["equipment"]); return l }
func (v *recordView) Abilities() []string { l, _ := stringList(v.rec["abilities"]); return l }
func (v *recordView) Tags() []string      { l, _ := stringList(v.rec["tags"]); return l }

func (v *recordView) StatusEffects() []*effects.StatusEffect { return v.effects }

func (v *recordView) SetStatusEffects(list []*effects.StatusEffect) {
	v.effects = list
	v.rec["status_effects"] = list
}

// FromRecord builds a Combatant from a record by round-tripping it through
// JSON. Unknown keys are ignored; shape errors are invalid arguments.
func FromRecord(rec map[string]any) (*Combatant, error) {
	if _, err := NewRecordView(rec); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeInvalidArgument, "encode combatant record")
	}
	var c Combatant
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeInvalidArgument, "decode combatant record")
	}
	c.ApplyDefaults()
	return &c, nil
}

// MustFromRecord is FromRecord that panics on a malformed record
func MustFromRecord(rec map[string]any) *Combatant {
	c, err := FromRecord(rec)
	if err != nil {
		panic(fmt.Sprintf("combatant: %v", err))
	}
	return c
}

func decodeEffects(raw any) ([]*effects.StatusEffect, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case []*effects.StatusEffect:
		return t, nil
	case []any:
		out := make([]*effects.StatusEffect, 0, len(t))
		for _, item := range t {
			switch e := item.(type) {
			case *effects.StatusEffect:
				out = append(out, e)
			case string:
				out = append(out, &effects.StatusEffect{Name: e, Duration: 1})
			case map[string]any:
				name, _ := e["name"].(string)
				if name == "" {
					return nil, dnderr.InvalidArgument("status effect needs a name")
				}
				se := &effects.StatusEffect{Name: name, Duration: 1}
				if d, ok := toInt(e["duration"]); ok {
					se.Duration = d
				}
				se.SourceID, _ = e["source_id"].(string)
				if val, ok := e["value"].(float64); ok {
					se.Value = val
				}
				if kind, ok := e["kind"].(string); ok {
					se.Kind = effects.Kind(strings.ToLower(kind))
				}
				if phase, ok := e["phase"].(string); ok {
					se.Phase = effects.Phase(phase)
				}
				out = append(out, se)
			default:
				return nil, dnderr.InvalidArgumentf("unsupported status effect %T", item)
			}
		}
		return out, nil
	default:
		return nil, dnderr.InvalidArgumentf("status_effects must be a list, got %T", raw)
	}
}

func stringList(raw any) ([]string, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, dnderr.InvalidArgumentf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, dnderr.InvalidArgumentf("expected list of strings, got %T", raw)
	}
}

func intMap(raw any) (map[string]int, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case map[string]int:
		out := make(map[string]int, len(t))
		for k, v := range t {
			out[k] = v
		}
		return out, nil
	case map[string]any:
		out := make(map[string]int, len(t))
		for k, v := range t {
			n, ok := toInt(v)
			if !ok {
				return nil, dnderr.InvalidArgumentf("attribute %s is not a number", k)
			}
			out[k] = n
		}
		return out, nil
	default:
		return nil, dnderr.InvalidArgumentf("expected attribute map, got %T", raw)
	}
}

func toInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}
