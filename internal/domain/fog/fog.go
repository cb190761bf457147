// Package fog tracks who can see whom on the battlefield. Visibility and
// awareness are per ordered pair: what A knows of B says nothing about what
// B knows of A.
package fog

import (
	"math"
	"sort"
	"time"

	"github.com/KirkDiggler/dnd-combat-core/internal/domain/area"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/logger"
	"github.com/sirupsen/logrus"
)

// Visibility is what an observer perceives of a target
type Visibility string

const (
	Visible   Visibility = "visible"
	Partially Visibility = "partially"
	Hidden    Visibility = "hidden"
	Unaware   Visibility = "unaware"
)

// Rank orders visibilities: visible 3, partially 2, hidden 1, unaware 0
func (v Visibility) Rank() int {
	switch v {
	case Visible:
		return 3
	case Partially:
		return 2
	case Hidden:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether v is floor or better
func (v Visibility) AtLeast(floor Visibility) bool {
	return v.Rank() >= floor.Rank()
}

const (
	DefaultSense       = 50.0
	DefaultLOSCacheTTL = 500 * time.Millisecond

	// Sightings fade to nothing at these distances
	visibilityFalloff = 25.0
	perceptionFalloff = 15.0

	visibleThreshold   = 40.0
	partialThreshold   = 20.0
	awarenessWeight    = 0.2
	hiddenAwareness    = 50.0
	hiddenAwarenessLOS = 75.0
)

// Area is the part of the battlefield fog reads from
type Area interface {
	Position(id string) (area.Position, bool)
	LineOfSightClear(from, to area.Position) bool
	Move(id string, p area.Position) error
}

// Config configures a FogOfWar
type Config struct {
	Area         Area
	TimeProvider TimeProvider
	// LOSCacheTTL is how long a line-of-sight result is reused
	LOSCacheTTL time.Duration
	Logger      logrus.FieldLogger
}

// EntityUpdate carries the fields UpdateEntity should change. Nil fields
// are left alone.
type EntityUpdate struct {
	Stealth   *float64
	Detection *float64
	Position  *area.Position
}

type pair struct {
	observer string
	target   string
}

type sightline struct {
	clear    bool
	distance float64
	at       time.Time
}

// FogOfWar computes and caches visibility between entities. Every write
// that can change a sightline drops the affected cache entries before it
// returns.
type FogOfWar struct {
	area  Area
	clock TimeProvider
	ttl   time.Duration

	stealth    map[string]float64
	detection  map[string]float64
	visibility map[string]map[string]Visibility
	awareness  map[string]map[string]float64
	los        map[pair]sightline

	log logrus.FieldLogger
}

// New creates an empty FogOfWar over an area
func New(cfg *Config) (*FogOfWar, error) {
	if cfg == nil || cfg.Area == nil {
		return nil, dnderr.InvalidArgument("fog of war needs an area")
	}
	clock := cfg.TimeProvider
	if clock == nil {
		clock = &RealTimeProvider{}
	}
	ttl := cfg.LOSCacheTTL
	if ttl <= 0 {
		ttl = DefaultLOSCacheTTL
	}
	return &FogOfWar{
		area:       cfg.Area,
		clock:      clock,
		ttl:        ttl,
		stealth:    make(map[string]float64),
		detection:  make(map[string]float64),
		visibility: make(map[string]map[string]Visibility),
		awareness:  make(map[string]map[string]float64),
		los:        make(map[pair]sightline),
		log:        logger.OrDiscard(cfg.Logger).WithField("component", "fog_of_war"),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return DefaultSense
	}
	return math.Max(lo, math.Min(hi, v))
}

// UpdateEntity registers an entity or changes its stealth, detection or
// position. Stealth and detection are clamped to [0, 100] and default to
// 50. The area is only moved for entities it already holds.
func (f *FogOfWar) UpdateEntity(id string, upd EntityUpdate) error {
	if id == "" {
		return dnderr.InvalidArgument("entity id is required")
	}

	if _, known := f.stealth[id]; !known {
		f.stealth[id] = DefaultSense
		f.detection[id] = DefaultSense
		f.visibility[id] = make(map[string]Visibility)
		f.awareness[id] = make(map[string]float64)
	}
	if upd.Stealth != nil {
		f.stealth[id] = clamp(*upd.Stealth, 0, 100)
	}
	if upd.Detection != nil {
		f.detection[id] = clamp(*upd.Detection, 0, 100)
	}
	if upd.Position != nil {
		if _, placed := f.area.Position(id); placed {
			if err := f.area.Move(id, *upd.Position); err != nil {
				return err
			}
		}
	}

	f.Invalidate(id)
	return nil
}

// Invalidate drops every cached sightline and visibility that involves id
func (f *FogOfWar) Invalidate(id string) {
	for key := range f.los {
		if key.observer == id || key.target == id {
			delete(f.los, key)
		}
	}
	for observer, seen := range f.visibility {
		if observer == id {
			f.visibility[observer] = make(map[string]Visibility)
			continue
		}
		delete(seen, id)
	}
}

// InvalidateSightlines drops every cached sightline and visibility, for
// when the terrain between entities changes
func (f *FogOfWar) InvalidateSightlines() {
	f.los = make(map[pair]sightline)
	for observer := range f.visibility {
		f.visibility[observer] = make(map[string]Visibility)
	}
}

// Forget removes an entity and everything known about it
func (f *FogOfWar) Forget(id string) {
	f.Invalidate(id)
	delete(f.stealth, id)
	delete(f.detection, id)
	delete(f.visibility, id)
	delete(f.awareness, id)
	for _, known := range f.awareness {
		delete(known, id)
	}
}

// Reset forgets every entity
func (f *FogOfWar) Reset() {
	f.stealth = make(map[string]float64)
	f.detection = make(map[string]float64)
	f.visibility = make(map[string]map[string]Visibility)
	f.awareness = make(map[string]map[string]float64)
	f.los = make(map[pair]sightline)
}

// Has reports whether the entity is registered
func (f *FogOfWar) Has(id string) bool {
	_, ok := f.stealth[id]
	return ok
}

// Stealth returns an entity's stealth, 50 when unknown
func (f *FogOfWar) Stealth(id string) float64 {
	if v, ok := f.stealth[id]; ok {
		return v
	}
	return DefaultSense
}

// Detection returns an entity's detection, 50 when unknown
func (f *FogOfWar) Detection(id string) float64 {
	if v, ok := f.detection[id]; ok {
		return v
	}
	return DefaultSense
}

// Awareness returns how aware observer is of target
func (f *FogOfWar) Awareness(observer, target string) float64 {
	return f.awareness[observer][target]
}

// UpdateAwareness adds delta to observer's awareness of target, clamped to
// [0, 100], and returns the new value
func (f *FogOfWar) UpdateAwareness(observer, target string, delta float64) float64 {
	known, ok := f.awareness[observer]
	if !ok {
		known = make(map[string]float64)
		f.awareness[observer] = known
	}
	known[target] = math.Max(0, math.Min(100, known[target]+delta))
	return known[target]
}

// sightline returns whether observer can see target and how far away it
// is. Results are reused for the cache TTL. Entities without a position
// have no sightline and are infinitely far.
func (f *FogOfWar) sightline(observer, target string) (bool, float64) {
	key := pair{observer: observer, target: target}
	now := f.clock.Now()
	if cached, ok := f.los[key]; ok && now.Sub(cached.at) < f.ttl {
		return cached.clear, cached.distance
	}

	from, ok1 := f.area.Position(observer)
	to, ok2 := f.area.Position(target)
	if !ok1 || !ok2 {
		return false, math.Inf(1)
	}

	line := sightline{
		clear:    f.area.LineOfSightClear(from, to),
		distance: from.DistanceTo(to),
		at:       now,
	}
	f.los[key] = line
	return line.clear, line.distance
}

func falloff(distance, radius float64) float64 {
	return math.Max(0, 1-distance/radius)
}

// CalculateVisibility classifies what observer perceives of target. The
// cached value is returned unless recalculate is set. An entity always sees
// itself.
func (f *FogOfWar) CalculateVisibility(observer, target string, recalculate bool) Visibility {
	if observer == target {
		return Visible
	}
	if !recalculate {
		if v, ok := f.visibility[observer][target]; ok {
			return v
		}
	}

	clear, distance := f.sightline(observer, target)
	awareness := f.Awareness(observer, target)

	var result Visibility
	if !clear {
		result = Unaware
		if awareness >= hiddenAwarenessLOS {
			result = Hidden
		}
	} else {
		chance := math.Max(0, f.Detection(observer)-f.Stealth(target))*falloff(distance, visibilityFalloff) +
			awareness*awarenessWeight
		switch {
		case chance >= visibleThreshold:
			result = Visible
		case chance >= partialThreshold:
			result = Partially
		case awareness >= hiddenAwareness:
			result = Hidden
		default:
			result = Unaware
		}
	}

	seen, ok := f.visibility[observer]
	if !ok {
		seen = make(map[string]Visibility)
		f.visibility[observer] = seen
	}
	seen[target] = result
	return result
}

// PerceptionCheck has observer actively search for target. Detection is
// halved without line of sight and fades to nothing at 15 units. On success
// awareness grows by 10 plus half the margin; on failure by a quarter of
// the margin, never below zero. Visibility is recomputed straight after.
func (f *FogOfWar) PerceptionCheck(observer, target string, bonus float64) (success bool, margin float64) {
	clear, distance := f.sightline(observer, target)

	detection := f.Detection(observer)
	if !clear {
		detection /= 2
	}
	effective := detection*falloff(distance, perceptionFalloff) + bonus
	margin = effective - f.Stealth(target)
	success = margin >= 0

	gain := math.Max(0, margin/4)
	if success {
		gain = 10 + margin/2
	}
	awareness := f.UpdateAwareness(observer, target, gain)
	visibility := f.CalculateVisibility(observer, target, true)

	f.log.WithFields(logrus.Fields{
		"observer":   observer,
		"target":     target,
		"margin":     margin,
		"success":    success,
		"awareness":  awareness,
		"visibility": visibility,
	}).Debug("Perception check")
	return success, margin
}

// Entities returns every registered id, sorted
func (f *FogOfWar) Entities() []string {
	out := make([]string, 0, len(f.stealth))
	for id := range f.stealth {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// VisibleEntities returns the entities observer perceives at floor or better,
// computing any visibility not yet cached
func (f *FogOfWar) VisibleEntities(observer string, floor Visibility) []string {
	var out []string
	for _, id := range f.Entities() {
		if id == observer {
			continue
		}
		if f.CalculateVisibility(observer, id, false).AtLeast(floor) {
			out = append(out, id)
		}
	}
	return out
}

// UpdateAll recomputes visibility for every ordered pair
func (f *FogOfWar) UpdateAll() {
	ids := f.Entities()
	for _, observer := range ids {
		for _, target := range ids {
			if observer != target {
				f.CalculateVisibility(observer, target, true)
			}
		}
	}
}

// Visibility returns the cached visibility, if any
func (f *FogOfWar) Visibility(observer, target string) (Visibility, bool) {
	v, ok := f.visibility[observer][target]
	return v, ok
}

// Snapshot is the serialisable state of a FogOfWar
type Snapshot struct {
	Visibility map[string]map[string]Visibility `json:"visibility"`
	Awareness  map[string]map[string]float64    `json:"awareness"`
	Stealth    map[string]float64               `json:"stealth"`
	Detection  map[string]float64               `json:"detection"`
}

// Snapshot copies the current maps
func (f *FogOfWar) Snapshot() *Snapshot {
	s := &Snapshot{
		Visibility: make(map[string]map[string]Visibility, len(f.visibility)),
		Awareness:  make(map[string]map[string]float64, len(f.awareness)),
		Stealth:    make(map[string]float64, len(f.stealth)),
		Detection:  make(map[string]float64, len(f.detection)),
	}
	for o, seen := range f.visibility {
		s.Visibility[o] = make(map[string]Visibility, len(seen))
		for t, v := range seen {
			s.Visibility[o][t] = v
		}
	}
	for o, known := range f.awareness {
		s.Awareness[o] = make(map[string]float64, len(known))
		for t, v := range known {
			s.Awareness[o][t] = v
		}
	}
	for id, v := range f.stealth {
		s.Stealth[id] = v
	}
	for id, v := range f.detection {
		s.Detection[id] = v
	}
	return s
}
