package area

import (
	"math"
	"math/rand"
	"sort"

	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/logger"
	"github.com/KirkDiggler/dnd-combat-core/internal/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultWidth    = 20.0
	DefaultDepth    = 20.0
	DefaultGridSize = 1.0

	// minLOSSteps is the minimum number of samples on a sightline
	minLOSSteps = 5
	losEpsilon  = 0.0001
)

// Config configures a new Area
type Config struct {
	ID          string
	Name        string
	Width       float64
	Depth       float64
	GridSize    float64
	IDGenerator uuid.Generator
	Logger      logrus.FieldLogger
}

// Area is a grid-indexed battlefield. Every entity in positions is also a
// member of exactly one occupancy cell, the one its position maps to.
type Area struct {
	id       string
	name     string
	width    float64
	depth    float64
	gridSize float64
	gridW    int
	gridD    int

	positions  map[string]Position
	occupancy  map[GridCoord]map[string]struct{}
	terrain    map[string]*TerrainFeature
	terrainIDs []string

	ids uuid.Generator
	log logrus.FieldLogger
}

// New creates an empty Area. Zero sizes fall back to a 20x20 field with
// unit cells.
func New(cfg *Config) *Area {
	if cfg == nil {
		cfg = &Config{}
	}

	ids := cfg.IDGenerator
	if ids == nil {
		ids = uuid.NewPrefixedGenerator("terrain")
	}

	a := &Area{
		id:        cfg.ID,
		name:      cfg.Name,
		width:     orDefault(cfg.Width, DefaultWidth),
		depth:     orDefault(cfg.Depth, DefaultDepth),
		gridSize:  orDefault(cfg.GridSize, DefaultGridSize),
		positions: make(map[string]Position),
		occupancy: make(map[GridCoord]map[string]struct{}),
		terrain:   make(map[string]*TerrainFeature),
		ids:       ids,
	}
	if a.id == "" {
		a.id = uuid.NewPrefixedGenerator("area").New()
	}
	if a.name == "" {
		a.name = "Battlefield"
	}
	a.gridW = max(1, int(a.width/a.gridSize))
	a.gridD = max(1, int(a.depth/a.gridSize))
	a.log = logger.OrDiscard(cfg.Logger).WithFields(logrus.Fields{
		"component": "area",
		"area_id":   a.id,
	})

	a.log.WithFields(logrus.Fields{
		"width": a.width,
		"depth": a.depth,
	}).Debug("Combat area initialized")

	return a
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func (a *Area) ID() string                 { return a.id }
func (a *Area) Name() string               { return a.name }
func (a *Area) GridSize() float64          { return a.gridSize }
func (a *Area) Bounds() (float64, float64) { return a.width, a.depth }

// ToGrid maps a position to its cell, clamped to the grid
func (a *Area) ToGrid(p Position) GridCoord {
	gx := int(p.X / a.gridSize)
	gz := int(p.Z / a.gridSize)
	return GridCoord{
		X: max(0, min(gx, a.gridW-1)),
		Z: max(0, min(gz, a.gridD-1)),
	}
}

// CellCenter returns the ground-level center of a cell
func (a *Area) CellCenter(c GridCoord) Position {
	return Position{
		X: (float64(c.X) + 0.5) * a.gridSize,
		Z: (float64(c.Z) + 0.5) * a.gridSize,
	}
}

// IsValid reports whether p lies inside the field: 0 <= x < width, 0 <= z < depth
func (a *Area) IsValid(p Position) bool {
	return p.X >= 0 && p.X < a.width && p.Z >= 0 && p.Z < a.depth
}

// IsBlocked reports whether an impassable feature covers p
func (a *Area) IsBlocked(p Position) bool {
	for _, id := range a.terrainIDs {
		f := a.terrain[id]
		if !f.IsPassable() && f.Contains(p) {
			return true
		}
	}
	return false
}

// CanMoveTo reports whether p is in bounds and not blocked
func (a *Area) CanMoveTo(p Position) bool {
	return a.IsValid(p) && !a.IsBlocked(p)
}

// Add places a new entity at p
func (a *Area) Add(id string, p Position) error {
	if id == "" {
		return dnderr.InvalidArgument("entity id is required")
	}
	if _, exists := a.positions[id]; exists {
		return dnderr.AlreadyExistsf("entity %s is already in area %s", id, a.id)
	}
	if !a.IsValid(p) {
		return dnderr.InvalidArgumentf("position %s is out of bounds", p).WithMeta("entity_id", id)
	}

	a.positions[id] = p
	a.occupy(id, p)

	a.log.WithFields(logrus.Fields{"entity_id": id, "position": p.String()}).Debug("Entity added")
	return nil
}

// Remove takes an entity off the field, reporting whether it was present
func (a *Area) Remove(id string) bool {
	p, exists := a.positions[id]
	if !exists {
		return false
	}
	a.vacate(id, p)
	delete(a.positions, id)

	a.log.WithField("entity_id", id).Debug("Entity removed")
	return true
}

// Move relocates an entity after checking the destination is in bounds
// and not blocked. Nothing changes when the move is rejected.
func (a *Area) Move(id string, p Position) error {
	old, exists := a.positions[id]
	if !exists {
		return dnderr.NotFoundf("entity %s is not in area %s", id, a.id)
	}
	if !a.IsValid(p) {
		return dnderr.InvalidArgumentf("position %s is out of bounds", p).WithMeta("entity_id", id)
	}
	if a.IsBlocked(p) {
		return dnderr.Validationf("position %s is blocked by terrain", p).WithMeta("entity_id", id)
	}

	a.vacate(id, old)
	a.occupy(id, p)
	a.positions[id] = p

	a.log.WithFields(logrus.Fields{
		"entity_id": id,
		"from":      old.String(),
		"to":        p.String(),
	}).Debug("Entity moved")
	return nil
}

func (a *Area) occupy(id string, p Position) {
	cell := a.ToGrid(p)
	set, ok := a.occupancy[cell]
	if !ok {
		set = make(map[string]struct{})
		a.occupancy[cell] = set
	}
	set[id] = struct{}{}
}

func (a *Area) vacate(id string, p Position) {
	cell := a.ToGrid(p)
	set, ok := a.occupancy[cell]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(a.occupancy, cell)
	}
}

// Position returns an entity's position
func (a *Area) Position(id string) (Position, bool) {
	p, ok := a.positions[id]
	return p, ok
}

// Has reports whether the entity is on the field
func (a *Area) Has(id string) bool {
	_, ok := a.positions[id]
	return ok
}

// Entities returns every entity id, sorted
func (a *Area) Entities() []string {
	out := make([]string, 0, len(a.positions))
	for id := range a.positions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Occupants returns the ids in a cell, sorted
func (a *Area) Occupants(c GridCoord) []string {
	set := a.occupancy[c]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// EntitiesNear returns the entities within radius of p. A zero radius means
// the occupants of p's cell. Otherwise the cells within ceil(radius/grid) of
// p are scanned and each occupant is kept when its own position lies within
// radius.
func (a *Area) EntitiesNear(p Position, radius float64) []string {
	if radius <= 0 {
		return a.Occupants(a.ToGrid(p))
	}

	span := int(math.Ceil(radius / a.gridSize))
	cx := int(math.Floor(p.X / a.gridSize))
	cz := int(math.Floor(p.Z / a.gridSize))

	var out []string
	for dx := -span; dx <= span; dx++ {
		for dz := -span; dz <= span; dz++ {
			cell := GridCoord{X: cx + dx, Z: cz + dz}
			for id := range a.occupancy[cell] {
				if a.positions[id].DistanceTo(p) <= radius {
					out = append(out, id)
				}
			}
		}
	}
	sort.Strings(out)
	return out
}

// LineOfSightClear samples the segment a→b and fails as soon as a sample
// falls inside an impassable feature. At least five samples are taken and
// more for long segments, one per half cell. Endpoints are not sampled.
func (a *Area) LineOfSightClear(from, to Position) bool {
	dx := to.X - from.X
	dz := to.Z - from.Z
	length := math.Hypot(dx, dz)
	if length < losEpsilon {
		return true
	}

	steps := max(minLOSSteps, int(length/(a.gridSize*0.5)))
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		sample := Position{X: from.X + dx*t, Z: from.Z + dz*t}
		if a.IsBlocked(sample) {
			return false
		}
	}
	return true
}

// MovementCost is the straight-line distance scaled by the modifiers of
// every feature covering the midpoint of the segment.
func (a *Area) MovementCost(from, to Position) float64 {
	multiplier := 1.0
	for _, f := range a.TerrainAt(from.Midpoint(to)) {
		multiplier *= f.MovementModifier()
	}
	return from.DistanceTo(to) * multiplier
}

// NearestValidPosition returns target when it can be stood on. Otherwise it
// searches the cell centers in a square of max(1, maxDistance/grid) cells
// around target, skipping the four outer corners, and returns the closest
// one that is in bounds and unblocked. Target comes back unchanged when the
// search finds nothing.
func (a *Area) NearestValidPosition(target Position, maxDistance float64) Position {
	if a.CanMoveTo(target) {
		return target
	}

	radius := max(1, int(maxDistance/a.gridSize))
	cx := int(math.Floor(target.X / a.gridSize))
	cz := int(math.Floor(target.Z / a.gridSize))

	best := target
	bestDist := math.Inf(1)
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if abs(dx) == radius && abs(dz) == radius {
				continue
			}
			candidate := a.CellCenter(GridCoord{X: cx + dx, Z: cz + dz})
			if !a.CanMoveTo(candidate) {
				continue
			}
			if d := candidate.DistanceTo(target); d < bestDist {
				best = candidate
				bestDist = d
			}
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Path returns the straight path from the entity to target, or nil when the
// entity is unknown, already there, or the target cannot be stood on.
func (a *Area) Path(id string, target Position) []Position {
	start, ok := a.positions[id]
	if !ok || start == target || !a.CanMoveTo(target) {
		return nil
	}
	return []Position{start, target}
}

// AddTerrain registers a feature. An empty id is generated.
func (a *Area) AddTerrain(f *TerrainFeature) (string, error) {
	if f == nil {
		return "", dnderr.InvalidArgument("terrain feature is required")
	}
	if !a.IsValid(f.Center) {
		return "", dnderr.InvalidArgumentf("terrain %s center %s is out of bounds", f.Name, f.Center)
	}
	if f.ID == "" {
		f.ID = a.ids.New()
	}
	if _, exists := a.terrain[f.ID]; exists {
		return "", dnderr.AlreadyExistsf("terrain %s already exists", f.ID)
	}

	a.terrain[f.ID] = f
	a.terrainIDs = append(a.terrainIDs, f.ID)

	a.log.WithFields(logrus.Fields{"terrain_id": f.ID, "name": f.Name}).Debug("Terrain added")
	return f.ID, nil
}

// RemoveTerrain drops a feature, reporting whether it existed
func (a *Area) RemoveTerrain(id string) bool {
	if _, exists := a.terrain[id]; !exists {
		return false
	}
	delete(a.terrain, id)
	for i, tid := range a.terrainIDs {
		if tid == id {
			a.terrainIDs = append(a.terrainIDs[:i], a.terrainIDs[i+1:]...)
			break
		}
	}
	return true
}

// TerrainAt returns the features covering p in insertion order
func (a *Area) TerrainAt(p Position) []*TerrainFeature {
	var out []*TerrainFeature
	for _, id := range a.terrainIDs {
		if f := a.terrain[id]; f.Contains(p) {
			out = append(out, f)
		}
	}
	return out
}

// Terrain returns every feature in insertion order
func (a *Area) Terrain() []*TerrainFeature {
	out := make([]*TerrainFeature, 0, len(a.terrainIDs))
	for _, id := range a.terrainIDs {
		out = append(out, a.terrain[id])
	}
	return out
}

// HasCover reports whether a cover-providing feature covers p
func (a *Area) HasCover(p Position) bool {
	for _, f := range a.TerrainAt(p) {
		if f.ProvidesCover() {
			return true
		}
	}
	return false
}

// AddDefaultTerrain lays out a 2x2 pillar in the middle, three 1x1 boulders
// and a 4x4 mud patch that doubles movement cost. rnd places the boulders
// and the mud.
func (a *Area) AddDefaultTerrain(rnd *rand.Rand) error {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}
	uniform := func(lo, hi float64) float64 {
		if hi <= lo {
			return lo
		}
		return lo + rnd.Float64()*(hi-lo)
	}

	features := []*TerrainFeature{{
		Name:       "Center Pillar",
		Center:     Pos(a.width/2, a.depth/2),
		Size:       Size{Width: 2, Depth: 2},
		Kind:       KindObstacle,
		Properties: Impassable(true, "A large stone pillar in the center of the area"),
	}}
	for _, name := range []string{"Rock 1", "Rock 2", "Rock 3"} {
		features = append(features, &TerrainFeature{
			Name:       name,
			Center:     Pos(uniform(2, a.width-2), uniform(2, a.depth-2)),
			Size:       Size{Width: 1, Depth: 1},
			Kind:       KindObstacle,
			Properties: Impassable(true, "A large boulder"),
		})
	}
	features = append(features, &TerrainFeature{
		Name:       "Mud Patch",
		Center:     Pos(uniform(3, a.width-3), uniform(3, a.depth-3)),
		Size:       Size{Width: 4, Depth: 4},
		Kind:       KindDifficultTerrain,
		Properties: Difficult(2.0, "A patch of thick mud that slows movement"),
	})

	for _, f := range features {
		if _, err := a.AddTerrain(f); err != nil {
			return dnderr.Wrap(err, "add default terrain")
		}
	}
	return nil
}

// Snapshot is the serialisable view of an area
type Snapshot struct {
	ID             string                     `json:"id"`
	Name           string                     `json:"name"`
	Width          float64                    `json:"width"`
	Depth          float64                    `json:"depth"`
	GridSize       float64                    `json:"grid_size"`
	GridDimensions GridCoord                  `json:"grid_dimensions"`
	Entities       map[string]Position        `json:"entities"`
	Terrain        map[string]*TerrainFeature `json:"terrain_features"`
}

// Snapshot copies the area's current state
func (a *Area) Snapshot() *Snapshot {
	s := &Snapshot{
		ID:             a.id,
		Name:           a.name,
		Width:          a.width,
		Depth:          a.depth,
		GridSize:       a.gridSize,
		GridDimensions: GridCoord{X: a.gridW, Z: a.gridD},
		Entities:       make(map[string]Position, len(a.positions)),
		Terrain:        make(map[string]*TerrainFeature, len(a.terrain)),
	}
	for id, p := range a.positions {
		s.Entities[id] = p
	}
	for id, f := range a.terrain {
		copied := *f
		s.Terrain[id] = &copied
	}
	return s
}
