package area

// Kind categorises terrain
type Kind string

const (
	KindObstacle         Kind = "obstacle"
	KindDifficultTerrain Kind = "difficult_terrain"
	KindCover            Kind = "cover"
	KindHazard           Kind = "hazard"
)

// Properties hold the gameplay effects of a feature. Nil pointers mean the
// default: passable, no cover, modifier 1.0.
type Properties struct {
	Passable         *bool    `json:"passable,omitempty"`
	ProvidesCover    bool     `json:"provides_cover,omitempty"`
	MovementModifier *float64 `json:"movement_modifier,omitempty"`
	Description      string   `json:"description,omitempty"`
}

// Size is the axis-aligned footprint on X (width) and Z (depth)
type Size struct {
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
}

// TerrainFeature is a passive piece of terrain. Areas read it; nothing in
// the combat core mutates it after creation.
type TerrainFeature struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Center     Position   `json:"position"`
	Size       Size       `json:"size"`
	Kind       Kind       `json:"type"`
	Properties Properties `json:"properties"`
}

// Contains reports whether point lies inside the footprint, edges included
func (f *TerrainFeature) Contains(point Position) bool {
	halfW := f.Size.Width / 2
	halfD := f.Size.Depth / 2
	return point.X >= f.Center.X-halfW &&
		point.X <= f.Center.X+halfW &&
		point.Z >= f.Center.Z-halfD &&
		point.Z <= f.Center.Z+halfD
}

// IsPassable defaults to true
func (f *TerrainFeature) IsPassable() bool {
	if f.Properties.Passable == nil {
		return true
	}
	return *f.Properties.Passable
}

// ProvidesCover defaults to false
func (f *TerrainFeature) ProvidesCover() bool {
	return f.Properties.ProvidesCover
}

// MovementModifier defaults to 1.0
func (f *TerrainFeature) MovementModifier() float64 {
	if f.Properties.MovementModifier == nil {
		return 1.0
	}
	return *f.Properties.MovementModifier
}

// Impassable is a Properties helper for walls, pillars and boulders
func Impassable(cover bool, description string) Properties {
	passable := false
	return Properties{Passable: &passable, ProvidesCover: cover, Description: description}
}

// Difficult is a Properties helper for terrain that multiplies movement cost
func Difficult(modifier float64, description string) Properties {
	passable := true
	return Properties{Passable: &passable, MovementModifier: &modifier, Description: description}
}
