package models

import "strings"

// Skill is a craftable or gatherable skill defined by the static data
type Skill struct {
	ID           string
	Name         string
	LevelTableID string
	BaseXP       int
}

// SkillRequirement is a level a recipe needs in another skill before its inputs can be produced
type SkillRequirement struct {
	Skill    string
	Level    int
	Material string // ingredient whose producer imposes the requirement
}

// MaterialQty is a material identifier with a quantity
type MaterialQty struct {
	Material string
	Quantity int
}

// Recipe is one craft/gather action
type Recipe struct {
	ID           string
	Name         string
	Skill        string
	Stations     []string // any one of these can host the recipe; empty means no station needed
	UnlockLevel  int
	Difficulty   int
	XPMultiplier float64
	Inputs       []MaterialQty // sorted by material
	Outputs      []MaterialQty // sorted by material
	IsDev        bool
	GrantsXP     bool

	// PreserveInputsOnFailure means a failed attempt consumes nothing
	PreserveInputsOnFailure bool

	Prerequisites []SkillRequirement
}

// Materials returns every input and output material ID of the recipe
func (r *Recipe) Materials() []string {
	out := make([]string, 0, len(r.Inputs)+len(r.Outputs))
	for _, in := range r.Inputs {
		out = append(out, in.Material)
	}
	for _, o := range r.Outputs {
		out = append(out, o.Material)
	}
	return out
}

// InputQuantity returns how much of material one batch consumes
func (r *Recipe) InputQuantity(material string) int {
	for _, in := range r.Inputs {
		if in.Material == material {
			return in.Quantity
		}
	}
	return 0
}

// Station is a crafter that hosts a set of recipes
type Station struct {
	ID      string
	Name    string
	Tier    int
	Recipes map[string]bool
}

// Material is an item that can be consumed or produced by a recipe
type Material struct {
	ID          string
	Name        string
	Description string
	Tier        int
	ItemLevel   int
	Categories  []string
	Raw         bool
	Relic       bool
}

// IsRelicKey reports whether an identifier marks a relic-tier item by naming convention
func IsRelicKey(id string) bool {
	return strings.Contains(strings.ToLower(id), "relic")
}

// IsRawKey reports whether an identifier marks a raw material by naming convention
func IsRawKey(id string) bool {
	lower := strings.ToLower(id)
	return strings.HasPrefix(lower, "item_raw_") || strings.Contains(lower, "_raw_")
}
