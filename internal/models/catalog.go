package models

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/norraist/PaxDei-Planner/internal/levels"
)

// ErrUnknownSkill is returned when a skill key cannot be resolved against the catalog
var ErrUnknownSkill = errors.New("unknown skill")

// Catalog is the immutable static game data a planning run works from.
// Only non-dev recipes are expected here, but eligibility re-checks IsDev regardless.
type Catalog struct {
	Skills    map[string]*Skill
	Recipes   []*Recipe // sorted by ID
	Stations  map[string]*Station
	Materials map[string]*Material
	Tables    levels.Set

	// TableErrors holds skills whose level table could not be discovered
	TableErrors map[string]error

	bySkill   map[string][]*Recipe
	producers map[string][]*Recipe
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		Skills:      make(map[string]*Skill),
		Stations:    make(map[string]*Station),
		Materials:   make(map[string]*Material),
		Tables:      make(levels.Set),
		TableErrors: make(map[string]error),
	}
}

// Index sorts recipes and builds the per-skill and producer lookups.
// It must be called after the catalog is populated and before it is shared.
func (c *Catalog) Index() {
	sort.Slice(c.Recipes, func(i, j int) bool {
		return c.Recipes[i].ID < c.Recipes[j].ID
	})
	c.bySkill = make(map[string][]*Recipe)
	c.producers = make(map[string][]*Recipe)
	for _, r := range c.Recipes {
		c.bySkill[r.Skill] = append(c.bySkill[r.Skill], r)
		for _, out := range r.Outputs {
			c.producers[out.Material] = append(c.producers[out.Material], r)
		}
	}
}

// Indexed reports whether Index has run since the catalog was populated
func (c *Catalog) Indexed() bool {
	return c.bySkill != nil
}

// RecipesForSkill returns the recipes produced by a skill, sorted by ID
func (c *Catalog) RecipesForSkill(skill string) []*Recipe {
	if c.bySkill == nil {
		c.Index()
	}
	return c.bySkill[skill]
}

// Producers returns the recipes that output a material, sorted by ID
func (c *Catalog) Producers(material string) []*Recipe {
	if c.producers == nil {
		c.Index()
	}
	return c.producers[material]
}

// Recipe finds a recipe by ID
func (c *Catalog) Recipe(id string) *Recipe {
	idx := sort.Search(len(c.Recipes), func(i int) bool {
		return c.Recipes[i].ID >= id
	})
	if idx < len(c.Recipes) && c.Recipes[idx].ID == id {
		return c.Recipes[idx]
	}
	return nil
}

// IsRelic reports whether a material is relic-tier, by flag or by naming convention
func (c *Catalog) IsRelic(material string) bool {
	if m, ok := c.Materials[material]; ok && m.Relic {
		return true
	}
	return IsRelicKey(material)
}

// IsBaseMaterial reports whether a material is gathered rather than crafted
func (c *Catalog) IsBaseMaterial(material string) bool {
	if m, ok := c.Materials[material]; ok && (m.Raw || m.Relic) {
		return true
	}
	if IsRawKey(material) || IsRelicKey(material) {
		return true
	}
	return len(c.Producers(material)) == 0
}

// SkillIDs returns all skill IDs in sorted order
func (c *Catalog) SkillIDs() []string {
	ids := make([]string, 0, len(c.Skills))
	for id := range c.Skills {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StationsFor returns the stations able to host a recipe, sorted by tier then ID
func (c *Catalog) StationsFor(r *Recipe) []*Station {
	var out []*Station
	for _, id := range r.Stations {
		if st, ok := c.Stations[id]; ok {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DisplayName returns a human readable name for any skill, recipe, station or material ID
func (c *Catalog) DisplayName(id string) string {
	if s, ok := c.Skills[id]; ok && s.Name != "" {
		return s.Name
	}
	if m, ok := c.Materials[id]; ok && m.Name != "" {
		return m.Name
	}
	if st, ok := c.Stations[id]; ok && st.Name != "" {
		return st.Name
	}
	if r := c.Recipe(id); r != nil && r.Name != "" {
		return r.Name
	}
	return id
}

// ResolveSkill maps a user supplied key onto a catalog skill ID.
// Exact IDs win, then normalized matches (case and punctuation insensitive, optional
// "skill_" prefix). Unknown keys carry the closest known skill as a suggestion.
func (c *Catalog) ResolveSkill(key string) (string, error) {
	if _, ok := c.Skills[key]; ok {
		return key, nil
	}
	norm := levels.NormalizeKey(key)
	for _, id := range c.SkillIDs() {
		idNorm := levels.NormalizeKey(id)
		if idNorm == norm || idNorm == "skill"+norm {
			return id, nil
		}
	}
	if suggestion := c.suggestSkill(norm); suggestion != "" {
		return "", fmt.Errorf("%w %q (did you mean %s?)", ErrUnknownSkill, key, suggestion)
	}
	return "", fmt.Errorf("%w %q", ErrUnknownSkill, key)
}

func (c *Catalog) suggestSkill(norm string) string {
	best := ""
	bestDist := -1
	for _, id := range c.SkillIDs() {
		idNorm := levels.NormalizeKey(id)
		dist := levenshtein.ComputeDistance(norm, idNorm)
		if alt := levenshtein.ComputeDistance("skill"+norm, idNorm); alt < dist {
			dist = alt
		}
		if dist > suggestionLimit(len(norm)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = id, dist
		}
	}
	return best
}

func suggestionLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
