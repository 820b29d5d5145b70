package models

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultMaxCrossSkillGap is the default tolerated gap between a prerequisite skill's
// current level and the level a recipe requires of it
const DefaultMaxCrossSkillGap = 5

// DefaultTargetGain is how many levels above current a skill aims for when no target is set
const DefaultTargetGain = 5

// SkillProgress is a player's standing in one skill
type SkillProgress struct {
	Name   string
	Level  int
	XP     float64 // XP earned into the current level
	Target int     // 0 means unset
}

// Profile is the player's state loaded once per run
type Profile struct {
	Skills           map[string]SkillProgress
	OwnedStations    map[string]bool
	PremiumAccount   bool
	AvoidRelics      bool
	MaxCrossSkillGap int
}

// NewProfile creates an empty profile with default settings
func NewProfile() *Profile {
	return &Profile{
		Skills:           make(map[string]SkillProgress),
		OwnedStations:    make(map[string]bool),
		MaxCrossSkillGap: DefaultMaxCrossSkillGap,
	}
}

// Level returns the profile's level in a skill; unknown skills start at level 1
func (p *Profile) Level(skill string) int {
	if sp, ok := p.Skills[skill]; ok {
		return sp.Level
	}
	return 1
}

// Clone returns a deep copy so planners can mutate progress without sharing state
func (p *Profile) Clone() *Profile {
	c := &Profile{
		Skills:           make(map[string]SkillProgress, len(p.Skills)),
		OwnedStations:    make(map[string]bool, len(p.OwnedStations)),
		PremiumAccount:   p.PremiumAccount,
		AvoidRelics:      p.AvoidRelics,
		MaxCrossSkillGap: p.MaxCrossSkillGap,
	}
	for k, v := range p.Skills {
		c.Skills[k] = v
	}
	for k, v := range p.OwnedStations {
		c.OwnedStations[k] = v
	}
	return c
}

// ValidateProfile re-keys profile skills onto catalog skill IDs and checks that
// every level fits within its skill's table. Every key that resolves is re-keyed even
// when others fail; unresolved keys stay as they are so planning reports them. The
// returned error joins one problem per key.
func ValidateProfile(p *Profile, cat *Catalog) error {
	var errs []error
	resolved := make(map[string]SkillProgress, len(p.Skills))
	for _, key := range sortedKeys(p.Skills) {
		sp := p.Skills[key]
		id, err := cat.ResolveSkill(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("profile: %w", err))
			resolved[key] = sp
			continue
		}
		if sp.Level < 0 {
			errs = append(errs, fmt.Errorf("skill %s has negative level %d", id, sp.Level))
		}
		if table, ok := cat.Tables[id]; ok && sp.Level > table.MaxLevel() {
			errs = append(errs, fmt.Errorf("skill %s level %d exceeds max level %d", id, sp.Level, table.MaxLevel()))
		}
		// An exact ID wins over an alias of the same skill
		if _, taken := resolved[id]; taken && key != id {
			continue
		}
		resolved[id] = sp
	}
	p.Skills = resolved
	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Weights maps material IDs to cost multipliers
type Weights map[string]float64

// Of returns the weight of a material, defaulting to 1.0
func (w Weights) Of(material string) float64 {
	if v, ok := w[material]; ok && v > 0 {
		return v
	}
	return 1.0
}

// Targets maps skill IDs to desired levels
type Targets map[string]int

// TargetFor resolves the target level for a skill: explicit targets first, then the
// profile's own target, then current level + DefaultTargetGain. The result is capped
// at maxLevel when maxLevel > 0.
func (t Targets) TargetFor(skill string, p *Profile, maxLevel int) int {
	current := p.Level(skill)
	target := current + DefaultTargetGain
	if sp, ok := p.Skills[skill]; ok && sp.Target > 0 {
		target = sp.Target
	}
	if v, ok := t[skill]; ok && v > 0 {
		target = v
	}
	if maxLevel > 0 && target > maxLevel {
		target = maxLevel
	}
	return target
}

// ResolveTargets re-keys targets onto catalog skill IDs. Keys that do not resolve are
// dropped and reported in the joined error.
func ResolveTargets(t Targets, cat *Catalog) (Targets, error) {
	var errs []error
	out := make(Targets, len(t))
	for _, key := range sortedKeys(t) {
		id, err := cat.ResolveSkill(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("targets: %w", err))
			continue
		}
		if _, taken := out[id]; taken && key != id {
			continue
		}
		out[id] = t[key]
	}
	return out, errors.Join(errs...)
}

// MaterialSetting is one entry of the materials enable/disable list
type MaterialSetting struct {
	Name        string
	Description string
	Enabled     bool
}

// MaterialsConfig is the user's material enable/disable list; unlisted materials are enabled
type MaterialsConfig map[string]MaterialSetting

// Enabled reports whether a material may be planned
func (m MaterialsConfig) Enabled(material string) bool {
	if s, ok := m[material]; ok {
		return s.Enabled
	}
	return true
}
