package levels

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoTable is returned when a skill has no level table in a Set
var ErrNoTable = errors.New("no level table")

// Table maps cumulative XP to levels for a single skill.
// Level 0 starts at 0 XP and every following level starts at a strictly higher threshold.
type Table struct {
	Skill      string
	thresholds []int64 // thresholds[l] = cumulative XP at which level l starts
}

// NewTable builds a table from per-level increments, where increments[i] is the
// XP needed to go from level i to level i+1.
func NewTable(skill string, increments []int64) (*Table, error) {
	if len(increments) == 0 {
		return nil, fmt.Errorf("level table for %s is empty", skill)
	}
	thresholds := make([]int64, len(increments)+1)
	for i, inc := range increments {
		if inc <= 0 {
			return nil, fmt.Errorf("level table for %s is not monotonic at level %d (increment %d)", skill, i, inc)
		}
		thresholds[i+1] = thresholds[i] + inc
	}
	return &Table{Skill: skill, thresholds: thresholds}, nil
}

// MaxLevel returns the highest level reachable in this table
func (t *Table) MaxLevel() int {
	return len(t.thresholds) - 1
}

// XPThreshold returns the cumulative XP at which the given level starts
func (t *Table) XPThreshold(level int) (int64, error) {
	if level < 0 || level > t.MaxLevel() {
		return 0, fmt.Errorf("level %d out of range for %s (0..%d)", level, t.Skill, t.MaxLevel())
	}
	return t.thresholds[level], nil
}

// LevelForXP returns the greatest level whose threshold is <= xp
func (t *Table) LevelForXP(xp float64) int {
	if xp <= 0 {
		return 0
	}
	// First level whose threshold exceeds xp, minus one
	idx := sort.Search(len(t.thresholds), func(i int) bool {
		return float64(t.thresholds[i]) > xp
	})
	return idx - 1
}

// XPToNext returns the XP needed to advance from level to level+1, or 0 at max level
func (t *Table) XPToNext(level int) int64 {
	if level < 0 || level >= t.MaxLevel() {
		return 0
	}
	return t.thresholds[level+1] - t.thresholds[level]
}

// Increments returns the per-level increments the table was built from
func (t *Table) Increments() []int64 {
	out := make([]int64, t.MaxLevel())
	for i := range out {
		out[i] = t.thresholds[i+1] - t.thresholds[i]
	}
	return out
}

// Set holds the level tables of every skill in a catalog, keyed by skill ID
type Set map[string]*Table

// LevelForXP looks up the level for cumulative xp in the given skill's table
func (s Set) LevelForXP(skill string, xp float64) (int, error) {
	t, ok := s[skill]
	if !ok {
		return 0, fmt.Errorf("%w for skill %s", ErrNoTable, skill)
	}
	return t.LevelForXP(xp), nil
}

// XPThreshold returns the cumulative XP at which level starts for the given skill
func (s Set) XPThreshold(skill string, level int) (int64, error) {
	t, ok := s[skill]
	if !ok {
		return 0, fmt.Errorf("%w for skill %s", ErrNoTable, skill)
	}
	return t.XPThreshold(level)
}
