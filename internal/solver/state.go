package solver

import (
	"math"

	"github.com/norraist/PaxDei-Planner/internal/levels"
)

// State is a skill's progress during search: a level and the XP earned into it
type State struct {
	Level int
	XP    float64
}

// advance adds gained XP and rolls any overflow across level boundaries.
// Progress stops at the table's max level.
func advance(table *levels.Table, s State, gained float64) State {
	s.XP += gained
	for s.Level < table.MaxLevel() {
		need := float64(table.XPToNext(s.Level))
		if s.XP+XPEpsilon < need {
			break
		}
		s.XP -= need
		if s.XP < 0 {
			s.XP = 0
		}
		s.Level++
	}
	if s.Level >= table.MaxLevel() {
		s.XP = 0
	}
	return s
}

// normalize rolls an out-of-band starting XP forward so the state sits inside its level
func normalize(table *levels.Table, s State) State {
	if s.Level > table.MaxLevel() {
		return State{Level: table.MaxLevel()}
	}
	if s.XP < 0 {
		s.XP = 0
	}
	return advance(table, s, 0)
}

// remaining returns the XP still needed to leave the current level
func remaining(table *levels.Table, s State) float64 {
	return math.Max(0, float64(table.XPToNext(s.Level))-s.XP)
}

// batchesFor returns the smallest number of batches yielding at least need XP
func batchesFor(need, xpPerBatch float64) int {
	if xpPerBatch <= 0 {
		return 0
	}
	n := int(math.Ceil((need - XPEpsilon) / xpPerBatch))
	if n < 1 {
		n = 1
	}
	return n
}

// visitKey buckets states by whole XP for the exact search's settled set
type visitKey struct {
	level int
	xp    int64
}

func (s State) key() visitKey {
	return visitKey{level: s.Level, xp: int64(math.Floor(s.XP))}
}
