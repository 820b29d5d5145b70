package solver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrSearchBudget is returned when the exact search settles too many states
	ErrSearchBudget = errors.New("search budget exhausted")

	// ErrUnknownStrategy is returned for an unregistered strategy name
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// StallError reports that planning for a skill stopped before its target level
// because no eligible recipe yields XP
type StallError struct {
	Skill           string
	Level           int
	XP              float64
	Target          int
	Excluded        map[Reason]int
	MissingStations []string
}

func (e *StallError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no eligible recipe for %s at level %d (%.1f XP into level) before target %d",
		e.Skill, e.Level, e.XP, e.Target)

	reasons := make([]Reason, 0, len(e.Excluded))
	for r := range e.Excluded {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	if len(reasons) == 0 {
		b.WriteString(": the skill has no recipes")
	} else {
		parts := make([]string, len(reasons))
		for i, r := range reasons {
			parts[i] = fmt.Sprintf("%d %s", e.Excluded[r], r)
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if len(e.MissingStations) > 0 {
		fmt.Fprintf(&b, "; building %s would unlock recipes", strings.Join(e.MissingStations, " or "))
	}
	return b.String()
}
