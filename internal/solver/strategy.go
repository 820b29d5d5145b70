package solver

import (
	"fmt"
	"sort"

	"github.com/norraist/PaxDei-Planner/internal/models"
)

// Strategy names
const (
	StrategyGreedy   = "greedy"
	StrategyDijkstra = "dijkstra"
)

// Strategy produces an ordered plan for a single skill. Every implementation returns
// the same PlanStep shape so callers do not care which one ran.
type Strategy interface {
	Name() string
	Search(p *Problem) ([]models.PlanStep, error)
}

var strategies = map[string]func() Strategy{
	StrategyGreedy:   func() Strategy { return NewGreedy() },
	StrategyDijkstra: func() Strategy { return NewExact() },
}

// StrategyByName returns a fresh strategy for a registered name
func StrategyByName(name string) (Strategy, error) {
	ctor, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownStrategy, name, StrategyNames())
	}
	return ctor(), nil
}

// StrategyNames returns the registered strategy names in sorted order
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
