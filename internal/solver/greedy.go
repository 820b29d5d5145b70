package solver

import (
	"fmt"
	"math"

	"github.com/norraist/PaxDei-Planner/internal/models"
)

// GreedySolver picks the most cost-efficient recipe at each level, looking one step
// ahead so it does not walk into a level where nothing yields XP
type GreedySolver struct {
	// Lookahead enables the one-step lookahead; plain greedy when false
	Lookahead bool
}

// NewGreedy creates a greedy solver with lookahead enabled
func NewGreedy() *GreedySolver {
	return &GreedySolver{Lookahead: true}
}

// Name returns the strategy name
func (g *GreedySolver) Name() string {
	return StrategyGreedy
}

// Search plans the skill from its start state to the target level
func (g *GreedySolver) Search(p *Problem) ([]models.PlanStep, error) {
	if err := p.prepare(); err != nil {
		return nil, err
	}

	state := p.Start
	var steps []models.PlanStep

	for i := 0; !p.done(state); i++ {
		if i >= MaxSearchSteps {
			return nil, fmt.Errorf("greedy search for %s exceeded %d steps at level %d", p.Skill, MaxSearchSteps, state.Level)
		}

		opts := p.options(state)
		if len(opts) == 0 {
			return nil, p.stall(state)
		}

		best := opts[0]
		if g.Lookahead {
			best = g.choose(p, state, opts)
		}

		next, step := p.apply(state, best)
		step.Alternatives = p.alternatives(opts, best.recipe.ID)
		steps = appendMerged(steps, step)
		state = next
	}

	return steps, nil
}

// choose returns the option with the lowest lookahead-adjusted score.
// Options arrive sorted by plain score, so ties keep the plain ordering.
func (g *GreedySolver) choose(p *Problem, state State, opts []option) option {
	bestIdx := -1
	bestScore := math.Inf(1)
	for i, o := range opts {
		adjusted := g.lookahead(p, state, o)
		if adjusted < bestScore {
			bestIdx = i
			bestScore = adjusted
		}
	}
	if bestIdx < 0 {
		// Every option strands; take the plain best and let the next step report the stall
		return opts[0]
	}
	return opts[bestIdx]
}

// lookahead scores an option by the blended efficiency of taking it and then the best
// option at the resulting state. A non-terminal resulting state with no option scores +Inf.
func (g *GreedySolver) lookahead(p *Problem, state State, o option) float64 {
	next, step := p.apply(state, o)
	if p.done(next) {
		return step.Cost / step.ExpectedXP
	}
	nextOpts := p.options(next)
	if len(nextOpts) == 0 {
		return math.Inf(1)
	}
	_, follow := p.apply(next, nextOpts[0])
	return (step.Cost + follow.Cost) / (step.ExpectedXP + follow.ExpectedXP)
}
