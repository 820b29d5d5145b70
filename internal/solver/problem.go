package solver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/norraist/PaxDei-Planner/internal/levels"
	"github.com/norraist/PaxDei-Planner/internal/models"
	"github.com/norraist/PaxDei-Planner/internal/xpmodel"
)

// Simulator predicts the outcome of one attempt of a recipe
type Simulator interface {
	Simulate(recipe *models.Recipe, level int, premium bool) xpmodel.Result
}

// Problem is the read-only input for planning a single skill
type Problem struct {
	Skill   string
	Start   State
	Target  int
	Table   *levels.Table
	Recipes []*models.Recipe
	Profile *models.Profile
	Filter  *Filter
	Sim     Simulator
	Weights models.Weights
	TopK    int

	// static holds each recipe's level-independent eligibility, filled by prepare
	static map[string]Reason
}

func (p *Problem) prepare() error {
	switch {
	case p.Table == nil:
		return fmt.Errorf("%w for skill %s", levels.ErrNoTable, p.Skill)
	case p.Filter == nil || p.Sim == nil || p.Profile == nil:
		return errors.New("problem is missing filter, simulator or profile")
	case p.Target > p.Table.MaxLevel():
		return fmt.Errorf("target level %d for %s exceeds max level %d", p.Target, p.Skill, p.Table.MaxLevel())
	}
	p.Start = normalize(p.Table, p.Start)
	if p.static == nil {
		p.static = make(map[string]Reason, len(p.Recipes))
		for _, r := range p.Recipes {
			if r.Skill != p.Skill {
				continue
			}
			// Unlock level is the only rule that depends on the searched skill's level
			p.static[r.ID] = p.Filter.Check(r, p.Profile, maxInt)
		}
	}
	return nil
}

const maxInt = int(^uint(0) >> 1)

func (p *Problem) done(s State) bool {
	return s.Level >= p.Target
}

// options returns every recipe that is eligible and yields XP at state, best first
func (p *Problem) options(s State) []option {
	var opts []option
	premium := p.Profile.PremiumAccount
	for _, r := range p.Recipes {
		reason, ok := p.static[r.ID]
		if !ok || reason != Eligible || s.Level < r.UnlockLevel {
			continue
		}
		res := p.Sim.Simulate(r, s.Level, premium)
		if res.ExpectedXPPerAttempt <= XPEpsilon {
			continue
		}
		metric := EfficiencyMetric{
			BatchCost: batchCost(r, res, p.Weights),
			BatchXP:   res.ExpectedXPPerAttempt,
		}
		opts = append(opts, option{recipe: r, result: res, metric: metric, score: metric.Calculate()})
	}
	sortOptions(opts)
	return opts
}

// apply runs an option until the current level completes and returns the resulting state
// and the step that describes it
func (p *Problem) apply(s State, o option) (State, models.PlanStep) {
	batches := batchesFor(remaining(p.Table, s), o.metric.BatchXP)
	gained := float64(batches) * o.metric.BatchXP
	next := advance(p.Table, s, gained)

	step := models.PlanStep{
		Skill:      p.Skill,
		RecipeID:   o.recipe.ID,
		Batches:    batches,
		FromLevel:  s.Level,
		FromXP:     s.XP,
		ToLevel:    next.Level,
		ToXP:       next.XP,
		ExpectedXP: gained,
		Materials:  xpmodel.ExpectedInputs(o.recipe, o.result, batches),
		Cost:       float64(batches) * o.metric.BatchCost,
		CrossSkill: p.Filter.CrossSkill(o.recipe, p.Profile),
	}
	return next, step
}

// alternatives lists up to TopK runner-up options, skipping the chosen recipe
func (p *Problem) alternatives(opts []option, chosen string) []models.Alternative {
	if p.TopK <= 0 {
		return nil
	}
	var out []models.Alternative
	for _, o := range opts {
		if o.recipe.ID == chosen {
			continue
		}
		out = append(out, models.Alternative{RecipeID: o.recipe.ID, Score: o.score})
		if len(out) == p.TopK {
			break
		}
	}
	return out
}

// stall builds the error describing why no recipe can progress the skill at state
func (p *Problem) stall(s State) *StallError {
	err := &StallError{
		Skill:    p.Skill,
		Level:    s.Level,
		XP:       s.XP,
		Target:   p.Target,
		Excluded: make(map[Reason]int),
	}
	stations := make(map[string]bool)
	for _, r := range p.Recipes {
		if r.Skill != p.Skill {
			continue
		}
		reason := p.Filter.Check(r, p.Profile, s.Level)
		if reason == Eligible {
			reason = ReasonTrivialized
		}
		err.Excluded[reason]++
		if reason == ReasonNoStation && p.Filter.check(r, p.Profile, s.Level, false) == Eligible {
			for _, st := range r.Stations {
				stations[st] = true
			}
		}
	}
	for st := range stations {
		err.MissingStations = append(err.MissingStations, st)
	}
	sort.Strings(err.MissingStations)
	return err
}

// appendMerged appends a step, folding it into the previous one when the same recipe continues
func appendMerged(steps []models.PlanStep, step models.PlanStep) []models.PlanStep {
	if n := len(steps); n > 0 {
		last := &steps[n-1]
		if last.RecipeID == step.RecipeID && last.ToLevel == step.FromLevel && sameDependency(last.CrossSkill, step.CrossSkill) {
			last.Batches += step.Batches
			last.ToLevel = step.ToLevel
			last.ToXP = step.ToXP
			last.ExpectedXP += step.ExpectedXP
			last.Cost += step.Cost
			last.Materials = mergeMaterials(last.Materials, step.Materials)
			return steps
		}
	}
	return append(steps, step)
}

func sameDependency(a, b *models.CrossSkillDependency) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func mergeMaterials(a, b []models.MaterialQty) []models.MaterialQty {
	totals := make(map[string]int, len(a)+len(b))
	for _, m := range a {
		totals[m.Material] += m.Quantity
	}
	for _, m := range b {
		totals[m.Material] += m.Quantity
	}
	out := make([]models.MaterialQty, 0, len(totals))
	for id, qty := range totals {
		out = append(out, models.MaterialQty{Material: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Material < out[j].Material })
	return out
}
