package solver

import (
	"math"
	"testing"

	"github.com/norraist/PaxDei-Planner/internal/levels"
	"github.com/norraist/PaxDei-Planner/internal/models"
	"github.com/norraist/PaxDei-Planner/internal/xpmodel"
)

// fakeSim returns fixed expected XP per recipe and level
type fakeSim struct {
	xp       map[string]map[int]float64 // recipe -> level -> XP
	fallback map[string]float64         // recipe -> XP at unlisted levels
}

func (f fakeSim) Simulate(r *models.Recipe, level int, premium bool) xpmodel.Result {
	v, ok := f.xp[r.ID][level]
	if !ok {
		v = f.fallback[r.ID]
	}
	if premium {
		v *= xpmodel.PremiumMultiplier
	}
	return xpmodel.Result{
		SuccessChance:        0.9,
		XPPerSuccessPreCap:   v,
		ExpectedXPPerAttempt: v,
		MaterialFactor:       1.0,
	}
}

type fixture struct {
	skill   string
	cat     *models.Catalog
	profile *models.Profile
}

func newFixture(t *testing.T, skill string, increments []int64) *fixture {
	t.Helper()
	cat := models.NewCatalog()
	cat.Skills[skill] = &models.Skill{ID: skill, Name: skill}
	table, err := levels.NewTable(skill, increments)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	cat.Tables[skill] = table
	return &fixture{skill: skill, cat: cat, profile: models.NewProfile()}
}

// recipe adds a recipe that consumes cost units of a dedicated material
func (f *fixture) recipe(id string, cost int) *models.Recipe {
	r := &models.Recipe{
		ID:       id,
		Skill:    f.skill,
		GrantsXP: true,
		Inputs:   []models.MaterialQty{{Material: "item_" + id, Quantity: cost}},
	}
	f.cat.Recipes = append(f.cat.Recipes, r)
	return r
}

func (f *fixture) problem(sim Simulator, start State, target int) *Problem {
	f.cat.Index()
	return &Problem{
		Skill:   f.skill,
		Start:   start,
		Target:  target,
		Table:   f.cat.Tables[f.skill],
		Recipes: f.cat.RecipesForSkill(f.skill),
		Profile: f.profile,
		Filter:  NewFilter(f.cat, nil),
		Sim:     sim,
		TopK:    DefaultTopK,
	}
}

// checkPlanShape verifies steps chain level ranges from start to at least target
func checkPlanShape(t *testing.T, steps []models.PlanStep, start, target int) {
	t.Helper()
	if len(steps) == 0 {
		if start < target {
			t.Fatalf("empty plan from %d to %d", start, target)
		}
		return
	}
	if steps[0].FromLevel != start {
		t.Errorf("first step starts at level %d, want %d", steps[0].FromLevel, start)
	}
	for i, s := range steps {
		if s.Batches <= 0 {
			t.Errorf("step %d has %d batches", i, s.Batches)
		}
		if s.ToLevel < s.FromLevel {
			t.Errorf("step %d goes backwards: %d -> %d", i, s.FromLevel, s.ToLevel)
		}
		if i > 0 && s.FromLevel != steps[i-1].ToLevel {
			t.Errorf("step %d starts at %d but previous ended at %d", i, s.FromLevel, steps[i-1].ToLevel)
		}
		if s.ExpectedXP <= 0 || math.IsNaN(s.Cost) {
			t.Errorf("step %d has XP %v cost %v", i, s.ExpectedXP, s.Cost)
		}
	}
	if last := steps[len(steps)-1]; last.ToLevel < target {
		t.Errorf("plan ends at level %d, want >= %d", last.ToLevel, target)
	}
}

func totalCost(steps []models.PlanStep) float64 {
	total := 0.0
	for _, s := range steps {
		total += s.Cost
	}
	return total
}

func totalBatches(steps []models.PlanStep) int {
	total := 0
	for _, s := range steps {
		total += s.Batches
	}
	return total
}
