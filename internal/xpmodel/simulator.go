package xpmodel

import (
	"math"

	"github.com/norraist/PaxDei-Planner/internal/models"
)

// Model predicts XP for recipe attempts. It is read-only after construction and safe
// to share between goroutines.
type Model struct {
	Tiers      []Tier
	SkillScale map[string]float64
	Spread     float64
}

// NewModel returns the calibrated default model
func NewModel() *Model {
	return &Model{
		Tiers:      DefaultTiers(),
		SkillScale: DefaultSkillScale(),
		Spread:     DefaultSpread,
	}
}

// Result is the expected outcome of one attempt of a recipe at a given level
type Result struct {
	Tier          string
	SuccessChance float64
	Trivial       bool // level has reached the recipe's difficulty

	XPPerSuccessPreCap  float64
	XPPerSuccessTrivial float64
	XPPerFailure        float64
	SuccessXPLow        float64
	SuccessXPHigh       float64

	ExpectedXPPerAttempt float64

	// MaterialFactor is the expected fraction of declared inputs consumed per attempt
	MaterialFactor float64
}

// SuccessXP returns the success XP for whichever regime applies
func (r Result) SuccessXP() float64 {
	if r.Trivial {
		return r.XPPerSuccessTrivial
	}
	return r.XPPerSuccessPreCap
}

// Simulate evaluates one attempt of recipe at skill level
func (m *Model) Simulate(recipe *models.Recipe, level int, premium bool) Result {
	tier := m.TierFor(recipe.Difficulty)
	difficulty := float64(recipe.Difficulty)
	lvl := float64(level)

	mult := recipe.XPMultiplier
	if mult <= 0 {
		mult = 1.0
	}
	scale := m.scaleFor(recipe.Skill)

	res := Result{
		Tier:          tier.Name,
		SuccessChance: successChance(tier.Curve, lvl, difficulty),
		Trivial:       level >= recipe.Difficulty,
	}

	below := math.Max(0, difficulty-lvl)
	above := math.Max(0, lvl-difficulty)
	res.XPPerSuccessPreCap = (tier.BaseXP + tier.DifficultyXP*below) * mult * scale
	res.XPPerSuccessTrivial = math.Max(0, difficulty+tier.TrivialBonus-tier.TrivialSlope*above) * scale

	failure := tier.FailureBase + math.Max(0, float64(level-recipe.UnlockLevel))
	failure = clamp(failure, tier.FailureMin, tier.FailureMax) * mult * scale
	if res.Trivial && failure > res.XPPerSuccessTrivial {
		failure = res.XPPerSuccessTrivial
	}
	res.XPPerFailure = failure

	p := res.SuccessChance
	res.ExpectedXPPerAttempt = p*res.SuccessXP() + (1-p)*res.XPPerFailure

	if recipe.PreserveInputsOnFailure {
		res.MaterialFactor = p
	} else {
		res.MaterialFactor = 1.0
	}

	if premium {
		res.XPPerSuccessPreCap *= PremiumMultiplier
		res.XPPerSuccessTrivial *= PremiumMultiplier
		res.XPPerFailure *= PremiumMultiplier
		res.ExpectedXPPerAttempt *= PremiumMultiplier
	}
	res.SuccessXPLow = res.SuccessXP() * (1 - m.Spread)
	res.SuccessXPHigh = res.SuccessXP() * (1 + m.Spread)

	return res
}

// ExpectedInputs returns the materials consumed by a number of batches, rounded up per material
func ExpectedInputs(recipe *models.Recipe, res Result, batches int) []models.MaterialQty {
	if batches <= 0 || len(recipe.Inputs) == 0 {
		return nil
	}
	out := make([]models.MaterialQty, 0, len(recipe.Inputs))
	for _, in := range recipe.Inputs {
		qty := float64(in.Quantity*batches) * res.MaterialFactor
		out = append(out, models.MaterialQty{
			Material: in.Material,
			Quantity: int(math.Ceil(qty - 1e-9)),
		})
	}
	return out
}

func (m *Model) scaleFor(skill string) float64 {
	if s, ok := m.SkillScale[skill]; ok && s > 0 {
		return s
	}
	return 1.0
}

func successChance(c Curve, level, difficulty float64) float64 {
	z := c.Slope * (level - (difficulty - c.Offset))
	p := 1.0 / (1.0 + math.Exp(-z))
	return clamp(p, c.MinChance, c.MaxChance)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
