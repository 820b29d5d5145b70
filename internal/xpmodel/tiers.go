package xpmodel

import (
	"errors"
	"fmt"
)

// PremiumMultiplier scales every XP value for premium accounts
const PremiumMultiplier = 1.5

// DefaultSpread is the +/- band around average success XP observed in game
const DefaultSpread = 0.08

// Curve is the logistic success-chance shape shared by every tier:
// p = 1 / (1 + exp(-Slope * (level - (difficulty - Offset)))), clamped to [MinChance, MaxChance].
type Curve struct {
	Slope     float64
	Offset    float64
	MinChance float64
	MaxChance float64
}

// Tier holds the calibration constants for a band of recipe difficulties
type Tier struct {
	Name          string
	MaxDifficulty int // inclusive upper bound; ignored on the last tier
	Curve         Curve

	BaseXP       float64 // success XP at difficulty == level
	DifficultyXP float64 // extra success XP per level below difficulty
	TrivialBonus float64 // trivial XP at level == difficulty is difficulty + TrivialBonus
	TrivialSlope float64 // trivial XP lost per level above difficulty

	FailureBase float64
	FailureMin  float64
	FailureMax  float64
}

var defaultCurve = Curve{Slope: 0.606, Offset: 5.26, MinChance: 0.04, MaxChance: 0.95}

// DefaultTiers returns the calibrated low/mid/high tiers
func DefaultTiers() []Tier {
	return []Tier{
		{
			Name: "low", MaxDifficulty: 24, Curve: defaultCurve,
			BaseXP: 112, DifficultyXP: 12, TrivialBonus: 15, TrivialSlope: 3,
			FailureBase: 35, FailureMin: 20, FailureMax: 50,
		},
		{
			Name: "mid", MaxDifficulty: 40, Curve: defaultCurve,
			BaseXP: 110, DifficultyXP: 12, TrivialBonus: 15, TrivialSlope: 3,
			FailureBase: 38, FailureMin: 20, FailureMax: 50,
		},
		{
			Name: "high", Curve: defaultCurve,
			BaseXP: 108, DifficultyXP: 12, TrivialBonus: 15, TrivialSlope: 3,
			FailureBase: 40, FailureMin: 20, FailureMax: 50,
		},
	}
}

// DefaultSkillScale holds per-skill XP scaling that differs from 1.0
func DefaultSkillScale() map[string]float64 {
	return map[string]float64{
		"skill_winery_and_brewing": 0.88,
	}
}

// Validate checks the tier table is usable: ordered bounds, chances within (0, 1)
// and failure XP never above base success XP.
func (m *Model) Validate() error {
	if len(m.Tiers) == 0 {
		return errors.New("xp model has no tiers")
	}
	for i, t := range m.Tiers {
		c := t.Curve
		if c.MinChance <= 0 || c.MaxChance >= 1 || c.MinChance > c.MaxChance {
			return fmt.Errorf("tier %s: success chance bounds [%.3f, %.3f] must sit inside (0, 1)",
				t.Name, c.MinChance, c.MaxChance)
		}
		if t.FailureMin > t.FailureMax {
			return fmt.Errorf("tier %s: failure clamp [%.1f, %.1f] is inverted", t.Name, t.FailureMin, t.FailureMax)
		}
		if t.FailureMax > t.BaseXP {
			return fmt.Errorf("tier %s: failure XP %.1f exceeds base success XP %.1f", t.Name, t.FailureMax, t.BaseXP)
		}
		if i > 0 && i < len(m.Tiers)-1 && t.MaxDifficulty <= m.Tiers[i-1].MaxDifficulty {
			return fmt.Errorf("tier %s: max difficulty %d not above previous tier", t.Name, t.MaxDifficulty)
		}
	}
	return nil
}

// TierFor returns the first tier whose MaxDifficulty covers difficulty; the last tier is open-ended
func (m *Model) TierFor(difficulty int) Tier {
	last := len(m.Tiers) - 1
	for i, t := range m.Tiers {
		if i == last || difficulty <= t.MaxDifficulty {
			return t
		}
	}
	return m.Tiers[last]
}
