package solver

import (
	"math"
	"sort"

	"github.com/norraist/PaxDei-Planner/internal/models"
	"github.com/norraist/PaxDei-Planner/internal/xpmodel"
)

// EfficiencyMetric represents the components of a cost-efficiency score
type EfficiencyMetric struct {
	BatchCost float64 // weighted material cost of one batch
	BatchXP   float64 // expected XP of one batch
}

// Calculate returns weighted material cost per expected XP; lower is better
func (m EfficiencyMetric) Calculate() float64 {
	if m.BatchXP <= 0 {
		return math.Inf(1)
	}
	return m.BatchCost / m.BatchXP
}

// option is an eligible recipe evaluated at a specific state
type option struct {
	recipe *models.Recipe
	result xpmodel.Result
	metric EfficiencyMetric
	score  float64
}

// batchCost returns the expected weighted material cost of one batch
func batchCost(r *models.Recipe, res xpmodel.Result, weights models.Weights) float64 {
	cost := 0.0
	for _, in := range r.Inputs {
		cost += float64(in.Quantity) * weights.Of(in.Material)
	}
	return cost * res.MaterialFactor
}

// sortOptions orders options by score, then higher XP, then recipe ID for determinism
func sortOptions(opts []option) {
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].score != opts[j].score {
			return opts[i].score < opts[j].score
		}
		if opts[i].metric.BatchXP != opts[j].metric.BatchXP {
			return opts[i].metric.BatchXP > opts[j].metric.BatchXP
		}
		return opts[i].recipe.ID < opts[j].recipe.ID
	})
}
