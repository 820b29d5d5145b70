package shopping

import (
	"sort"

	"github.com/norraist/PaxDei-Planner/internal/models"
)

// Aggregate sums the expected material consumption of every step of every plan into
// one weighted shopping list
func Aggregate(plans []models.SkillPlan, weights models.Weights) []models.ShoppingListEntry {
	totals := make(map[string]int)
	for _, plan := range plans {
		for _, step := range plan.Steps {
			for _, m := range step.Materials {
				totals[m.Material] += m.Quantity
			}
		}
	}
	return build(totals, weights)
}

// Merge combines already aggregated lists. Merging is associative and commutative, so
// Merge(Aggregate(A, B), Aggregate(C)) equals Aggregate(A, B, C).
func Merge(weights models.Weights, lists ...[]models.ShoppingListEntry) []models.ShoppingListEntry {
	totals := make(map[string]int)
	for _, list := range lists {
		for _, e := range list {
			totals[e.Material] += e.Quantity
		}
	}
	return build(totals, weights)
}

// TotalCost sums the weighted cost of a shopping list
func TotalCost(entries []models.ShoppingListEntry) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.WeightedCost
	}
	return total
}

func build(totals map[string]int, weights models.Weights) []models.ShoppingListEntry {
	entries := make([]models.ShoppingListEntry, 0, len(totals))
	for material, qty := range totals {
		if qty <= 0 {
			continue
		}
		w := weights.Of(material)
		entries = append(entries, models.ShoppingListEntry{
			Material:     material,
			Quantity:     qty,
			Weight:       w,
			WeightedCost: float64(qty) * w,
		})
	}
	// Highest weighted cost first, ties by material ID
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].WeightedCost != entries[j].WeightedCost {
			return entries[i].WeightedCost > entries[j].WeightedCost
		}
		return entries[i].Material < entries[j].Material
	})
	return entries
}
