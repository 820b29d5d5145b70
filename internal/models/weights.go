package models

import "strings"

// Rarity heuristic factors
const (
	minUsageRarity = 0.2
	leafBias       = 0.5
	tierStep       = 0.25
	itemLevelScale = 60.0
	rawDiscount    = 0.6
	relicPremium   = 1.8
	depthStep      = 0.5
	maxDepth       = 2
)

// DeriveRarityWeights builds default weights from how rare each input material looks:
// materials used by few recipes, high tiers, high item levels and relics cost more;
// gatherable and raw materials cost less, and deep crafting chains cost more. Explicit weights should be layered on top.
func DeriveRarityWeights(cat *Catalog) Weights {
	usage := make(map[string]int)
	for _, r := range cat.Recipes {
		if r.IsDev {
			continue
		}
		for _, in := range r.Inputs {
			usage[in.Material]++
		}
	}

	depths := make(map[string]int)
	weights := make(Weights, len(usage))
	for _, material := range sortedKeys(usage) {
		r := rarity(cat, material, usage[material])
		r *= 1.0 + float64(craftDepth(cat, material, depths, map[string]bool{}))*depthStep
		weights[material] = 1.0 + r
	}
	return weights
}

func rarity(cat *Catalog, material string, uses int) float64 {
	r := 1.0 / (1.0 + float64(uses))
	if r < minUsageRarity {
		r = minUsageRarity
	}
	if len(cat.Producers(material)) == 0 {
		r *= leafBias
	}

	raw := IsRawKey(material)
	relic := IsRelicKey(material)
	if m, ok := cat.Materials[material]; ok {
		if m.Tier > 1 {
			r *= 1.0 + float64(m.Tier-1)*tierStep
		}
		if m.ItemLevel > 0 {
			r *= 1.0 + float64(m.ItemLevel)/itemLevelScale
		}
		raw = raw || m.Raw
		relic = relic || m.Relic
		for _, c := range m.Categories {
			lower := strings.ToLower(c)
			raw = raw || strings.Contains(lower, "raw")
			relic = relic || strings.Contains(lower, "relic")
		}
	}
	if raw {
		r *= rawDiscount
	}
	if relic {
		r *= relicPremium
	}
	return r
}

// craftDepth counts crafted layers beneath a material, capped at maxDepth. Base
// materials are depth 0; a crafted one is one more than its shallowest producer's
// deepest input. Cycles count as depth 0.
func craftDepth(cat *Catalog, material string, memo map[string]int, trail map[string]bool) int {
	if d, ok := memo[material]; ok {
		return d
	}
	if trail[material] || cat.IsBaseMaterial(material) {
		return 0
	}
	trail[material] = true
	defer delete(trail, material)

	best := -1
	for _, p := range cat.Producers(material) {
		if p.IsDev {
			continue
		}
		deepest := 0
		for _, in := range p.Inputs {
			deepest = max(deepest, craftDepth(cat, in.Material, memo, trail))
		}
		if best < 0 || deepest+1 < best {
			best = deepest + 1
		}
	}
	if best < 0 {
		best = 0
	}
	best = min(best, maxDepth)
	memo[material] = best
	return best
}

// Merge layers explicit weights over defaults and returns a new map
func (w Weights) Merge(overrides Weights) Weights {
	out := make(Weights, len(w)+len(overrides))
	for k, v := range w {
		out[k] = v
	}
	for k, v := range overrides {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}
