package loader

import (
	"sort"

	"github.com/norraist/PaxDei-Planner/internal/models"
)

// derivePrerequisites records, for every recipe, the levels other skills need before
// its crafted ingredients can be produced. Ingredients made by the recipe's own skill
// are followed down to their own ingredients; base materials end the walk.
func derivePrerequisites(cat *models.Catalog) {
	for _, r := range cat.Recipes {
		needs := make(map[string]models.SkillRequirement)
		var visit func(material string, trail map[string]bool)
		visit = func(material string, trail map[string]bool) {
			if trail[material] || cat.IsBaseMaterial(material) {
				return
			}
			producer := chooseProducer(cat, material)
			if producer == nil {
				return
			}
			if producer.Skill != r.Skill {
				level := max(producer.UnlockLevel, producer.Difficulty)
				if cur, ok := needs[producer.Skill]; !ok || level > cur.Level {
					needs[producer.Skill] = models.SkillRequirement{Skill: producer.Skill, Level: level, Material: material}
				}
				return
			}
			trail[material] = true
			for _, in := range producer.Inputs {
				visit(in.Material, trail)
			}
			delete(trail, material)
		}
		for _, in := range r.Inputs {
			visit(in.Material, map[string]bool{})
		}

		r.Prerequisites = r.Prerequisites[:0]
		for _, req := range needs {
			r.Prerequisites = append(r.Prerequisites, req)
		}
		sort.Slice(r.Prerequisites, func(i, j int) bool {
			return r.Prerequisites[i].Skill < r.Prerequisites[j].Skill
		})
		if len(r.Prerequisites) == 0 {
			r.Prerequisites = nil
		}
	}
}

// chooseProducer picks the easiest recipe that outputs a material
func chooseProducer(cat *models.Catalog, material string) *models.Recipe {
	var best *models.Recipe
	for _, p := range cat.Producers(material) {
		if p.IsDev {
			continue
		}
		if best == nil || p.Difficulty < best.Difficulty ||
			(p.Difficulty == best.Difficulty && p.UnlockLevel < best.UnlockLevel) {
			best = p
		}
	}
	return best
}
