package models

// CrossSkillDependency records a prerequisite level in another skill that a step's recipe relies on
type CrossSkillDependency struct {
	Skill         string
	RequiredLevel int
	CurrentLevel  int
	Gap           int
	Material      string
}

// Alternative is a runner-up recipe that was considered for a step
type Alternative struct {
	RecipeID string
	Score    float64 // weighted cost per expected XP
}

// PlanStep is a run of batches of one recipe covering a range of levels
type PlanStep struct {
	Skill      string
	RecipeID   string
	Batches    int
	FromLevel  int
	FromXP     float64
	ToLevel    int
	ToXP       float64
	ExpectedXP float64
	Materials  []MaterialQty // expected consumption, sorted by material
	Cost       float64       // weighted material cost

	CrossSkill   *CrossSkillDependency
	Alternatives []Alternative
}

// SkillPlan is the ordered plan for one skill
type SkillPlan struct {
	Skill     string
	Strategy  string
	FromLevel int
	ToLevel   int
	Steps     []PlanStep
}

// TotalBatches sums batches across all steps
func (p *SkillPlan) TotalBatches() int {
	total := 0
	for _, s := range p.Steps {
		total += s.Batches
	}
	return total
}

// TotalCost sums weighted material cost across all steps
func (p *SkillPlan) TotalCost() float64 {
	total := 0.0
	for _, s := range p.Steps {
		total += s.Cost
	}
	return total
}

// TotalXP sums expected XP across all steps
func (p *SkillPlan) TotalXP() float64 {
	total := 0.0
	for _, s := range p.Steps {
		total += s.ExpectedXP
	}
	return total
}

// SkillFailure is a skill whose plan could not be produced
type SkillFailure struct {
	Skill string
	Err   error
}

// ShoppingListEntry is one aggregated material requirement
type ShoppingListEntry struct {
	Material     string
	Quantity     int
	Weight       float64
	WeightedCost float64
}
