package solver

import (
	"testing"

	"github.com/norraist/PaxDei-Planner/internal/models"
)

func TestCrossSkillGap(t *testing.T) {
	f := newFixture(t, "skill_dependent", []int64{10, 10, 10})
	f.profile.Skills["skill_prereq"] = models.SkillProgress{Level: 10}
	f.profile.Skills["skill_dependent"] = models.SkillProgress{Level: 1}
	r := f.recipe("recipe_gated", 1)
	filter := NewFilter(f.cat, nil)

	tests := []struct {
		name     string
		required int
		want     Reason
		gap      int
	}{
		{"gap 7 exceeds 5", 17, ReasonCrossSkillGap, 7},
		{"gap 4 within 5", 14, Eligible, 4},
		{"gap 5 at the bound", 15, Eligible, 5},
		{"already satisfied", 8, Eligible, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.Prerequisites = []models.SkillRequirement{{Skill: "skill_prereq", Level: tt.required}}
			if got := filter.Check(r, f.profile, 1); got != tt.want {
				t.Errorf("Check = %s, want %s", got, tt.want)
			}
			dep := filter.CrossSkill(r, f.profile)
			if tt.gap <= 0 {
				if dep != nil {
					t.Errorf("satisfied prerequisite should not be reported, got %+v", dep)
				}
				return
			}
			if dep == nil || dep.Gap != tt.gap || dep.Skill != "skill_prereq" {
				t.Errorf("CrossSkill = %+v, want gap %d on skill_prereq", dep, tt.gap)
			}
		})
	}
}

func TestNegativeMaxGapDisablesLimit(t *testing.T) {
	f := newFixture(t, "skill_dependent", []int64{10})
	f.profile.MaxCrossSkillGap = -1
	r := f.recipe("recipe_gated", 1)
	r.Prerequisites = []models.SkillRequirement{{Skill: "skill_prereq", Level: 50}}

	if got := NewFilter(f.cat, nil).Check(r, f.profile, 1); got != Eligible {
		t.Errorf("Check = %s, want eligible with unlimited gap", got)
	}
}

func TestEligibilityRules(t *testing.T) {
	f := newFixture(t, "skill_tailoring", []int64{10, 10, 10})
	f.cat.Materials["item_relic_silk"] = &models.Material{ID: "item_relic_silk", Relic: true}
	f.profile.OwnedStations["crafter_loom"] = true

	base := func() *models.Recipe {
		return &models.Recipe{
			ID:       "recipe_shirt",
			Skill:    "skill_tailoring",
			GrantsXP: true,
			Stations: []string{"crafter_loom"},
			Inputs:   []models.MaterialQty{{Material: "item_linen", Quantity: 2}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*models.Recipe, *models.Profile, *Filter)
		level  int
		want   Reason
	}{
		{"plain recipe", func(*models.Recipe, *models.Profile, *Filter) {}, 1, Eligible},
		{"dev recipe", func(r *models.Recipe, _ *models.Profile, _ *Filter) { r.IsDev = true }, 1, ReasonDev},
		{"dev beats every other rule", func(r *models.Recipe, _ *models.Profile, _ *Filter) {
			r.IsDev = true
			r.UnlockLevel = 99
		}, 1, ReasonDev},
		{"processing recipe", func(r *models.Recipe, _ *models.Profile, _ *Filter) { r.GrantsXP = false }, 1, ReasonNoXP},
		{"below unlock", func(r *models.Recipe, _ *models.Profile, _ *Filter) { r.UnlockLevel = 2 }, 1, ReasonLocked},
		{"at unlock", func(r *models.Recipe, _ *models.Profile, _ *Filter) { r.UnlockLevel = 2 }, 2, Eligible},
		{"station not owned", func(r *models.Recipe, _ *models.Profile, _ *Filter) { r.Stations = []string{"crafter_forge"} }, 1, ReasonNoStation},
		{"any hosting station suffices", func(r *models.Recipe, _ *models.Profile, _ *Filter) {
			r.Stations = []string{"crafter_forge", "crafter_loom"}
		}, 1, Eligible},
		{"stations not required", func(r *models.Recipe, _ *models.Profile, f *Filter) {
			r.Stations = []string{"crafter_forge"}
			f.RequireStations = false
		}, 1, Eligible},
		{"relic input avoided", func(r *models.Recipe, p *models.Profile, _ *Filter) {
			r.Inputs = append(r.Inputs, models.MaterialQty{Material: "item_relic_silk", Quantity: 1})
			p.AvoidRelics = true
		}, 1, ReasonRelic},
		{"relic output avoided", func(r *models.Recipe, p *models.Profile, _ *Filter) {
			r.Outputs = []models.MaterialQty{{Material: "item_relic_cloak", Quantity: 1}}
			p.AvoidRelics = true
		}, 1, ReasonRelic},
		{"relic allowed", func(r *models.Recipe, _ *models.Profile, _ *Filter) {
			r.Inputs = append(r.Inputs, models.MaterialQty{Material: "item_relic_silk", Quantity: 1})
		}, 1, Eligible},
		{"disabled input", func(_ *models.Recipe, _ *models.Profile, f *Filter) {
			f.Materials = models.MaterialsConfig{"item_linen": {Enabled: false}}
		}, 1, ReasonDisabledMaterial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base()
			p := f.profile.Clone()
			filter := NewFilter(f.cat, nil)
			tt.mutate(r, p, filter)
			if got := filter.Check(r, p, tt.level); got != tt.want {
				t.Errorf("Check = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsEligibleUsesProfileLevel(t *testing.T) {
	f := newFixture(t, "skill_tailoring", []int64{10, 10, 10})
	r := f.recipe("recipe_shirt", 1)
	r.UnlockLevel = 3
	filter := NewFilter(f.cat, nil)

	f.profile.Skills["skill_tailoring"] = models.SkillProgress{Level: 2}
	if filter.IsEligible(r, f.profile) {
		t.Error("recipe should be locked at level 2")
	}
	f.profile.Skills["skill_tailoring"] = models.SkillProgress{Level: 3}
	if !filter.IsEligible(r, f.profile) {
		t.Error("recipe should unlock at level 3")
	}
}
