package models

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func testCatalog() *Catalog {
	cat := NewCatalog()
	cat.Skills["skill_tailoring"] = &Skill{ID: "skill_tailoring", Name: "Tailoring"}
	cat.Skills["skill_weaving"] = &Skill{ID: "skill_weaving", Name: "Weaving"}
	cat.Materials["item_raw_flax"] = &Material{ID: "item_raw_flax", Name: "Flax", Raw: true}
	cat.Materials["item_relic_thread"] = &Material{ID: "item_relic_thread", Name: "Relic Thread", Relic: true}
	cat.Materials["item_linen"] = &Material{ID: "item_linen", Name: "Linen"}
	cat.Recipes = []*Recipe{
		{ID: "recipe_shirt", Skill: "skill_tailoring", Inputs: []MaterialQty{{"item_linen", 2}}},
		{ID: "recipe_linen", Skill: "skill_weaving", Inputs: []MaterialQty{{"item_raw_flax", 3}}, Outputs: []MaterialQty{{"item_linen", 1}}},
		{ID: "recipe_cloak", Skill: "skill_tailoring", Inputs: []MaterialQty{{"item_linen", 4}, {"item_relic_thread", 1}}},
	}
	cat.Index()
	return cat
}

func TestCatalogIndex(t *testing.T) {
	cat := testCatalog()

	if !cat.Indexed() {
		t.Fatal("catalog should be indexed")
	}
	if cat.Recipes[0].ID != "recipe_cloak" {
		t.Errorf("recipes not sorted: first = %s", cat.Recipes[0].ID)
	}
	tailoring := cat.RecipesForSkill("skill_tailoring")
	if len(tailoring) != 2 {
		t.Fatalf("RecipesForSkill(tailoring) = %d recipes, want 2", len(tailoring))
	}
	if got := cat.Producers("item_linen"); len(got) != 1 || got[0].ID != "recipe_linen" {
		t.Errorf("Producers(item_linen) = %v", got)
	}
	if cat.Recipe("recipe_shirt") == nil || cat.Recipe("recipe_missing") != nil {
		t.Error("Recipe lookup by ID is wrong")
	}
}

func TestCatalogMaterialClassification(t *testing.T) {
	cat := testCatalog()

	if !cat.IsRelic("item_relic_thread") {
		t.Error("relic flagged material should be relic")
	}
	if !cat.IsRelic("item_unknown_relic_gem") {
		t.Error("relic naming convention should be honoured for unknown materials")
	}
	if cat.IsRelic("item_linen") {
		t.Error("linen should not be relic")
	}
	if !cat.IsBaseMaterial("item_raw_flax") {
		t.Error("raw flax should be a base material")
	}
	if cat.IsBaseMaterial("item_linen") {
		t.Error("linen is crafted, not a base material")
	}
}

func TestResolveSkill(t *testing.T) {
	cat := testCatalog()

	tests := []struct {
		key  string
		want string
	}{
		{"skill_tailoring", "skill_tailoring"},
		{"Skill_Tailoring", "skill_tailoring"},
		{"tailoring", "skill_tailoring"},
		{"weaving", "skill_weaving"},
	}
	for _, tt := range tests {
		got, err := cat.ResolveSkill(tt.key)
		if err != nil {
			t.Errorf("ResolveSkill(%q) error: %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveSkill(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}

	_, err := cat.ResolveSkill("taloring")
	if !errors.Is(err, ErrUnknownSkill) {
		t.Fatalf("expected ErrUnknownSkill, got %v", err)
	}
	if !strings.Contains(err.Error(), "did you mean skill_tailoring") {
		t.Errorf("expected a suggestion, got %q", err.Error())
	}

	_, err = cat.ResolveSkill("astronomy")
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("far-off key should fail without suggestion, got %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	cat := testCatalog()
	if got := cat.DisplayName("skill_tailoring"); got != "Tailoring" {
		t.Errorf("DisplayName(skill) = %q", got)
	}
	if got := cat.DisplayName("item_raw_flax"); got != "Flax" {
		t.Errorf("DisplayName(material) = %q", got)
	}
	if got := cat.DisplayName("nothing"); got != "nothing" {
		t.Errorf("DisplayName fallback = %q", got)
	}
}

func TestDeriveRarityWeights(t *testing.T) {
	cat := testCatalog()
	w := DeriveRarityWeights(cat)

	if w.Of("item_relic_thread") <= w.Of("item_raw_flax") {
		t.Errorf("relic weight %.3f should exceed raw weight %.3f",
			w.Of("item_relic_thread"), w.Of("item_raw_flax"))
	}
	for material, weight := range w {
		if weight <= 1.0 {
			t.Errorf("weight for %s = %.3f, want > 1", material, weight)
		}
	}

	merged := w.Merge(Weights{"item_raw_flax": 7})
	if merged.Of("item_raw_flax") != 7 {
		t.Errorf("override not applied: %.3f", merged.Of("item_raw_flax"))
	}
	if w.Of("item_raw_flax") == 7 {
		t.Error("Merge must not mutate the receiver")
	}
}

func TestRarityWeightsPenaliseCraftDepth(t *testing.T) {
	cat := testCatalog()
	w := DeriveRarityWeights(cat)

	// item_linen: two uses gives 1/3, one crafted layer multiplies by 1.5
	if got := w.Of("item_linen"); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("linen weight = %v, want 1.5", got)
	}
	// item_raw_flax: one use, leaf bias, raw discount, no depth
	if got, want := w.Of("item_raw_flax"), 1.0+0.5*0.5*0.6; math.Abs(got-want) > 1e-9 {
		t.Errorf("flax weight = %v, want %v", got, want)
	}
}

func TestRarityWeightsSurviveCycles(t *testing.T) {
	cat := NewCatalog()
	cat.Recipes = []*Recipe{
		{ID: "recipe_a", Skill: "skill_x", Inputs: []MaterialQty{{"item_b", 1}}, Outputs: []MaterialQty{{"item_a", 1}}},
		{ID: "recipe_b", Skill: "skill_x", Inputs: []MaterialQty{{"item_a", 1}}, Outputs: []MaterialQty{{"item_b", 1}}},
		{ID: "recipe_c", Skill: "skill_x", Inputs: []MaterialQty{{"item_a", 1}}, Outputs: []MaterialQty{{"item_c", 1}}},
	}
	cat.Index()

	first := DeriveRarityWeights(cat)
	for i := 0; i < 10; i++ {
		if got := DeriveRarityWeights(cat); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d weights = %v, want %v", i, got, first)
		}
	}
	for material, weight := range first {
		if math.IsInf(weight, 0) || math.IsNaN(weight) || weight <= 1 {
			t.Errorf("weight for %s = %v", material, weight)
		}
	}
}
