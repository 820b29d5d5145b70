package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/norraist/PaxDei-Planner/internal/models"
)

func testCatalog() *models.Catalog {
	cat := models.NewCatalog()
	cat.Skills["skill_tailoring"] = &models.Skill{ID: "skill_tailoring", Name: "Tailoring"}
	cat.Skills["skill_weaving"] = &models.Skill{ID: "skill_weaving", Name: "Weaving"}
	cat.Materials["item_linen_cloth"] = &models.Material{ID: "item_linen_cloth", Name: "Linen Cloth"}
	cat.Recipes = []*models.Recipe{
		{ID: "recipe_linen_shirt", Name: "Linen Shirt", Skill: "skill_tailoring"},
		{ID: "recipe_bandage", Name: "Bandage", Skill: "skill_tailoring"},
	}
	cat.TableErrors["skill_weaving"] = errors.New("no table")
	cat.Index()
	return cat
}

func testPlan() *models.SkillPlan {
	return &models.SkillPlan{
		Skill:     "skill_tailoring",
		Strategy:  "greedy",
		FromLevel: 1,
		ToLevel:   4,
		Steps: []models.PlanStep{
			{
				Skill: "skill_tailoring", RecipeID: "recipe_linen_shirt", Batches: 1200,
				FromLevel: 1, ToLevel: 4, ExpectedXP: 12345.67, Cost: 2400,
				Materials: []models.MaterialQty{{Material: "item_linen_cloth", Quantity: 2400}},
				CrossSkill: &models.CrossSkillDependency{
					Skill: "skill_weaving", RequiredLevel: 6, CurrentLevel: 3, Gap: 3, Material: "item_linen_cloth",
				},
				Alternatives: []models.Alternative{{RecipeID: "recipe_bandage", Score: 0.4}},
			},
		},
	}
}

func TestNumbersGroupDigits(t *testing.T) {
	tests := []struct {
		locale string
		got    func(*Numbers) string
		want   string
	}{
		{"en", func(n *Numbers) string { return n.Int(1234567) }, "1,234,567"},
		{"en", func(n *Numbers) string { return n.Float(1234.56) }, "1,234.6"},
		{"not a locale!", func(n *Numbers) string { return n.Int(1000) }, "1,000"},
	}
	for _, tt := range tests {
		if got := tt.got(NewNumbers(tt.locale)); got != tt.want {
			t.Errorf("locale %q: got %q, want %q", tt.locale, got, tt.want)
		}
	}
}

func TestStepNotes(t *testing.T) {
	got := StepNotes(testCatalog(), testPlan().Steps[0])
	want := "needs Weaving 6 (at 3) for Linen Cloth; alt: Bandage"
	if got != want {
		t.Errorf("StepNotes = %q, want %q", got, want)
	}
	if got := StepNotes(testCatalog(), models.PlanStep{}); got != "" {
		t.Errorf("empty step notes = %q", got)
	}
}

func TestPlanTable(t *testing.T) {
	var buf bytes.Buffer
	if err := PlanTable(&buf, testCatalog(), testPlan(), NewNumbers("en")); err != nil {
		t.Fatalf("PlanTable failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Linen Shirt", "1,200", "12,345.7", "Linen Cloth×2,400", "1 → 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan table missing %q:\n%s", want, out)
		}
	}
}

func TestShoppingAndSkillsTables(t *testing.T) {
	cat := testCatalog()
	var buf bytes.Buffer
	entries := []models.ShoppingListEntry{{Material: "item_linen_cloth", Quantity: 2400, Weight: 1.5, WeightedCost: 3600}}
	if err := ShoppingTable(&buf, cat, entries, NewNumbers("en")); err != nil {
		t.Fatalf("ShoppingTable failed: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "Linen Cloth") || !strings.Contains(out, "3,600.0") {
		t.Errorf("shopping table:\n%s", out)
	}

	buf.Reset()
	if err := SkillsTable(&buf, cat); err != nil {
		t.Fatalf("SkillsTable failed: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "Tailoring") || !strings.Contains(out, "no table") {
		t.Errorf("skills table:\n%s", out)
	}
}

func TestRenderSummary(t *testing.T) {
	s := Summary{
		Strategy: "dijkstra",
		Plans:    []models.SkillPlan{*testPlan()},
		Failures: []models.SkillFailure{{Skill: "skill_weaving", Err: errors.New("stalled")}},
		Shopping: []models.ShoppingListEntry{{Material: "item_linen_cloth", Quantity: 2400, Weight: 1, WeightedCost: 2400}},
	}
	out := RenderSummary(testCatalog(), s, NewNumbers("en"))
	for _, want := range []string{"dijkstra", "1 of 2", "1,200", "2,400.0", "failed Weaving: stalled"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPlanCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlanCSV(&buf, testCatalog(), testPlan()); err != nil {
		t.Fatalf("WritePlanCSV failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := [][]string{
		{"Step", "Recipe", "Name", "From Level", "To Level", "Batches", "XP Gain", "Cost", "Notes"},
		{"1", "recipe_linen_shirt", "Linen Shirt", "1", "4", "1200", "12345.7", "2400.0", "needs Weaving 6 (at 3) for Linen Cloth; alt: Bandage"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}
}

func TestSaveCSVFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cat := testCatalog()

	planPath, err := SavePlanCSV(dir, cat, testPlan())
	if err != nil {
		t.Fatalf("SavePlanCSV failed: %v", err)
	}
	if filepath.Base(planPath) != "plan_skill_tailoring.csv" {
		t.Errorf("plan path = %s", planPath)
	}

	entries := []models.ShoppingListEntry{{Material: "item_linen_cloth", Quantity: 4, Weight: 2.5, WeightedCost: 10}}
	shopPath, err := SaveShoppingCSV(dir, cat, entries)
	if err != nil {
		t.Fatalf("SaveShoppingCSV failed: %v", err)
	}
	data, err := os.ReadFile(shopPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "Material,Name,Qty,Weight,Weighted Cost\nitem_linen_cloth,Linen Cloth,4,2.5,10.0\n"
	if string(data) != want {
		t.Errorf("shopping_list.csv = %q, want %q", data, want)
	}
}
