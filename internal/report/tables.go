package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/norraist/PaxDei-Planner/internal/models"
)

// PlanTable writes one skill's steps as a table
func PlanTable(w io.Writer, cat *models.Catalog, plan *models.SkillPlan, nums *Numbers) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"#", "Recipe", "Levels", "Batches", "XP", "Cost", "Materials", "Notes"}),
	)
	for i, step := range plan.Steps {
		row := []string{
			fmt.Sprintf("%d", i+1),
			cat.DisplayName(step.RecipeID),
			fmt.Sprintf("%d → %d", step.FromLevel, step.ToLevel),
			nums.Int(step.Batches),
			nums.Float(step.ExpectedXP),
			nums.Float(step.Cost),
			formatMaterials(cat, step.Materials, nums),
			StepNotes(cat, step),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// ShoppingTable writes the aggregated material list as a table
func ShoppingTable(w io.Writer, cat *models.Catalog, entries []models.ShoppingListEntry, nums *Numbers) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Material", "Qty", "Weight", "Weighted Cost"}),
	)
	for _, e := range entries {
		row := []string{
			cat.DisplayName(e.Material),
			nums.Int(e.Quantity),
			nums.Float(e.Weight),
			nums.Float(e.WeightedCost),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// SkillsTable lists catalog skills with their level table size or discovery problem
func SkillsTable(w io.Writer, cat *models.Catalog) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Skill", "Name", "Max Level", "Recipes", "Table"}),
	)
	for _, id := range cat.SkillIDs() {
		maxLevel, status := "-", "missing"
		if t, ok := cat.Tables[id]; ok {
			maxLevel, status = fmt.Sprintf("%d", t.MaxLevel()), "ok"
		} else if err, ok := cat.TableErrors[id]; ok {
			status = err.Error()
		}
		row := []string{id, cat.DisplayName(id), maxLevel, fmt.Sprintf("%d", len(cat.RecipesForSkill(id))), status}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// StepNotes describes a step's cross-skill dependency and runner-up recipes
func StepNotes(cat *models.Catalog, step models.PlanStep) string {
	var notes []string
	if cs := step.CrossSkill; cs != nil {
		notes = append(notes, fmt.Sprintf("needs %s %d (at %d) for %s",
			cat.DisplayName(cs.Skill), cs.RequiredLevel, cs.CurrentLevel, cat.DisplayName(cs.Material)))
	}
	if len(step.Alternatives) > 0 {
		alts := make([]string, len(step.Alternatives))
		for i, a := range step.Alternatives {
			alts[i] = cat.DisplayName(a.RecipeID)
		}
		notes = append(notes, "alt: "+strings.Join(alts, ", "))
	}
	return strings.Join(notes, "; ")
}

func formatMaterials(cat *models.Catalog, materials []models.MaterialQty, nums *Numbers) string {
	parts := make([]string, len(materials))
	for i, m := range materials {
		parts[i] = fmt.Sprintf("%s×%s", cat.DisplayName(m.Material), nums.Int(m.Quantity))
	}
	return strings.Join(parts, ", ")
}
