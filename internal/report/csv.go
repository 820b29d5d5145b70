package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/norraist/PaxDei-Planner/internal/models"
)

// WritePlanCSV writes one row per plan step
func WritePlanCSV(w io.Writer, cat *models.Catalog, plan *models.SkillPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Step", "Recipe", "Name", "From Level", "To Level", "Batches", "XP Gain", "Cost", "Notes"}); err != nil {
		return err
	}
	for i, step := range plan.Steps {
		record := []string{
			strconv.Itoa(i + 1),
			step.RecipeID,
			cat.DisplayName(step.RecipeID),
			strconv.Itoa(step.FromLevel),
			strconv.Itoa(step.ToLevel),
			strconv.Itoa(step.Batches),
			strconv.FormatFloat(step.ExpectedXP, 'f', 1, 64),
			strconv.FormatFloat(step.Cost, 'f', 1, 64),
			StepNotes(cat, step),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteShoppingCSV writes one row per aggregated material
func WriteShoppingCSV(w io.Writer, cat *models.Catalog, entries []models.ShoppingListEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Material", "Name", "Qty", "Weight", "Weighted Cost"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.Material,
			cat.DisplayName(e.Material),
			strconv.Itoa(e.Quantity),
			strconv.FormatFloat(e.Weight, 'f', -1, 64),
			strconv.FormatFloat(e.WeightedCost, 'f', 1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SavePlanCSV writes plan_<skill>.csv into dir and returns its path
func SavePlanCSV(dir string, cat *models.Catalog, plan *models.SkillPlan) (string, error) {
	return saveCSV(filepath.Join(dir, "plan_"+plan.Skill+".csv"), func(w io.Writer) error {
		return WritePlanCSV(w, cat, plan)
	})
}

// SaveShoppingCSV writes shopping_list.csv into dir and returns its path
func SaveShoppingCSV(dir string, cat *models.Catalog, entries []models.ShoppingListEntry) (string, error) {
	return saveCSV(filepath.Join(dir, "shopping_list.csv"), func(w io.Writer) error {
		return WriteShoppingCSV(w, cat, entries)
	})
}

func saveCSV(path string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return path, nil
}
