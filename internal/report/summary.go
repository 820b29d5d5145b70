package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/norraist/PaxDei-Planner/internal/models"
	"github.com/norraist/PaxDei-Planner/internal/shopping"
)

var (
	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("2")).
		Padding(0, 1)
	title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	dim   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Summary is what a planning run produced
type Summary struct {
	Strategy string
	Plans    []models.SkillPlan
	Failures []models.SkillFailure
	Shopping []models.ShoppingListEntry
}

// RenderSummary draws the run totals in a bordered panel
func RenderSummary(cat *models.Catalog, s Summary, nums *Numbers) string {
	var b strings.Builder
	b.WriteString(title.Render("Planning summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Strategy:        %s\n", s.Strategy)
	fmt.Fprintf(&b, "Skills planned:  %d of %d\n", len(s.Plans), len(s.Plans)+len(s.Failures))

	batches, xp := 0, 0.0
	for i := range s.Plans {
		p := &s.Plans[i]
		batches += p.TotalBatches()
		xp += p.TotalXP()
		fmt.Fprintf(&b, "  %-20s %d → %d  %s batches\n", cat.DisplayName(p.Skill), p.FromLevel, p.ToLevel, nums.Int(p.TotalBatches()))
	}
	fmt.Fprintf(&b, "Total batches:   %s\n", nums.Int(batches))
	fmt.Fprintf(&b, "Expected XP:     %s\n", nums.Float(xp))
	fmt.Fprintf(&b, "Materials:       %d kinds, weighted cost %s", len(s.Shopping), nums.Float(shopping.TotalCost(s.Shopping)))
	for _, f := range s.Failures {
		b.WriteString("\n")
		b.WriteString(dim.Render(fmt.Sprintf("failed %s: %v", cat.DisplayName(f.Skill), f.Err)))
	}
	return panel.Render(b.String())
}
