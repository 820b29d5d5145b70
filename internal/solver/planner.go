package solver

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/norraist/PaxDei-Planner/internal/levels"
	"github.com/norraist/PaxDei-Planner/internal/models"
	"github.com/norraist/PaxDei-Planner/internal/shopping"
)

// Planner plans several skills against one catalog
type Planner struct {
	Catalog   *models.Catalog
	Sim       Simulator
	Strategy  Strategy
	Weights   models.Weights
	Materials models.MaterialsConfig

	// IgnoreStations plans as if every station were owned
	IgnoreStations bool
	TopK           int
	Workers        int
	Logger         *slog.Logger
}

// NewPlanner creates a planner using the greedy strategy
func NewPlanner(cat *models.Catalog, sim Simulator) *Planner {
	return &Planner{
		Catalog:  cat,
		Sim:      sim,
		Strategy: NewGreedy(),
		TopK:     DefaultTopK,
		Workers:  runtime.NumCPU(),
		Logger:   slog.Default(),
	}
}

// Request selects what to plan
type Request struct {
	Profile *models.Profile
	Targets models.Targets
	Skills  []string // empty plans every skill present in the profile
}

// PlanResult holds successful plans and failures separately, both sorted by skill
type PlanResult struct {
	Plans        []models.SkillPlan
	Failures     []models.SkillFailure
	ShoppingList []models.ShoppingListEntry
}

// PlanAll plans each requested skill independently. A failure in one skill is
// recorded in the result and never stops the others; only context cancellation
// aborts the run.
func (pl *Planner) PlanAll(ctx context.Context, req Request) (*PlanResult, error) {
	if req.Profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if !pl.Catalog.Indexed() {
		pl.Catalog.Index()
	}

	result := &PlanResult{}
	var skills []string
	for _, key := range pl.requestedSkills(req) {
		id, err := pl.Catalog.ResolveSkill(key)
		if err != nil {
			result.Failures = append(result.Failures, models.SkillFailure{Skill: key, Err: err})
			continue
		}
		skills = append(skills, id)
	}
	skills = dedupe(skills)

	plans := make([]*models.SkillPlan, len(skills))
	errs := make([]error, len(skills))

	g, gctx := errgroup.WithContext(ctx)
	workers := pl.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, skill := range skills {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each worker gets its own profile snapshot
			plans[i], errs[i] = pl.PlanSkill(skill, req.Profile.Clone(), req.Targets)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, skill := range skills {
		if errs[i] != nil {
			pl.logger().Debug("skill failed", "skill", skill, "error", errs[i])
			result.Failures = append(result.Failures, models.SkillFailure{Skill: skill, Err: errs[i]})
			continue
		}
		result.Plans = append(result.Plans, *plans[i])
	}

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Skill < result.Failures[j].Skill
	})
	result.ShoppingList = shopping.Aggregate(result.Plans, pl.Weights)
	return result, nil
}

// PlanSkill plans one skill from the profile's current progress to its target
func (pl *Planner) PlanSkill(skill string, profile *models.Profile, targets models.Targets) (*models.SkillPlan, error) {
	table, ok := pl.Catalog.Tables[skill]
	if !ok {
		if err, found := pl.Catalog.TableErrors[skill]; found {
			return nil, err
		}
		return nil, fmt.Errorf("%w for skill %s", levels.ErrNoTable, skill)
	}

	progress, ok := profile.Skills[skill]
	if !ok {
		progress = models.SkillProgress{Level: 1}
	}
	target := targets.TargetFor(skill, profile, table.MaxLevel())

	filter := NewFilter(pl.Catalog, pl.Materials)
	filter.RequireStations = !pl.IgnoreStations

	problem := &Problem{
		Skill:   skill,
		Start:   State{Level: progress.Level, XP: progress.XP},
		Target:  target,
		Table:   table,
		Recipes: pl.Catalog.RecipesForSkill(skill),
		Profile: profile,
		Filter:  filter,
		Sim:     pl.Sim,
		Weights: pl.Weights,
		TopK:    pl.TopK,
	}

	pl.logger().Debug("planning skill", "skill", skill, "strategy", pl.Strategy.Name(),
		"from", progress.Level, "target", target, "recipes", len(problem.Recipes))

	steps, err := pl.Strategy.Search(problem)
	if err != nil {
		return nil, err
	}

	plan := &models.SkillPlan{
		Skill:     skill,
		Strategy:  pl.Strategy.Name(),
		FromLevel: problem.Start.Level,
		ToLevel:   target,
		Steps:     steps,
	}
	if plan.FromLevel > plan.ToLevel {
		plan.ToLevel = plan.FromLevel
	}

	pl.logger().Debug("planned skill", "skill", skill, "steps", len(steps),
		"batches", plan.TotalBatches(), "cost", plan.TotalCost())
	return plan, nil
}

func (pl *Planner) requestedSkills(req Request) []string {
	if len(req.Skills) > 0 {
		return req.Skills
	}
	skills := make([]string, 0, len(req.Profile.Skills))
	for id := range req.Profile.Skills {
		skills = append(skills, id)
	}
	sort.Strings(skills)
	return skills
}

func (pl *Planner) logger() *slog.Logger {
	if pl.Logger == nil {
		return slog.Default()
	}
	return pl.Logger
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
