package solver

import (
	"context"
	"reflect"
	"testing"

	"github.com/norraist/PaxDei-Planner/internal/models"
	"github.com/norraist/PaxDei-Planner/internal/xpmodel"
)

func TestPlanAllDeterministic(t *testing.T) {
	skills := []string{"skill_a", "skill_b", "skill_c", "skill_d"}
	cat := syntheticCatalog(t, skills, 8, 15)

	profile := models.NewProfile()
	for i, s := range skills {
		profile.Skills[s] = models.SkillProgress{Level: 1 + i, XP: float64(7 * i)}
	}
	targets := models.Targets{"skill_a": 15, "skill_b": 12, "skill_c": 10, "skill_d": 14}

	for _, strategy := range StrategyNames() {
		t.Run(strategy, func(t *testing.T) {
			run := func(workers int) *PlanResult {
				pl := quietPlanner(cat, xpmodel.NewModel())
				pl.Strategy, _ = StrategyByName(strategy)
				pl.Workers = workers
				res, err := pl.PlanAll(context.Background(), Request{Profile: profile, Targets: targets})
				if err != nil {
					t.Fatalf("PlanAll failed: %v", err)
				}
				if len(res.Failures) != 0 {
					t.Fatalf("unexpected failures: %+v", res.Failures)
				}
				return res
			}

			first := run(1)
			for i := 0; i < 20; i++ {
				got := run(1 + i%8)
				if !reflect.DeepEqual(got, first) {
					t.Fatalf("run %d differs from the first run", i)
				}
			}
		})
	}
}
