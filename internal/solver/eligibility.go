package solver

import (
	"github.com/norraist/PaxDei-Planner/internal/models"
)

// Reason explains why a recipe is or is not eligible
type Reason int

const (
	Eligible Reason = iota
	ReasonDev
	ReasonNoXP
	ReasonLocked
	ReasonNoStation
	ReasonRelic
	ReasonDisabledMaterial
	ReasonCrossSkillGap
	ReasonTrivialized
)

// String returns a short description of the reason
func (r Reason) String() string {
	switch r {
	case Eligible:
		return "eligible"
	case ReasonDev:
		return "developer only"
	case ReasonNoXP:
		return "grants no XP"
	case ReasonLocked:
		return "locked"
	case ReasonNoStation:
		return "no owned station"
	case ReasonRelic:
		return "uses relic materials"
	case ReasonDisabledMaterial:
		return "uses disabled materials"
	case ReasonCrossSkillGap:
		return "cross-skill gap too large"
	case ReasonTrivialized:
		return "yields no XP at this level"
	default:
		return "unknown"
	}
}

// Filter decides which recipes may be planned. The materials config is carried
// explicitly so concurrent planners never share mutable settings.
type Filter struct {
	Catalog   *models.Catalog
	Materials models.MaterialsConfig

	// RequireStations demands an owned hosting station; when false ownership is ignored
	RequireStations bool
}

// NewFilter creates a filter that requires station ownership
func NewFilter(cat *models.Catalog, materials models.MaterialsConfig) *Filter {
	return &Filter{
		Catalog:         cat,
		Materials:       materials,
		RequireStations: true,
	}
}

// IsEligible reports whether a recipe can be planned for the profile at its current level
func (f *Filter) IsEligible(r *models.Recipe, p *models.Profile) bool {
	return f.Check(r, p, p.Level(r.Skill)) == Eligible
}

// Check returns the first rule a recipe fails when its skill is at level, or Eligible
func (f *Filter) Check(r *models.Recipe, p *models.Profile, level int) Reason {
	return f.check(r, p, level, f.RequireStations)
}

func (f *Filter) check(r *models.Recipe, p *models.Profile, level int, requireStations bool) Reason {
	if r.IsDev {
		return ReasonDev
	}
	if !r.GrantsXP {
		return ReasonNoXP
	}
	if level < r.UnlockLevel {
		return ReasonLocked
	}
	if requireStations && !f.hasStation(r, p) {
		return ReasonNoStation
	}
	if p.AvoidRelics {
		for _, m := range r.Materials() {
			if f.Catalog.IsRelic(m) {
				return ReasonRelic
			}
		}
	}
	for _, in := range r.Inputs {
		if !f.Materials.Enabled(in.Material) {
			return ReasonDisabledMaterial
		}
	}
	if dep := f.widestGap(r, p); dep != nil && p.MaxCrossSkillGap >= 0 && dep.Gap > p.MaxCrossSkillGap {
		return ReasonCrossSkillGap
	}
	return Eligible
}

func (f *Filter) hasStation(r *models.Recipe, p *models.Profile) bool {
	if len(r.Stations) == 0 {
		return true
	}
	for _, st := range r.Stations {
		if p.OwnedStations[st] {
			return true
		}
	}
	return false
}

// CrossSkill returns the unmet prerequisite with the widest gap, or nil when every
// prerequisite in another skill is already satisfied
func (f *Filter) CrossSkill(r *models.Recipe, p *models.Profile) *models.CrossSkillDependency {
	dep := f.widestGap(r, p)
	if dep == nil || dep.Gap <= 0 {
		return nil
	}
	return dep
}

func (f *Filter) widestGap(r *models.Recipe, p *models.Profile) *models.CrossSkillDependency {
	var widest *models.CrossSkillDependency
	for _, req := range r.Prerequisites {
		if req.Skill == r.Skill {
			continue
		}
		current := p.Level(req.Skill)
		gap := req.Level - current
		if widest == nil || gap > widest.Gap {
			widest = &models.CrossSkillDependency{
				Skill:         req.Skill,
				RequiredLevel: req.Level,
				CurrentLevel:  current,
				Gap:           gap,
				Material:      req.Material,
			}
		}
	}
	return widest
}
