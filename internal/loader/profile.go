package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/norraist/PaxDei-Planner/internal/models"
)

// ProfileJSON is the on-disk player profile. The nested shape keys skills and crafters
// by ID; the legacy flat shape spreads progress over per-field maps.
type ProfileJSON struct {
	Skills           map[string]SkillStateJSON `json:"skills,omitempty"`
	Crafters         map[string]CrafterJSON    `json:"crafters,omitempty"`
	PremiumAccount   bool                      `json:"premium_account"`
	AvoidRelics      bool                      `json:"avoid_relics"`
	MaxCrossSkillGap *int                      `json:"max_cross_skill_gap,omitempty"`

	// Legacy flat shape
	CurrentLevel  map[string]int     `json:"current_level,omitempty"`
	CurrentXP     map[string]float64 `json:"current_xp,omitempty"`
	TargetLevel   map[string]int     `json:"target_level,omitempty"`
	Targets       map[string]int     `json:"targets,omitempty"`
	OwnedStations []string           `json:"owned_stations,omitempty"`
}

// SkillStateJSON is one skill's progress in the nested profile shape
type SkillStateJSON struct {
	Name         string  `json:"name,omitempty"`
	CurrentLevel int     `json:"current_level"`
	CurrentXP    float64 `json:"current_xp"`
	TargetLevel  int     `json:"target_level,omitempty"`
}

// CrafterJSON is one crafter's ownership in the nested profile shape
type CrafterJSON struct {
	Name  string `json:"name,omitempty"`
	Owned bool   `json:"owned"`
}

// LoadProfile reads a player profile in either the nested or the legacy flat shape
func LoadProfile(path string) (*models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	var raw ProfileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return raw.Profile(), nil
}

// Profile converts the decoded JSON into a planning profile
func (pj *ProfileJSON) Profile() *models.Profile {
	p := models.NewProfile()
	p.PremiumAccount = pj.PremiumAccount
	p.AvoidRelics = pj.AvoidRelics
	if pj.MaxCrossSkillGap != nil {
		p.MaxCrossSkillGap = *pj.MaxCrossSkillGap
	}

	if pj.Skills != nil {
		for id, s := range pj.Skills {
			p.Skills[id] = models.SkillProgress{Name: s.Name, Level: startLevel(s.CurrentLevel), XP: s.CurrentXP, Target: s.TargetLevel}
		}
		for id, c := range pj.Crafters {
			if c.Owned {
				p.OwnedStations[id] = true
			}
		}
		return p
	}

	targets := pj.TargetLevel
	if targets == nil {
		targets = pj.Targets
	}
	for id, level := range pj.CurrentLevel {
		p.Skills[id] = models.SkillProgress{
			Name:   id,
			Level:  startLevel(level),
			XP:     pj.CurrentXP[id],
			Target: targets[id],
		}
	}
	for _, st := range pj.OwnedStations {
		p.OwnedStations[st] = true
	}
	return p
}

// startLevel treats an unset or non-positive level as level 1
func startLevel(level int) int {
	if level <= 0 {
		return 1
	}
	return level
}

// LoadWeights reads material weights. A missing file yields empty weights, so every
// material weighs 1.0.
func LoadWeights(path string) (models.Weights, error) {
	weights := make(models.Weights)
	if err := readOptional(path, &weights); err != nil {
		return nil, err
	}
	for id, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf("weight for %s must be positive, got %v", id, w)
		}
	}
	return weights, nil
}

// LoadTargets reads per-skill target levels. A missing file yields no targets.
func LoadTargets(path string) (models.Targets, error) {
	targets := make(models.Targets)
	if err := readOptional(path, &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// materialSettingJSON is one entry of the materials config file
type materialSettingJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// LoadMaterialsConfig reads the material enable/disable list. A missing file enables
// every material.
func LoadMaterialsConfig(path string) (models.MaterialsConfig, error) {
	raw := make(map[string]materialSettingJSON)
	if err := readOptional(path, &raw); err != nil {
		return nil, err
	}
	cfg := make(models.MaterialsConfig, len(raw))
	for id, s := range raw {
		cfg[id] = models.MaterialSetting{Name: s.Name, Description: s.Description, Enabled: s.Enabled}
	}
	return cfg, nil
}

// GenerateMaterialsConfig lists every raw or crafting material in the catalog, all enabled
func GenerateMaterialsConfig(cat *models.Catalog) models.MaterialsConfig {
	cfg := make(models.MaterialsConfig)
	for id, m := range cat.Materials {
		if !isConfigurableMaterial(m) {
			continue
		}
		name := m.Name
		if name == "" {
			name = id
		}
		cfg[id] = models.MaterialSetting{Name: name, Description: m.Description, Enabled: true}
	}
	return cfg
}

func isConfigurableMaterial(m *models.Material) bool {
	for _, c := range m.Categories {
		lower := strings.ToLower(c)
		if strings.Contains(lower, "category.items.raw") ||
			strings.Contains(lower, "category.items.material") ||
			strings.Contains(lower, "craftingcomponents") ||
			strings.Contains(lower, "raw_") {
			return true
		}
	}
	lower := strings.ToLower(m.ID)
	return strings.HasPrefix(lower, "item_material_") || strings.HasPrefix(lower, "item_raw_")
}

// SaveMaterialsConfig writes a materials config as indented JSON; keys come out sorted
func SaveMaterialsConfig(path string, cfg models.MaterialsConfig) error {
	raw := make(map[string]materialSettingJSON, len(cfg))
	for id, s := range cfg {
		raw[id] = materialSettingJSON{Name: s.Name, Description: s.Description, Enabled: s.Enabled}
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// readOptional decodes a JSON file into v, leaving v untouched when the path is empty
// or the file does not exist
func readOptional(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
