// Package store persists parsed catalogs as SQLite snapshots, so planning runs can skip
// re-parsing the static data bundle.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/norraist/PaxDei-Planner/internal/levels"
	"github.com/norraist/PaxDei-Planner/internal/models"
	"github.com/norraist/PaxDei-Planner/internal/store/migrations"
)

// ErrNoSnapshot is returned by Load and Info when nothing has been saved yet
var ErrNoSnapshot = errors.New("no catalog snapshot")

// Store is a SQLite-backed catalog snapshot
type Store struct {
	sqlDB *sql.DB
}

// Info summarizes the saved snapshot
type Info struct {
	Source    string
	CreatedAt time.Time
	Skills    int
	Recipes   int
	Stations  int
	Materials int
}

// Open opens (or creates) the snapshot database at path and applies migrations
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{sqlDB: sqlDB}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// Save replaces the stored snapshot with cat in a single transaction
func (s *Store) Save(ctx context.Context, cat *models.Catalog, source string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("catalog is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{
		"recipe_prerequisites", "recipe_stations", "recipe_materials", "station_recipes",
		"recipes", "materials", "stations", "table_errors", "level_increments", "skills", "snapshot_meta",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	w := &writer{ctx: ctx, tx: tx}
	w.skills(cat)
	w.stations(cat)
	w.materials(cat)
	w.recipes(cat)
	w.exec("INSERT INTO snapshot_meta (key, value) VALUES (?, ?), (?, ?)",
		"source", source, "created_at", strconv.FormatInt(time.Now().UTC().UnixMilli(), 10))
	if w.err != nil {
		return w.err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// writer carries the first error across a run of inserts
type writer struct {
	ctx context.Context
	tx  *sql.Tx
	err error
}

func (w *writer) exec(query string, args ...any) {
	if w.err != nil {
		return
	}
	if _, err := w.tx.ExecContext(w.ctx, query, args...); err != nil {
		w.err = fmt.Errorf("%s: %w", strings.Fields(query)[2], err)
	}
}

func (w *writer) skills(cat *models.Catalog) {
	for _, id := range cat.SkillIDs() {
		sk := cat.Skills[id]
		w.exec("INSERT INTO skills (id, name, level_table_id, base_xp) VALUES (?, ?, ?, ?)",
			id, sk.Name, sk.LevelTableID, sk.BaseXP)
	}
	for skill, table := range cat.Tables {
		for i, inc := range table.Increments() {
			w.exec("INSERT INTO level_increments (skill_id, level, xp) VALUES (?, ?, ?)", skill, i, inc)
		}
	}
	for skill, tableErr := range cat.TableErrors {
		tried := []string{}
		var discovery *levels.DiscoveryError
		if errors.As(tableErr, &discovery) {
			tried = discovery.Tried
		}
		data, err := json.Marshal(tried)
		if err != nil && w.err == nil {
			w.err = err
		}
		w.exec("INSERT INTO table_errors (skill_id, tried, message) VALUES (?, ?, ?)",
			skill, string(data), tableErr.Error())
	}
}

func (w *writer) stations(cat *models.Catalog) {
	for id, st := range cat.Stations {
		w.exec("INSERT INTO stations (id, name, tier) VALUES (?, ?, ?)", id, st.Name, st.Tier)
		for recipe := range st.Recipes {
			w.exec("INSERT INTO station_recipes (station_id, recipe_id) VALUES (?, ?)", id, recipe)
		}
	}
}

func (w *writer) materials(cat *models.Catalog) {
	for id, m := range cat.Materials {
		categories, err := json.Marshal(m.Categories)
		if err != nil && w.err == nil {
			w.err = err
		}
		w.exec(`INSERT INTO materials (id, name, description, tier, item_level, categories, raw, relic)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, m.Name, m.Description, m.Tier, m.ItemLevel, string(categories), m.Raw, m.Relic)
	}
}

func (w *writer) recipes(cat *models.Catalog) {
	for _, r := range cat.Recipes {
		w.exec(`INSERT INTO recipes (id, name, skill_id, unlock_level, difficulty, xp_multiplier, grants_xp, preserve_inputs, is_dev)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.Skill, r.UnlockLevel, r.Difficulty, r.XPMultiplier, r.GrantsXP, r.PreserveInputsOnFailure, r.IsDev)
		for _, in := range r.Inputs {
			w.exec("INSERT INTO recipe_materials (recipe_id, direction, material_id, quantity) VALUES (?, 'in', ?, ?)",
				r.ID, in.Material, in.Quantity)
		}
		for _, out := range r.Outputs {
			w.exec("INSERT INTO recipe_materials (recipe_id, direction, material_id, quantity) VALUES (?, 'out', ?, ?)",
				r.ID, out.Material, out.Quantity)
		}
		for pos, st := range r.Stations {
			w.exec("INSERT INTO recipe_stations (recipe_id, station_id, position) VALUES (?, ?, ?)", r.ID, st, pos)
		}
		for _, req := range r.Prerequisites {
			w.exec("INSERT INTO recipe_prerequisites (recipe_id, skill_id, level, material_id) VALUES (?, ?, ?, ?)",
				r.ID, req.Skill, req.Level, req.Material)
		}
	}
}

// Info returns a summary of the stored snapshot
func (s *Store) Info(ctx context.Context) (Info, error) {
	if err := s.ready(ctx); err != nil {
		return Info{}, err
	}
	meta, err := s.meta(ctx)
	if err != nil {
		return Info{}, err
	}

	info := Info{Source: meta["source"]}
	if ms, err := strconv.ParseInt(meta["created_at"], 10, 64); err == nil {
		info.CreatedAt = time.UnixMilli(ms).UTC()
	}
	counts := []struct {
		table string
		dest  *int
	}{
		{"skills", &info.Skills},
		{"recipes", &info.Recipes},
		{"stations", &info.Stations},
		{"materials", &info.Materials},
	}
	for _, c := range counts {
		if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return Info{}, fmt.Errorf("count %s: %w", c.table, err)
		}
	}
	return info, nil
}

func (s *Store) meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT key, value FROM snapshot_meta")
	if err != nil {
		return nil, fmt.Errorf("query snapshot meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan snapshot meta: %w", err)
		}
		meta[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot meta: %w", err)
	}
	if len(meta) == 0 {
		return nil, ErrNoSnapshot
	}
	return meta, nil
}

// Load rebuilds the stored catalog. The returned catalog is already indexed.
func (s *Store) Load(ctx context.Context) (*models.Catalog, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if _, err := s.meta(ctx); err != nil {
		return nil, err
	}

	cat := models.NewCatalog()
	steps := []struct {
		name string
		load func(context.Context, *models.Catalog) error
	}{
		{"skills", s.loadSkills},
		{"level tables", s.loadTables},
		{"stations", s.loadStations},
		{"materials", s.loadMaterials},
		{"recipes", s.loadRecipes},
	}
	for _, step := range steps {
		if err := step.load(ctx, cat); err != nil {
			return nil, fmt.Errorf("load %s: %w", step.name, err)
		}
	}
	cat.Index()
	return cat, nil
}

// each runs query and hands every row to scan
func (s *Store) each(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) loadSkills(ctx context.Context, cat *models.Catalog) error {
	return s.each(ctx, "SELECT id, name, level_table_id, base_xp FROM skills", func(rows *sql.Rows) error {
		var sk models.Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.LevelTableID, &sk.BaseXP); err != nil {
			return err
		}
		cat.Skills[sk.ID] = &sk
		return nil
	})
}

func (s *Store) loadTables(ctx context.Context, cat *models.Catalog) error {
	increments := make(map[string][]int64)
	err := s.each(ctx, "SELECT skill_id, xp FROM level_increments ORDER BY skill_id, level", func(rows *sql.Rows) error {
		var skill string
		var xp int64
		if err := rows.Scan(&skill, &xp); err != nil {
			return err
		}
		increments[skill] = append(increments[skill], xp)
		return nil
	})
	if err != nil {
		return err
	}
	for skill, incs := range increments {
		table, err := levels.NewTable(skill, incs)
		if err != nil {
			return err
		}
		cat.Tables[skill] = table
	}

	return s.each(ctx, "SELECT skill_id, tried, message FROM table_errors", func(rows *sql.Rows) error {
		var skill, tried, message string
		if err := rows.Scan(&skill, &tried, &message); err != nil {
			return err
		}
		var paths []string
		if err := json.Unmarshal([]byte(tried), &paths); err != nil {
			return fmt.Errorf("decode tried paths for %s: %w", skill, err)
		}
		if len(paths) > 0 {
			cat.TableErrors[skill] = &levels.DiscoveryError{Skill: skill, Tried: paths}
		} else {
			cat.TableErrors[skill] = errors.New(message)
		}
		return nil
	})
}

func (s *Store) loadStations(ctx context.Context, cat *models.Catalog) error {
	err := s.each(ctx, "SELECT id, name, tier FROM stations", func(rows *sql.Rows) error {
		st := &models.Station{Recipes: make(map[string]bool)}
		if err := rows.Scan(&st.ID, &st.Name, &st.Tier); err != nil {
			return err
		}
		cat.Stations[st.ID] = st
		return nil
	})
	if err != nil {
		return err
	}
	return s.each(ctx, "SELECT station_id, recipe_id FROM station_recipes", func(rows *sql.Rows) error {
		var station, recipe string
		if err := rows.Scan(&station, &recipe); err != nil {
			return err
		}
		if st, ok := cat.Stations[station]; ok {
			st.Recipes[recipe] = true
		}
		return nil
	})
}

func (s *Store) loadMaterials(ctx context.Context, cat *models.Catalog) error {
	return s.each(ctx, "SELECT id, name, description, tier, item_level, categories, raw, relic FROM materials", func(rows *sql.Rows) error {
		var m models.Material
		var categories string
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Tier, &m.ItemLevel, &categories, &m.Raw, &m.Relic); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(categories), &m.Categories); err != nil {
			return fmt.Errorf("decode categories for %s: %w", m.ID, err)
		}
		cat.Materials[m.ID] = &m
		return nil
	})
}

func (s *Store) loadRecipes(ctx context.Context, cat *models.Catalog) error {
	byID := make(map[string]*models.Recipe)
	err := s.each(ctx, `SELECT id, name, skill_id, unlock_level, difficulty, xp_multiplier, grants_xp, preserve_inputs, is_dev
FROM recipes ORDER BY id`, func(rows *sql.Rows) error {
		var r models.Recipe
		if err := rows.Scan(&r.ID, &r.Name, &r.Skill, &r.UnlockLevel, &r.Difficulty, &r.XPMultiplier,
			&r.GrantsXP, &r.PreserveInputsOnFailure, &r.IsDev); err != nil {
			return err
		}
		byID[r.ID] = &r
		cat.Recipes = append(cat.Recipes, &r)
		return nil
	})
	if err != nil {
		return err
	}

	err = s.each(ctx, "SELECT recipe_id, direction, material_id, quantity FROM recipe_materials ORDER BY recipe_id, material_id", func(rows *sql.Rows) error {
		var recipe, direction string
		var q models.MaterialQty
		if err := rows.Scan(&recipe, &direction, &q.Material, &q.Quantity); err != nil {
			return err
		}
		r, ok := byID[recipe]
		if !ok {
			return nil
		}
		if direction == "in" {
			r.Inputs = append(r.Inputs, q)
		} else {
			r.Outputs = append(r.Outputs, q)
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = s.each(ctx, "SELECT recipe_id, station_id FROM recipe_stations ORDER BY recipe_id, position", func(rows *sql.Rows) error {
		var recipe, station string
		if err := rows.Scan(&recipe, &station); err != nil {
			return err
		}
		if r, ok := byID[recipe]; ok {
			r.Stations = append(r.Stations, station)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.each(ctx, "SELECT recipe_id, skill_id, level, material_id FROM recipe_prerequisites ORDER BY recipe_id, skill_id", func(rows *sql.Rows) error {
		var recipe string
		var req models.SkillRequirement
		if err := rows.Scan(&recipe, &req.Skill, &req.Level, &req.Material); err != nil {
			return err
		}
		if r, ok := byID[recipe]; ok {
			r.Prerequisites = append(r.Prerequisites, req)
		}
		return nil
	})
}
