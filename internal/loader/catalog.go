package loader

import (
	"errors"
	"sort"
	"strings"

	"github.com/norraist/PaxDei-Planner/internal/levels"
	"github.com/norraist/PaxDei-Planner/internal/models"
)

// deliverableFields hold recipe outputs; quantities of the same item are summed
var deliverableFields = []string{
	"ItemDeliverables",
	"ActivatableDeliverables",
	"ProjectileDeliverables",
	"Deliverables",
	"Outputs",
}

// ParseCatalog builds the planning catalog from a decoded static bundle. Developer-only
// skills, recipes and crafters are dropped. Skills whose XP table cannot be found are
// kept with their discovery error so planning can report them.
func ParseCatalog(bundle map[string]any, loc Localisation) (*models.Catalog, error) {
	if bundle == nil {
		return nil, errors.New("static data bundle is empty")
	}
	if loc == nil {
		loc = Localisation{}
	}

	cat := models.NewCatalog()
	static := block(bundle, "static_data")

	parseSkills(cat, block(static, "SKILL"), loc)
	books := newBookResolver(block(static, "RECIPE_BOOK"))
	processing := parseStations(cat, block(static, "CRAFTER"), books, loc)

	seen := make(map[string]bool)
	walk(bundle, func(key string, node map[string]any) bool {
		switch {
		case strings.HasPrefix(key, "recipe_"):
			if seen[key] {
				return false
			}
			seen[key] = true
			if r := parseRecipe(key, node, loc); r != nil {
				r.GrantsXP = !processing[key]
				cat.Recipes = append(cat.Recipes, r)
			}
			return false
		case strings.HasPrefix(key, "item_"):
			parseMaterial(cat, key, node, loc)
		}
		return true
	})
	if len(cat.Recipes) == 0 {
		return nil, errors.New("static data bundle contains no recipes")
	}

	byID := make(map[string]*models.Recipe, len(cat.Recipes))
	for _, r := range cat.Recipes {
		byID[r.ID] = r
	}
	for _, st := range cat.Stations {
		for id := range st.Recipes {
			if r, ok := byID[id]; ok {
				r.Stations = append(r.Stations, st.ID)
			}
		}
	}
	for _, r := range cat.Recipes {
		r.Stations = sortStations(cat, r.Stations)
		if _, ok := cat.Skills[r.Skill]; !ok && r.Skill != "" {
			cat.Skills[r.Skill] = &models.Skill{ID: r.Skill, Name: loc.Name(r.Skill, "")}
		}
	}

	cat.Index()
	derivePrerequisites(cat)

	tables, failures := levels.Discover(bundle, cat.SkillIDs())
	cat.Tables = tables
	for skill, err := range failures {
		cat.TableErrors[skill] = err
	}
	return cat, nil
}

// walk visits every keyed object in sorted key order. Returning false from fn skips
// the object's children.
func walk(node any, fn func(key string, node map[string]any) bool) {
	switch v := node.(type) {
	case map[string]any:
		for _, k := range sortedKeys(v) {
			child, ok := v[k].(map[string]any)
			if ok && !fn(k, child) {
				continue
			}
			walk(v[k], fn)
		}
	case []any:
		for _, item := range v {
			walk(item, fn)
		}
	}
}

func parseSkills(cat *models.Catalog, skills map[string]any, loc Localisation) {
	for _, id := range sortedKeys(skills) {
		node, ok := skills[id].(map[string]any)
		if !ok || asBool(node["IsDev"]) {
			continue
		}
		name := loc.Name(id, firstString(node, "LocalizationNameKey", "_LocalizationNameKey"))
		if name == "" {
			name = id
		}
		cat.Skills[id] = &models.Skill{
			ID:           id,
			Name:         name,
			LevelTableID: firstString(node, "SkillLevelingTableId", "SkillLevelingTableID", "skill_leveling_table_id"),
			BaseXP:       intField(node, 0, "SkillBaseXp", "skill_base_xp"),
		}
	}
}

// parseStations records every non-dev crafter and the recipes its books provide. It
// returns the recipes hosted by processing crafters, which grant no XP.
func parseStations(cat *models.Catalog, crafters map[string]any, books *bookResolver, loc Localisation) map[string]bool {
	processing := make(map[string]bool)
	for _, id := range sortedKeys(crafters) {
		node, ok := crafters[id].(map[string]any)
		if !ok || asBool(node["IsDev"]) {
			continue
		}
		name := loc.Name(id, firstString(node, "LocalizationNameKey"))
		if name == "" {
			name = id
		}
		st := &models.Station{
			ID:      id,
			Name:    name,
			Tier:    intField(node, 0, "Tier"),
			Recipes: make(map[string]bool),
		}
		isProcessing := strings.Contains(firstString(node, "CrafterType", "crafter_type"), "CRAFTER_PROCESSING")
		for _, book := range refList(firstValue(node, "ProvidesRecipeBookID", "provides_recipe_book_id")) {
			for _, rid := range books.recipes(book) {
				st.Recipes[rid] = true
				if isProcessing {
					processing[rid] = true
				}
			}
		}
		cat.Stations[id] = st
	}
	return processing
}

// bookResolver flattens nested recipe books, tolerating reference cycles
type bookResolver struct {
	books    map[string]any
	resolved map[string][]string
}

func newBookResolver(books map[string]any) *bookResolver {
	return &bookResolver{books: books, resolved: make(map[string][]string)}
}

// recipes returns every recipe reachable from a book through nested books, sorted
func (b *bookResolver) recipes(book string) []string {
	if ids, ok := b.resolved[book]; ok {
		return ids
	}
	seen := make(map[string]bool)
	set := make(map[string]bool)
	stack := []string{book}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true

		node, _ := b.books[cur].(map[string]any)
		for _, rid := range refList(firstValue(node, "ContainsRecipeIds", "contains_recipe_ids")) {
			set[rid] = true
		}
		stack = append(stack, refList(firstValue(node, "ContainsRecipebook", "contains_recipebook"))...)
		stack = append(stack, refList(firstValue(node, "ContainsRecipebooks", "contains_recipebooks"))...)
	}

	ids := make([]string, 0, len(set))
	for rid := range set {
		ids = append(ids, rid)
	}
	sort.Strings(ids)
	b.resolved[book] = ids
	return ids
}

func parseRecipe(id string, node map[string]any, loc Localisation) *models.Recipe {
	if asBool(node["IsDev"]) {
		return nil
	}
	mult, ok := asFloat(node["XPMultiplier"])
	if !ok {
		mult = 1.0
	}
	name := loc.Name(id, firstString(node, "LocalizationNameKey"))
	if name == "" {
		name = id
	}
	r := &models.Recipe{
		ID:                      id,
		Name:                    name,
		Skill:                   firstString(node, "SkillRequired", "Skill"),
		UnlockLevel:             intField(node, 0, "UnlockAtSkillLevel"),
		Difficulty:              intField(node, 0, "SkillDifficulty", "Difficulty"),
		XPMultiplier:            mult,
		Inputs:                  quantities(node, "ItemIngredients"),
		Outputs:                 quantities(node, deliverableFields...),
		GrantsXP:                true,
		PreserveInputsOnFailure: asBool(node["PreserveIngredientsOnFailure"]),
	}
	if station := firstString(node, "CraftingStation"); station != "" {
		r.Stations = []string{station}
	}
	return r
}

// quantities merges item -> quantity maps from the given fields, sorted by material
func quantities(node map[string]any, fields ...string) []models.MaterialQty {
	totals := make(map[string]int)
	for _, field := range fields {
		m, ok := node[field].(map[string]any)
		if !ok {
			continue
		}
		for item, raw := range m {
			if qty, ok := asInt(raw); ok && qty > 0 {
				totals[item] += qty
			}
		}
	}
	if len(totals) == 0 {
		return nil
	}
	out := make([]models.MaterialQty, 0, len(totals))
	for item, qty := range totals {
		out = append(out, models.MaterialQty{Material: item, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Material < out[j].Material })
	return out
}

func parseMaterial(cat *models.Catalog, id string, node map[string]any, loc Localisation) {
	if asBool(node["IsDev"]) {
		return
	}
	tier, hasTier := asInt(firstValue(node, "Tier", "tier"))
	itemLevel, hasLevel := asInt(firstValue(node, "ItemLevel", "itemLevel"))
	rawCats, hasCats := firstValue(node, "Categories", "categories").([]any)
	if !hasTier && !hasLevel && !hasCats {
		return
	}

	m := &models.Material{
		ID:          id,
		Name:        loc.Name(id, firstString(node, "LocalizationNameKey")),
		Description: loc.Description(id, firstString(node, "LocalizationDescriptionKey")),
		Tier:        tier,
		ItemLevel:   itemLevel,
	}
	for _, c := range rawCats {
		s, ok := c.(string)
		if !ok {
			continue
		}
		m.Categories = append(m.Categories, s)
		lower := strings.ToLower(s)
		if strings.Contains(lower, "raw") {
			m.Raw = true
		}
		if strings.Contains(lower, "relic") {
			m.Relic = true
		}
	}
	cat.Materials[id] = m
}

// sortStations orders hosting stations by tier, then ID, dropping duplicates
func sortStations(cat *models.Catalog, stations []string) []string {
	if len(stations) == 0 {
		return nil
	}
	tier := func(id string) int {
		if st, ok := cat.Stations[id]; ok {
			return st.Tier
		}
		return 0
	}
	sort.Slice(stations, func(i, j int) bool {
		if tier(stations[i]) != tier(stations[j]) {
			return tier(stations[i]) < tier(stations[j])
		}
		return stations[i] < stations[j]
	})
	out := stations[:1]
	for _, id := range stations[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
