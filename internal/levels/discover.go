package levels

import (
	"fmt"
	"sort"
	"strings"
)

// Prefixes the game uses on SkillLevelingTableId values that are not part of the
// LOOKUP_TABLE key.
var tableIDPrefixes = []string{"leveling_table_", "levelingtable_", "leveling_"}

// DiscoveryError reports that no candidate location held a usable XP table for a skill
type DiscoveryError struct {
	Skill string
	Tried []string
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("no monotonic XP table found for %s; tried: %s", e.Skill, strings.Join(e.Tried, ", "))
}

type candidate struct {
	path   string
	values any
}

// discoverer indexes a raw static-data bundle once so every skill can be probed cheaply
type discoverer struct {
	skillBlock  map[string]any
	lookup      map[string]any
	lookupNorm  map[string]string // normalized key -> LOOKUP_TABLE key
	lookupKeys  []string
	bySkillName map[string]candidate // from objects carrying Skill + XpToLevel
}

// Discover locates the XP table of every requested skill inside a decoded static bundle.
// Skills without a usable table are returned in the error map with every path tried.
func Discover(bundle map[string]any, skills []string) (Set, map[string]*DiscoveryError) {
	d := newDiscoverer(bundle)
	set := make(Set, len(skills))
	var failures map[string]*DiscoveryError

	for _, skill := range skills {
		var tried []string
		seen := make(map[string]bool)
		for _, c := range d.candidates(skill) {
			if seen[c.path] {
				continue
			}
			seen[c.path] = true
			if c.values == nil {
				tried = append(tried, c.path)
				continue
			}
			increments, ok := toIncrements(c.values)
			if !ok {
				tried = append(tried, c.path+" (not a numeric array)")
				continue
			}
			table, err := NewTable(skill, increments)
			if err != nil {
				tried = append(tried, c.path+" (not monotonic)")
				continue
			}
			set[skill] = table
			tried = nil
			break
		}
		if _, found := set[skill]; !found {
			if failures == nil {
				failures = make(map[string]*DiscoveryError)
			}
			failures[skill] = &DiscoveryError{Skill: skill, Tried: tried}
		}
	}
	return set, failures
}

func newDiscoverer(bundle map[string]any) *discoverer {
	d := &discoverer{
		lookupNorm:  make(map[string]string),
		bySkillName: make(map[string]candidate),
	}
	static, _ := bundle["static_data"].(map[string]any)
	if static != nil {
		d.skillBlock, _ = static["SKILL"].(map[string]any)
		d.lookup, _ = static["LOOKUP_TABLE"].(map[string]any)
	}
	for key := range d.lookup {
		d.lookupKeys = append(d.lookupKeys, key)
	}
	sort.Strings(d.lookupKeys)
	for _, key := range d.lookupKeys {
		norm := NormalizeKey(key)
		if _, exists := d.lookupNorm[norm]; !exists {
			d.lookupNorm[norm] = key
		}
	}
	d.walk(bundle, "")
	return d
}

// walk records every object that names a skill and carries an XpToLevel array.
// Keys are visited in sorted order so the first match is stable.
func (d *discoverer) walk(node any, path string) {
	switch v := node.(type) {
	case map[string]any:
		if arr, ok := firstOf(v, "XpToLevel", "XPToLevel", "xpToLevel"); ok {
			if skill, ok := firstOf(v, "Skill", "skill", "SkillRequired"); ok {
				if name, ok := skill.(string); ok && name != "" {
					if _, seen := d.bySkillName[name]; !seen {
						d.bySkillName[name] = candidate{path: joinPath(path, "XpToLevel"), values: arr}
					}
				}
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d.walk(v[k], joinPath(path, k))
		}
	case []any:
		for i, item := range v {
			d.walk(item, fmt.Sprintf("%s[%d]", path, i))
		}
	}
}

// candidates lists every location probed for a skill, in priority order
func (d *discoverer) candidates(skill string) []candidate {
	var out []candidate

	inline := "static_data.SKILL." + skill + ".XpToLevel"
	var tableID string
	if node, ok := d.skillBlock[skill].(map[string]any); ok {
		arr, _ := firstOf(node, "XpToLevel", "XPToLevel", "xpToLevel")
		out = append(out, candidate{path: inline, values: arr})
		if id, ok := firstOf(node, "SkillLevelingTableId", "SkillLevelingTableID", "skill_leveling_table_id"); ok {
			tableID, _ = id.(string)
		}
	} else {
		out = append(out, candidate{path: inline})
	}

	if tableID != "" {
		ids := []string{tableID}
		lower := strings.ToLower(tableID)
		for _, prefix := range tableIDPrefixes {
			if strings.HasPrefix(lower, prefix) {
				ids = append(ids, tableID[len(prefix):])
				break
			}
		}
		for _, id := range ids {
			out = append(out, d.lookupCandidate(id))
		}
	}

	out = append(out, d.lookupCandidate("leveling_table_"+skill))

	if c, ok := d.bySkillName[skill]; ok {
		out = append(out, c)
	} else {
		out = append(out, candidate{path: "**{Skill=" + skill + "}.XpToLevel"})
	}

	norm := NormalizeKey(skill)
	path := "static_data.LOOKUP_TABLE.~" + norm + ".Values"
	if key, ok := d.lookupNorm[norm]; ok {
		out = append(out, d.lookupCandidate(key))
	} else if key := d.lookupBySuffix(norm); key != "" {
		out = append(out, d.lookupCandidate(key))
	} else {
		out = append(out, candidate{path: path})
	}
	return out
}

func (d *discoverer) lookupCandidate(key string) candidate {
	c := candidate{path: "static_data.LOOKUP_TABLE." + key + ".Values"}
	if node, ok := d.lookup[key].(map[string]any); ok {
		c.values = node["Values"]
	}
	return c
}

// lookupBySuffix finds a LOOKUP_TABLE key whose normalized form ends with the normalized skill,
// e.g. "leveling_table_skill_tailoring" for "skill_tailoring".
func (d *discoverer) lookupBySuffix(norm string) string {
	if norm == "" {
		return ""
	}
	for _, key := range d.lookupKeys {
		if strings.HasSuffix(NormalizeKey(key), norm) {
			return key
		}
	}
	return ""
}

func toIncrements(raw any) ([]int64, bool) {
	arr, ok := raw.([]any)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	out := make([]int64, len(arr))
	for i, v := range arr {
		switch n := v.(type) {
		case float64:
			out[i] = int64(n)
		case int:
			out[i] = int64(n)
		case int64:
			out[i] = n
		default:
			return nil, false
		}
	}
	return out, true
}

func firstOf(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// NormalizeKey lowercases a key and strips everything but letters and digits
func NormalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range strings.ToLower(key) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
