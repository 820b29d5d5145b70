package loader

import (
	"math"
	"strconv"
	"strings"
)

// The static bundle is loosely typed: the same field may arrive as a bool, a number
// or a string depending on the exporter, and "None" stands in for a missing reference.

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "y":
			return true
		}
	}
	return false
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(math.Round(x)), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		return n, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

// asRef returns a string reference, treating "" and "None" as absent
func asRef(v any) string {
	s, ok := v.(string)
	if !ok || s == "None" {
		return ""
	}
	return s
}

// refList accepts a single reference or a list of them
func refList(v any) []string {
	switch x := v.(type) {
	case string:
		if ref := asRef(x); ref != "" {
			return []string{ref}
		}
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if ref := asRef(item); ref != "" {
				out = append(out, ref)
			}
		}
		return out
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asRef(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstValue(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func intField(m map[string]any, def int, keys ...string) int {
	if n, ok := asInt(firstValue(m, keys...)); ok {
		return n
	}
	return def
}

func block(m map[string]any, path ...string) map[string]any {
	cur := m
	for _, p := range path {
		next, ok := cur[p].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}
