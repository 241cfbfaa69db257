package listquery

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps "desc" (any case) to Desc and everything else to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// SortConfig is the single active sort key. Key may be a dotted path into a
// nested field ("hotel.name"). An empty Key means backend order.
type SortConfig struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Request returns the config after the user asks to sort by key: the active
// key flips direction, any other key starts ascending.
func (c SortConfig) Request(key string) SortConfig {
	if key == "" {
		return SortConfig{}
	}
	if c.Key == key {
		if c.Direction == Asc {
			return SortConfig{Key: key, Direction: Desc}
		}
		return SortConfig{Key: key, Direction: Asc}
	}
	return SortConfig{Key: key, Direction: Asc}
}

// Lookup resolves a dotted path in a decoded JSON object. A nil value counts
// as missing.
func Lookup(rec map[string]any, path string) (any, bool) {
	var cur any = rec
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// SortRecords sorts rows in place by cfg. Rows missing the key go last in
// both directions; numbers compare numerically, strings case-insensitively.
// The sort is stable.
func SortRecords(rows []map[string]any, cfg SortConfig) {
	if cfg.Key == "" {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i], rows[j], cfg)
	})
}

// sortedOrder returns the indexes of rows in sorted order without moving them.
func sortedOrder(rows []map[string]any, cfg SortConfig) []int {
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return less(rows[order[i]], rows[order[j]], cfg)
	})
	return order
}

func less(a, b map[string]any, cfg SortConfig) bool {
	av, aok := Lookup(a, cfg.Key)
	bv, bok := Lookup(b, cfg.Key)
	switch {
	case !aok && !bok:
		return false
	case !aok:
		return false
	case !bok:
		return true
	}
	c := compareValues(av, bv)
	if cfg.Direction == Desc {
		return c > 0
	}
	return c < 0
}

func compareValues(a, b any) int {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(foldString(a), foldString(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func foldString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return strings.ToLower(fmt.Sprint(v))
}

// matches reports whether any scalar value in rec contains term,
// case-insensitively. Used for client-side search over bare-array responses.
func matches(rec map[string]any, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	var walk func(v any) bool
	walk = func(v any) bool {
		switch x := v.(type) {
		case map[string]any:
			for _, e := range x {
				if walk(e) {
					return true
				}
			}
		case []any:
			for _, e := range x {
				if walk(e) {
					return true
				}
			}
		case nil:
			return false
		default:
			return strings.Contains(foldString(x), term)
		}
		return false
	}
	return walk(rec)
}
