package listquery

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the paginated response shape.
type envelope struct {
	Data       []json.RawMessage `json:"data"`
	TotalCount *int              `json:"totalCount"`
}

// page is a decoded response ready to apply.
type page[T any] struct {
	rows    []T
	total   int
	trusted bool
}

// decodePage accepts either a bare array or {data, totalCount}. A bare array
// is the whole unpaginated collection: it is filtered, sorted and sliced
// here using st, and its length becomes the total.
func decodePage[T any](raw json.RawMessage, st state) (page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return page[T]{rows: []T{}, trusted: true}, nil
	}
	if trimmed[0] == '[' {
		return decodeBare[T](trimmed, st)
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return page[T]{}, fmt.Errorf("decode list response: %w", err)
	}
	rows, err := decodeRows[T](env.Data)
	if err != nil {
		return page[T]{}, err
	}
	// Without totalCount only the page length is known.
	if env.TotalCount == nil {
		return page[T]{rows: rows, total: len(rows)}, nil
	}
	return page[T]{rows: rows, total: *env.TotalCount, trusted: true}, nil
}

func decodeBare[T any](raw []byte, st state) (page[T], error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return page[T]{}, fmt.Errorf("decode list response: %w", err)
	}

	type rec struct {
		raw json.RawMessage
		m   map[string]any
	}
	recs := make([]rec, 0, len(items))
	for _, it := range items {
		var m map[string]any
		if err := json.Unmarshal(it, &m); err != nil {
			return page[T]{}, fmt.Errorf("decode list row: %w", err)
		}
		if !matches(m, st.search) || !matchesFilters(m, st.filters) {
			continue
		}
		recs = append(recs, rec{raw: it, m: m})
	}

	if st.sort.Key != "" {
		maps := make([]map[string]any, len(recs))
		for i := range recs {
			maps[i] = recs[i].m
		}
		order := sortedOrder(maps, st.sort)
		sorted := make([]rec, len(recs))
		for i, j := range order {
			sorted[i] = recs[j]
		}
		recs = sorted
	}

	total := len(recs)
	start := st.page * st.pageSize
	if start > total {
		start = total
	}
	end := start + st.pageSize
	if end > total {
		end = total
	}
	window := make([]json.RawMessage, 0, end-start)
	for _, r := range recs[start:end] {
		window = append(window, r.raw)
	}
	rows, err := decodeRows[T](window)
	if err != nil {
		return page[T]{}, err
	}
	return page[T]{rows: rows, total: total, trusted: true}, nil
}

func decodeRows[T any](items []json.RawMessage) ([]T, error) {
	rows := make([]T, 0, len(items))
	for _, it := range items {
		var v T
		if err := json.Unmarshal(it, &v); err != nil {
			return nil, fmt.Errorf("decode list row: %w", err)
		}
		rows = append(rows, v)
	}
	return rows, nil
}

func matchesFilters(m map[string]any, filters map[string]string) bool {
	for k, want := range filters {
		got, ok := Lookup(m, k)
		if !ok || foldString(got) != foldString(want) {
			return false
		}
	}
	return true
}
