package listquery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortConfig_Request(t *testing.T) {
	cfg := SortConfig{Key: "nombre", Direction: Asc}

	next := cfg.Request("nombre")
	assert.Equal(t, SortConfig{Key: "nombre", Direction: Desc}, next)

	next = next.Request("rol")
	assert.Equal(t, SortConfig{Key: "rol", Direction: Asc}, next)

	next = next.Request("rol").Request("rol")
	assert.Equal(t, Asc, next.Direction)

	assert.Equal(t, SortConfig{Key: "serial", Direction: Asc}, SortConfig{}.Request("serial"))
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Desc, ParseDirection("DESC"))
	assert.Equal(t, Asc, ParseDirection("asc"))
	assert.Equal(t, Asc, ParseDirection(""))
	assert.Equal(t, Asc, ParseDirection("sideways"))
}

func records(t *testing.T, raw string) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func names(rows []map[string]any) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["nombre"]
	}
	return out
}

func TestSortRecords_MissingValuesLast(t *testing.T) {
	rows := records(t, `[{"nombre":"B"},{"nombre":null},{"nombre":"A"}]`)

	SortRecords(rows, SortConfig{Key: "nombre", Direction: Asc})
	assert.Equal(t, []any{"A", "B", nil}, names(rows))

	SortRecords(rows, SortConfig{Key: "nombre", Direction: Desc})
	assert.Equal(t, []any{"B", "A", nil}, names(rows))
}

func TestSortRecords_AbsentKeyLast(t *testing.T) {
	rows := records(t, `[{"id":1},{"nombre":"b"},{"nombre":"A"}]`)
	SortRecords(rows, SortConfig{Key: "nombre", Direction: Desc})
	assert.Equal(t, []any{"b", "A", nil}, names(rows))
}

func TestSortRecords_CaseInsensitive(t *testing.T) {
	rows := records(t, `[{"nombre":"beta"},{"nombre":"Alpha"},{"nombre":"alpha2"}]`)
	SortRecords(rows, SortConfig{Key: "nombre", Direction: Asc})
	assert.Equal(t, []any{"Alpha", "alpha2", "beta"}, names(rows))
}

func TestSortRecords_Numeric(t *testing.T) {
	rows := records(t, `[{"n":10},{"n":9},{"n":100}]`)
	SortRecords(rows, SortConfig{Key: "n", Direction: Asc})
	got := []any{rows[0]["n"], rows[1]["n"], rows[2]["n"]}
	assert.Equal(t, []any{9.0, 10.0, 100.0}, got)
}

func TestSortRecords_DottedPath(t *testing.T) {
	rows := records(t, `[
		{"id":1,"hotel":{"name":"Zeta"}},
		{"id":2,"hotel":null},
		{"id":3,"hotel":{"name":"alfa"}}
	]`)
	SortRecords(rows, SortConfig{Key: "hotel.name", Direction: Asc})
	ids := []any{rows[0]["id"], rows[1]["id"], rows[2]["id"]}
	assert.Equal(t, []any{3.0, 1.0, 2.0}, ids)
}

func TestSortRecords_EmptyKeyKeepsOrder(t *testing.T) {
	rows := records(t, `[{"nombre":"B"},{"nombre":"A"}]`)
	SortRecords(rows, SortConfig{})
	assert.Equal(t, []any{"B", "A"}, names(rows))
}

func TestLookup(t *testing.T) {
	rec := map[string]any{"a": map[string]any{"b": "x", "n": nil}}

	v, ok := Lookup(rec, "a.b")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = Lookup(rec, "a.n")
	assert.False(t, ok)
	_, ok = Lookup(rec, "a.b.c")
	assert.False(t, ok)
	_, ok = Lookup(rec, "z")
	assert.False(t, ok)
}

func TestMatches(t *testing.T) {
	rec := map[string]any{"serial": "SN-001", "hotel": map[string]any{"name": "Playa"}}
	assert.True(t, matches(rec, "sn-0"))
	assert.True(t, matches(rec, "PLAYA"))
	assert.True(t, matches(rec, ""))
	assert.False(t, matches(rec, "montaña"))
}
