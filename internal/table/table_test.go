package table

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wellness-client/internal/models"
)

type person struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func names[T any](rows []T, name func(T) string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = name(r)
	}
	return out
}

func TestAliceBobExample(t *testing.T) {
	rows := []person{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}
	tbl := New([]Column[person]{{Key: "id", Header: "ID"}, {Key: "name", Header: "Name"}}, rows)

	tbl.SetSearch("ali")
	assert.Equal(t, []person{{ID: 1, Name: "Alice"}}, tbl.Rows())

	tbl.SetSearch("")
	tbl.Toggle("name")
	tbl.Toggle("name")
	assert.Equal(t, SortState{Key: "name", Direction: Descending}, tbl.Sort())
	assert.Equal(t, []person{{ID: 2, Name: "Bob"}, {ID: 1, Name: "Alice"}}, tbl.Rows())
}

func TestSearchMatchesExactlyTheRecordsContainingTerm(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abcAB C1")
	randomWord := func() string {
		n := rng.Intn(6)
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		return b.String()
	}

	for round := 0; round < 200; round++ {
		rows := make([]person, rng.Intn(8))
		for i := range rows {
			rows[i] = person{ID: rng.Intn(30), Name: randomWord()}
		}
		term := randomWord()

		got := Search(rows, term)
		var want []person
		for _, r := range rows {
			if strings.Contains(strings.ToLower(fmt.Sprint(r.ID)), strings.ToLower(term)) ||
				strings.Contains(strings.ToLower(r.Name), strings.ToLower(term)) {
				want = append(want, r)
			}
		}
		if want == nil {
			want = []person{}
		}
		require.Equal(t, want, got, "rows=%v term=%q", rows, term)
	}
}

func TestToggleReversesStrictOrderAndKeepsTiesStable(t *testing.T) {
	rows := []person{
		{ID: 1, Name: "Cara"},
		{ID: 2, Name: "Alice"},
		{ID: 3, Name: "Bob"},
		{ID: 4, Name: "Alice"},
		{ID: 5, Name: "Bob"},
	}
	tbl := New([]Column[person]{{Key: "name"}}, rows)

	assert.Equal(t, Ascending, tbl.Toggle("name").Direction)
	asc := tbl.Rows()
	assert.Equal(t, []int{2, 4, 3, 5, 1}, ids(asc))

	assert.Equal(t, Descending, tbl.Toggle("name").Direction)
	desc := tbl.Rows()
	assert.Equal(t, []int{1, 3, 5, 2, 4}, ids(desc))

	assert.Equal(t, Ascending, tbl.Toggle("name").Direction)
	assert.Equal(t, asc, tbl.Rows())

	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(rows), "input is not modified")
}

func TestToggleNewColumnStartsAscending(t *testing.T) {
	tbl := New[person](nil, nil)
	tbl.Toggle("name")
	tbl.Toggle("name")
	assert.Equal(t, SortState{Key: "id", Direction: Ascending}, tbl.Toggle("id"))
}

func ids(rows []person) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestSortUsesNativeOrdering(t *testing.T) {
	rows := []person{{ID: 10, Name: "a"}, {ID: 9, Name: "b"}, {ID: 100, Name: "c"}}
	SortBy(rows, func(p person) any { return p.ID }, Ascending)
	assert.Equal(t, []int{9, 10, 100}, ids(rows), "numbers compare numerically, not as text")

	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	assert.Equal(t, -1, Compare(early, late))
	assert.Equal(t, 1, Compare(&late, early))
	assert.Equal(t, -1, Compare(false, true))
	assert.Equal(t, -1, Compare(nil, "a"))
	assert.Equal(t, 1, Compare("b", nil))
	assert.Equal(t, 0, Compare((*time.Time)(nil), nil))
	assert.Equal(t, -1, Compare("B", "a"), "strings compare lexically")
	assert.Equal(t, -1, Compare(2.5, 3))
	assert.Equal(t, -1, Compare(10, "9x"), "mixed kinds compare by text")
}

func TestFieldsFlattensModels(t *testing.T) {
	closed := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	c := models.Case{ID: "c-1", Title: "Sleep", Priority: "high", ClosedAt: &closed}

	fields := Fields(c)
	assert.Equal(t, "c-1", fields["id"])
	assert.Equal(t, "high", fields["priority"])
	assert.Equal(t, closed, fields["closed_at"])
	assert.Contains(t, fields, "opened_at")

	filter := Fields(models.StudentFilter{Page: models.Page{Search: "x"}, Grade: "10"})
	assert.Equal(t, "x", filter["search"], "embedded structs are inlined")

	record := Fields(map[string]interface{}{"name": "Alice", "meta": map[string]interface{}{"grade": "10"}, "none": nil})
	assert.Equal(t, "Alice", record["name"])
	assert.Equal(t, "10", record["meta.grade"])
	assert.Nil(t, record["none"])
}

func TestSearchSeesTimesAndMaps(t *testing.T) {
	opened := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	cases := []models.Case{{ID: "1", Title: "A", OpenedAt: opened}, {ID: "2", Title: "B"}}
	assert.Len(t, Search(cases, "2024-05-17"), 1)

	records := []map[string]interface{}{{"name": "Alice"}, {"name": "Bob"}}
	assert.Equal(t, []string{"Bob"}, names(Search(records, "BO"), func(r map[string]interface{}) string { return r["name"].(string) }))
}

func TestDataset(t *testing.T) {
	rows := []person{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}
	tbl := New([]Column[person]{
		{Key: "id", Header: "ID"},
		{Key: "name"},
		{Key: "initial", Header: "Initial", Value: func(p person) any { return p.Name[:1] }},
	}, rows)
	tbl.Toggle("initial")
	tbl.Toggle("initial")

	data := tbl.Dataset("Students")
	assert.Equal(t, "Students", data.Title)
	assert.Equal(t, []string{"ID", "name", "Initial"}, data.Headers)
	assert.Equal(t, [][]string{{"2", "Bob", "B"}, {"1", "Alice", "A"}}, data.Rows)
}
