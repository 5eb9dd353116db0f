package presenter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/aluiziolira/go-catalog-browser/coordinator"
	"github.com/aluiziolira/go-catalog-browser/models"
	"github.com/aluiziolira/go-catalog-browser/query"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onPage(n int) query.State {
	s := query.Default()
	s.Page = n
	return s
}

func readyResult(state query.State, totalPages int, items ...models.ProductSummary) coordinator.Result {
	return coordinator.Result{
		Items:      items,
		TotalPages: totalPages,
		Status:     coordinator.StatusReady,
		ForQuery:   state,
		Generation: 1,
	}
}

func TestDeriveNavigation(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		totalPages int
		wantPrev   bool
		wantNext   bool
	}{
		{name: "single page", page: 1, totalPages: 1, wantPrev: false, wantNext: false},
		{name: "first of many", page: 1, totalPages: 5, wantPrev: false, wantNext: true},
		{name: "middle", page: 3, totalPages: 5, wantPrev: true, wantNext: true},
		{name: "last", page: 5, totalPages: 5, wantPrev: true, wantNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := onPage(tt.page)
			v := Derive(state, readyResult(state, tt.totalPages))
			assert.Equal(t, tt.wantPrev, v.CanGoPrevious)
			assert.Equal(t, tt.wantNext, v.CanGoNext)
			assert.False(t, v.IsLoading)
			assert.False(t, v.Stale)
		})
	}
}

func TestDeriveLoadingIndicator(t *testing.T) {
	initial := Derive(query.Default(), coordinator.EmptyResult())
	assert.True(t, initial.IsLoading)
	assert.True(t, initial.ShowLoadingIndicator)
	assert.Equal(t, "Page 1 of 1", initial.PageLabel)

	shown := readyResult(onPage(1), 3, models.ProductSummary{ID: "p1", Name: "Tee"})
	shown.Status = coordinator.StatusLoading
	v := Derive(onPage(2), shown)
	assert.True(t, v.IsLoading)
	assert.False(t, v.ShowLoadingIndicator, "previous items stay on screen")
	assert.True(t, v.Stale)
	assert.Len(t, v.Items, 1)
}

func TestDeriveFailure(t *testing.T) {
	state := onPage(2)
	result := readyResult(state, 4, models.ProductSummary{ID: "p1"})
	result.Status = coordinator.StatusFailed
	result.Err = errors.New("timeout")

	v := Derive(state, result)
	assert.True(t, v.Failed)
	assert.False(t, v.IsLoading)
	assert.EqualError(t, v.Err, "timeout")
	assert.Equal(t, "Page 2 of 4", v.PageLabel)
}

func TestPreviousNextPages(t *testing.T) {
	state := onPage(1)
	v := Derive(state, readyResult(state, 1))
	assert.Equal(t, 1, v.PreviousPage())
	assert.Equal(t, 1, v.NextPage())

	state = onPage(3)
	v = Derive(state, readyResult(state, 4))
	assert.Equal(t, 2, v.PreviousPage())
	assert.Equal(t, 4, v.NextPage())
}

func TestRenderListing(t *testing.T) {
	state := query.Default()
	state.Search = "tee"
	state.Categories = query.NewTagSet("Women", "Men")

	result := readyResult(state, 2,
		models.ProductSummary{ID: "p1", Name: "Cotton Tee", Slug: "cotton-tee", Price: decimal.RequireFromString("12.5")},
		models.ProductSummary{ID: "p2", Name: "日本のシャツ", Slug: "nihon", Price: decimal.NewFromInt(120)},
	)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Derive(state, result)))
	out := buf.String()

	assert.Contains(t, out, "Page 1 of 2 | Sort by: Relevant | Search: \"tee\" | Category: Men, Women | 10 per page")
	assert.Contains(t, out, "12.50  cotton-tee")
	assert.Contains(t, out, "120.00  nihon")
	assert.True(t, strings.HasSuffix(out, "  Page 1 of 2 >\n"))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t,
		runewidth.StringWidth(lines[1][:strings.Index(lines[1], "  cotton-tee")]),
		runewidth.StringWidth(lines[2][:strings.Index(lines[2], "  nihon")]),
		"price column is aligned")
}

func TestRenderStates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Derive(query.Default(), coordinator.EmptyResult())))
	assert.Contains(t, buf.String(), "Loading...\n")

	buf.Reset()
	state := query.Default()
	require.NoError(t, Render(&buf, Derive(state, readyResult(state, 1))))
	assert.Contains(t, buf.String(), "No products found.")

	buf.Reset()
	failed := readyResult(state, 1)
	failed.Status = coordinator.StatusFailed
	failed.Err = errors.New("connection refused")
	require.NoError(t, Render(&buf, Derive(state, failed)))
	assert.Contains(t, buf.String(), "Failed to load products: connection refused")
	assert.NotContains(t, buf.String(), "No products found.")
}

func TestRenderTruncatesLongNames(t *testing.T) {
	state := query.Default()
	long := strings.Repeat("x", nameWidth+10)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Derive(state, readyResult(state, 1, models.ProductSummary{Name: long}))))
	assert.Contains(t, buf.String(), ellipsis)
	assert.NotContains(t, buf.String(), long)
}
