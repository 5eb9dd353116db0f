// Package presenter derives the signals a host needs to draw the current page
// and offers a plain text rendering of them.
package presenter

import (
	"fmt"

	"github.com/aluiziolira/go-catalog-browser/coordinator"
	"github.com/aluiziolira/go-catalog-browser/models"
	"github.com/aluiziolira/go-catalog-browser/query"
)

// View is everything a host needs to draw the list and its controls.
type View struct {
	State      query.State
	Items      []models.ProductSummary
	Page       int
	TotalPages int

	CanGoPrevious bool
	CanGoNext     bool
	IsLoading     bool
	Failed        bool
	Err           error

	// ShowLoadingIndicator is set while loading with nothing to show yet.
	ShowLoadingIndicator bool

	// Stale is set when Items were produced for a different state than the
	// current one, e.g. while the next page loads.
	Stale bool

	PageLabel string
	SortLabel string
}

// Derive computes the view for the current state and the published result.
func Derive(state query.State, result coordinator.Result) View {
	totalPages := max(result.TotalPages, 1)
	isLoading := result.Status == coordinator.StatusLoading

	return View{
		State:                state,
		Items:                result.Items,
		Page:                 state.Page,
		TotalPages:           totalPages,
		CanGoPrevious:        state.Page > 1,
		CanGoNext:            state.Page < totalPages,
		IsLoading:            isLoading,
		ShowLoadingIndicator: isLoading && len(result.Items) == 0,
		Failed:               result.Status == coordinator.StatusFailed,
		Err:                  result.Err,
		Stale:                !result.ForQuery.Equal(state),
		PageLabel:            PageLabel(state.Page, totalPages),
		SortLabel:            state.Sort.Label(),
	}
}

// PageLabel formats the pagination caption.
func PageLabel(page, totalPages int) string {
	return fmt.Sprintf("Page %d of %d", page, totalPages)
}

// PreviousPage is the page selected by a "previous" control.
func (v View) PreviousPage() int {
	return max(v.Page-1, 1)
}

// NextPage is the page selected by a "next" control.
func (v View) NextPage() int {
	return min(v.Page+1, v.TotalPages)
}
