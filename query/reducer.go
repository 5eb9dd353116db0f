package query

import (
	"slices"
	"strings"
)

// DefaultPageSizes are the page sizes offered by the page size selector.
var DefaultPageSizes = []int{10, 20, 30}

var defaultReducer = NewReducer(nil)

// Reducer applies actions to states. It only carries the allowed page sizes
// and is safe for concurrent use.
type Reducer struct {
	pageSizes []int
}

// NewReducer returns a reducer accepting the given page sizes. An empty list
// selects DefaultPageSizes.
func NewReducer(pageSizes []int) *Reducer {
	if len(pageSizes) == 0 {
		pageSizes = DefaultPageSizes
	}
	return &Reducer{pageSizes: slices.Clone(pageSizes)}
}

// PageSizes returns the allowed page sizes.
func (r *Reducer) PageSizes() []int {
	return slices.Clone(r.pageSizes)
}

// Apply uses the default page sizes.
func Apply(state State, action Action, lastPage int) State {
	return defaultReducer.Apply(state, action, lastPage)
}

// Apply returns the state that follows action. lastPage is the last known
// total page count; 0 means no result has been seen and only the lower bound
// is enforced. Rejected actions return state unchanged.
//
// Every change except SetPage invalidates the meaning of the current page
// number, so those actions reset Page to 1.
func (r *Reducer) Apply(state State, action Action, lastPage int) State {
	next := state

	switch a := action.(type) {
	case ToggleCategory:
		tag := strings.TrimSpace(a.Tag)
		if tag == "" {
			return state
		}
		next.Categories = state.Categories.Toggle(tag)
		next.Page = 1

	case ToggleSubCategory:
		tag := strings.TrimSpace(a.Tag)
		if tag == "" {
			return state
		}
		next.SubCategories = state.SubCategories.Toggle(tag)
		next.Page = 1

	case SetSort:
		if !a.Mode.Valid() {
			return state
		}
		next.Sort = a.Mode
		next.Page = 1

	case SetSearch:
		next.Search = a.Text
		next.Page = 1

	case SetPageSize:
		if !slices.Contains(r.pageSizes, a.Size) {
			return state
		}
		next.PageSize = a.Size
		next.Page = 1

	case SetPage:
		if a.Page < 1 {
			return state
		}
		if lastPage > 0 && a.Page > lastPage {
			return state
		}
		next.Page = a.Page

	default:
		return state
	}

	return next
}
