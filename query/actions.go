package query

// Action is a user intent applied by the Reducer. The set of variants is closed.
type Action interface {
	Kind() string
	isAction()
}

// ToggleCategory adds or removes a category filter.
type ToggleCategory struct {
	Tag string
}

// ToggleSubCategory adds or removes a subcategory filter.
type ToggleSubCategory struct {
	Tag string
}

// SetSort replaces the sort mode.
type SetSort struct {
	Mode SortMode
}

// SetSearch replaces the free-text search.
type SetSearch struct {
	Text string
}

// SetPage moves to a page, subject to the known page bounds.
type SetPage struct {
	Page int
}

// SetPageSize replaces the number of items per page.
type SetPageSize struct {
	Size int
}

func (ToggleCategory) Kind() string    { return "toggle_category" }
func (ToggleSubCategory) Kind() string { return "toggle_subcategory" }
func (SetSort) Kind() string           { return "set_sort" }
func (SetSearch) Kind() string         { return "set_search" }
func (SetPage) Kind() string           { return "set_page" }
func (SetPageSize) Kind() string       { return "set_page_size" }

func (ToggleCategory) isAction()    {}
func (ToggleSubCategory) isAction() {}
func (SetSort) isAction()           {}
func (SetSearch) isAction()         {}
func (SetPage) isAction()           {}
func (SetPageSize) isAction()       {}
