package query

import "github.com/aluiziolira/go-catalog-browser/models"

// tagSeparator joins multiple filter tags in a single query parameter.
const tagSeparator = ","

// Serialize converts a state into the request sent to the list endpoint.
// Filter parameters stay empty when their set is empty.
func Serialize(s State) models.PageRequest {
	req := models.PageRequest{
		Page:   s.Page,
		Limit:  s.PageSize,
		Sort:   string(s.Sort),
		Search: s.Search,
	}
	if s.Categories.Len() > 0 {
		req.Category = s.Categories.Join(tagSeparator)
	}
	if s.SubCategories.Len() > 0 {
		req.SubCategory = s.SubCategories.Join(tagSeparator)
	}
	return req
}
