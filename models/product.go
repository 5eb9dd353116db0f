// Package models defines the wire data structures exchanged with the catalog backend.
package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// ProductSummary is a single listing row returned by the backend.
// The controller never interprets it beyond passing it to the view.
type ProductSummary struct {
	ID    string          `csv:"id" json:"_id"`
	Name  string          `csv:"name" json:"name"`
	Slug  string          `csv:"slug" json:"slug"`
	Price decimal.Decimal `csv:"price" json:"price"`
	Image ImageRef        `csv:"image" json:"image"`
}

// ImageRef holds the image reference(s) of a product. The backend sends
// either a single URL or an array of URLs.
type ImageRef []string

// UnmarshalJSON accepts a string, an array of strings or null.
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*r = nil
			return nil
		}
		*r = ImageRef{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("image must be a string or an array of strings: %w", err)
	}
	*r = ImageRef(many)
	return nil
}

// Primary returns the first image reference, or "" when there is none.
func (r ImageRef) Primary() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// PageRequest is the serialized form of a query sent to the list endpoint.
type PageRequest struct {
	Page        int
	Limit       int
	Sort        string
	Search      string
	Category    string // comma-joined, empty when no filter is active
	SubCategory string // comma-joined, empty when no filter is active
}

// Values encodes the request as URL query parameters. Category filters are
// only present when non-empty.
func (r PageRequest) Values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(r.Page))
	values.Set("limit", strconv.Itoa(r.Limit))
	values.Set("sort", r.Sort)
	values.Set("search", r.Search)
	if r.Category != "" {
		values.Set("category", r.Category)
	}
	if r.SubCategory != "" {
		values.Set("subCategory", r.SubCategory)
	}
	return values
}

// Encode returns the canonical query string (keys sorted).
func (r PageRequest) Encode() string {
	return r.Values().Encode()
}

// PageResponse is the body returned by the list endpoint.
type PageResponse struct {
	Success    bool             `json:"success"`
	Data       []ProductSummary `json:"data"`
	TotalPages int              `json:"totalPages"`
	Message    string           `json:"message,omitempty"`
}
