package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aluiziolira/go-catalog-browser/models"
)

var (
	// ErrMalformedPayload marks a body that does not have the expected shape.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrUnsuccessful marks a well-formed body carrying success:false.
	ErrUnsuccessful = errors.New("backend reported failure")
)

// pagePayload mirrors models.PageResponse with pointers so absent fields can
// be told apart from zero values.
type pagePayload struct {
	Success    *bool                    `json:"success"`
	Data       *[]models.ProductSummary `json:"data"`
	TotalPages *int                     `json:"totalPages"`
	Message    string                   `json:"message"`
}

// DecodePage parses a list endpoint body. Missing fields, wrong types,
// trailing data and success:false are all reported as errors. A total page
// count below one is normalised to one.
func DecodePage(body []byte) (*models.PageResponse, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	var payload pagePayload
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedPayload)
	}

	if payload.Success == nil {
		return nil, fmt.Errorf("%w: missing success flag", ErrMalformedPayload)
	}
	if !*payload.Success {
		if payload.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsuccessful, payload.Message)
		}
		return nil, ErrUnsuccessful
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedPayload)
	}
	if payload.TotalPages == nil {
		return nil, fmt.Errorf("%w: missing totalPages", ErrMalformedPayload)
	}

	totalPages := *payload.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}

	return &models.PageResponse{
		Success:    true,
		Data:       *payload.Data,
		TotalPages: totalPages,
		Message:    payload.Message,
	}, nil
}

// ValidateProduct ensures a product carries the fields needed to export it.
func ValidateProduct(p *models.ProductSummary) error {
	if p == nil {
		return fmt.Errorf("product is nil")
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product missing id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product missing name for %s", p.ID)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %s has negative price", p.ID)
	}
	return nil
}

// NormalizeProduct trims whitespace from the textual fields and derives a
// slug from the name when the backend sent none.
func NormalizeProduct(p *models.ProductSummary) {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	images := p.Image[:0]
	for _, ref := range p.Image {
		if ref = strings.TrimSpace(ref); ref != "" {
			images = append(images, ref)
		}
	}
	p.Image = images
}

// Slugify lowercases text and joins its alphanumeric runs with dashes.
func Slugify(text string) string {
	var builder strings.Builder
	dash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && builder.Len() > 0 {
				builder.WriteByte('-')
			}
			dash = false
			builder.WriteRune(r)
		default:
			dash = true
		}
	}
	return builder.String()
}
