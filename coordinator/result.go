package coordinator

import (
	"github.com/aluiziolira/go-catalog-browser/models"
	"github.com/aluiziolira/go-catalog-browser/query"
)

// Status is the lifecycle state of a Result.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the latest data known for some query state.
//
// ForQuery and Generation identify the fetch that produced Items. While a
// newer fetch is loading they keep pointing at the displayed data.
type Result struct {
	Items      []models.ProductSummary
	TotalPages int
	Status     Status
	ForQuery   query.State
	Generation uint64
	Err        error
}

// EmptyResult is the result published before any fetch resolves.
func EmptyResult() Result {
	return Result{
		TotalPages: 1,
		Status:     StatusLoading,
	}
}

// Resolved reports whether a fetch has ever produced this result.
func (r Result) Resolved() bool {
	return r.Generation > 0
}

// LastPage is the upper page bound for the reducer: 0 until a fetch resolved.
func (r Result) LastPage() int {
	if !r.Resolved() {
		return 0
	}
	return r.TotalPages
}
