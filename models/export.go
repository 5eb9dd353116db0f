package models

import "time"

// ExportSummary holds the overall result of an export crawl.
type ExportSummary struct {
	Query        string
	StartTime    time.Time
	EndTime      time.Time
	PageCount    int
	TotalPages   int
	ItemCount    int
	RequestCount int
	ErrorCount   int
	FailedPages  []int
	ErrorsByType map[string]int
}

// Duration is the wall time of the crawl.
func (s *ExportSummary) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// SuccessRate is the share of requests that did not fail, in percent.
func (s *ExportSummary) SuccessRate() float64 {
	if s.RequestCount == 0 {
		return 0
	}
	return float64(s.RequestCount-s.ErrorCount) / float64(s.RequestCount) * 100
}
