package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-catalog-browser/catalog"
	"github.com/aluiziolira/go-catalog-browser/models"
	"github.com/aluiziolira/go-catalog-browser/pipeline"
	"github.com/aluiziolira/go-catalog-browser/query"
)

// export applies the initial actions, then walks the result pages with Next
// until the last page or cfg.MaxPages, feeding each ready page to p.
// Failed pages are recorded and skipped.
func (a *app) export(ctx context.Context, p *pipeline.Pipeline, initial []query.Action) (*models.ExportSummary, error) {
	summary := &models.ExportSummary{
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}

	for _, action := range initial {
		if _, err := a.ctrl.Apply(ctx, action); err != nil {
			return nil, fmt.Errorf("apply %s: %w", action.Kind(), err)
		}
	}

	for {
		v, err := a.ctrl.Settled(ctx)
		if err != nil {
			return nil, fmt.Errorf("wait for page: %w", err)
		}
		summary.Query = v.State.Fingerprint()
		summary.PageCount++
		summary.TotalPages = v.TotalPages

		if v.Failed {
			summary.FailedPages = append(summary.FailedPages, v.Page)
			summary.ErrorsByType[catalog.ErrorType(v.Err)]++
			slog.Warn("page failed, skipping",
				slog.Int("page", v.Page),
				slog.Any("error", v.Err),
			)
		} else {
			summary.ItemCount += len(v.Items)
			if err := p.Process(v.Items...); err != nil {
				return nil, fmt.Errorf("process page %d: %w", v.Page, err)
			}
			slog.Info("page exported",
				slog.Int("page", v.Page),
				slog.Int("total_pages", v.TotalPages),
				slog.Int("items", len(v.Items)),
			)
		}

		if !v.CanGoNext || summary.PageCount >= a.cfg.MaxPages {
			break
		}
		if _, err := a.ctrl.Apply(ctx, query.SetPage{Page: v.NextPage()}); err != nil {
			return nil, fmt.Errorf("advance to page %d: %w", v.NextPage(), err)
		}
	}

	summary.EndTime = time.Now()
	summary.RequestCount, summary.ErrorCount = a.client.Stats()
	return summary, nil
}
