package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aluiziolira/go-catalog-browser/config"
	"github.com/aluiziolira/go-catalog-browser/models"
	"github.com/aluiziolira/go-catalog-browser/pipeline"
	"github.com/aluiziolira/go-catalog-browser/query"
	"github.com/jarcoal/httpmock"
)

const testEndpoint = "http://catalog.test/api/product/list"

// catalogResponder serves totalPages pages of two products each. Product ids
// encode the category filter and the page so tests can tell them apart.
func catalogResponder(totalPages int, failPages ...int) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		if slices.Contains(failPages, page) {
			return httpmock.NewStringResponse(http.StatusInternalServerError, "upstream error"), nil
		}

		prefix := q.Get("category")
		if prefix == "" {
			prefix = "all"
		}
		body := fmt.Sprintf(`{"success":true,"totalPages":%d,"data":[
			{"_id":"%s-%d-a","name":"%s item A","price":10,"image":"a.png"},
			{"_id":"%s-%d-b","name":"%s item B","price":20.5,"image":["b.png"]}
		]}`, totalPages, prefix, page, prefix, prefix, page, prefix)
		return httpmock.NewStringResponse(http.StatusOK, body), nil
	}
}

func newTestApp(t *testing.T, responder httpmock.Responder, mutate func(*config.Config)) (*app, *httpmock.MockTransport) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://catalog.test"
	cfg.OutputFile = filepath.Join(t.TempDir(), "products.csv")
	if mutate != nil {
		mutate(cfg)
	}

	a, err := newApp(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, testEndpoint, responder)
	a.client.WithTransport(transport)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	stop := a.start(ctx)
	t.Cleanup(func() {
		if err := stop(); err != nil {
			t.Errorf("stop controller: %v", err)
		}
		cancel()
	})
	return a, transport
}

func TestExportWalksAllPages(t *testing.T) {
	a, _ := newTestApp(t, catalogResponder(3), nil)

	var out bytes.Buffer
	if err := a.runExport(context.Background(), &out, []query.Action{query.ToggleCategory{Tag: "Men"}}); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(a.cfg.OutputFile)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("rows = %d, want header + 6", len(records))
	}

	var ids []string
	for _, record := range records[1:] {
		ids = append(ids, record[0])
	}
	slices.Sort(ids)
	want := []string{"Men-1-a", "Men-1-b", "Men-2-a", "Men-2-b", "Men-3-a", "Men-3-b"}
	if !slices.Equal(ids, want) {
		t.Fatalf("exported ids = %v, want %v", ids, want)
	}

	summary := out.String()
	for _, fragment := range []string{"Export complete", "Pages:         3 of 3", "Total items:   6"} {
		if !strings.Contains(summary, fragment) {
			t.Errorf("summary missing %q:\n%s", fragment, summary)
		}
	}
}

func TestExportRespectsMaxPages(t *testing.T) {
	a, transport := newTestApp(t, catalogResponder(10), func(cfg *config.Config) {
		cfg.MaxPages = 2
		cfg.OutputFormat = "json"
		cfg.OutputFile = filepath.Join(filepath.Dir(cfg.OutputFile), "products.jsonl")
	})

	var out bytes.Buffer
	if err := a.runExport(context.Background(), &out, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := transport.GetTotalCallCount(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
	if !strings.Contains(out.String(), "Pages:         2 of 10") {
		t.Fatalf("unexpected summary:\n%s", out.String())
	}
}

func TestExportSkipsFailedPages(t *testing.T) {
	a, _ := newTestApp(t, catalogResponder(3, 2), nil)

	writer := &recordingWriter{}
	p := pipeline.NewPipeline(context.Background(), writer, a.cfg)
	p.Start(1)

	summary, err := a.export(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close pipeline: %v", err)
	}

	if !slices.Equal(summary.FailedPages, []int{2}) {
		t.Fatalf("failed pages = %v, want [2]", summary.FailedPages)
	}
	if summary.ErrorsByType["server_error"] != 1 {
		t.Fatalf("errors by type = %v", summary.ErrorsByType)
	}
	if summary.PageCount != 3 || summary.ItemCount != 4 {
		t.Fatalf("pages=%d items=%d, want 3 and 4", summary.PageCount, summary.ItemCount)
	}
	if got := writer.count(); got != 4 {
		t.Fatalf("written = %d, want 4", got)
	}
}

func TestInteractiveSession(t *testing.T) {
	a, _ := newTestApp(t, catalogResponder(3), nil)

	in := strings.NewReader("category Men\nnext\nbogus\nhelp\nquit\n")
	var out bytes.Buffer
	if err := a.interactive(context.Background(), in, &out); err != nil {
		t.Fatalf("interactive: %v", err)
	}

	text := out.String()
	for _, fragment := range []string{
		"Page 1 of 3 | Sort by: Relevant | 10 per page",
		"Page 1 of 3 | Sort by: Relevant | Category: Men | 10 per page",
		"Page 2 of 3 | Sort by: Relevant | Category: Men | 10 per page",
		"Men item A",
		"error: unknown command",
		"Commands:",
	} {
		if !strings.Contains(text, fragment) {
			t.Errorf("output missing %q:\n%s", fragment, text)
		}
	}
}

func TestOptionsActions(t *testing.T) {
	opts := &options{categories: "Men, Women,", types: "Topwear", sort: "high-low", search: "tee", pageSize: 20}
	actions, err := opts.actions()
	if err != nil {
		t.Fatalf("actions: %v", err)
	}

	state := query.Default()
	for _, action := range actions {
		state = query.Apply(state, action, 0)
	}
	if got := state.Fingerprint(); got != "category=Men%2CWomen&limit=20&page=1&search=tee&sort=high-low&subCategory=Topwear" {
		t.Fatalf("fingerprint = %s", got)
	}

	if _, err := (&options{sort: "newest"}).actions(); err == nil {
		t.Fatalf("expected error for unknown sort")
	}
}

func TestParseFlagsOverridesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	opts, err := parseFlags(cfg, []string{"-base-url", "https://shop.example.com", "-cache-size", "16", "-format", "DUAL", "-export", "-category", "Kids"})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.BaseURL != "https://shop.example.com" || cfg.CacheSize != 16 || cfg.OutputFormat != "dual" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !opts.export || opts.categories != "Kids" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

type recordingWriter struct {
	mu       sync.Mutex
	products []*models.ProductSummary
}

func (w *recordingWriter) Write(products []*models.ProductSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.products = append(w.products, products...)
	return nil
}

func (w *recordingWriter) Close() error    { return nil }
func (w *recordingWriter) Validate() error { return nil }

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.products)
}
