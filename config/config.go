package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Config holds the catalog client and controller configuration.
type Config struct {
	BaseURL     string
	ListPath    string
	Timeout     time.Duration
	Parallelism int
	Delay       time.Duration
	RandomDelay time.Duration
	UserAgent   string

	PageSizes       []int
	DefaultPageSize int
	CacheSize       int // 0 disables the page cache

	MetricsAddr string
	Verbose     bool
	LogEncoding string // console, json, or auto

	OutputFile         string
	OutputFormat       string // csv, json, or dual
	PipelineBufferSize int
	BatchSize          int
	DedupeMaxSize      int
	MaxPages           int
}

// DefaultConfig returns defaults matching the storefront collection page.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "http://localhost:4000",
		ListPath:           "/api/product/list",
		Timeout:            10 * time.Second,
		Parallelism:        4,
		Delay:              0,
		RandomDelay:        0,
		UserAgent:          "go-catalog-browser/1.0",
		PageSizes:          []int{10, 20, 30},
		DefaultPageSize:    10,
		CacheSize:          0,
		MetricsAddr:        "",
		Verbose:            false,
		LogEncoding:        "auto",
		OutputFile:         "output/products.csv",
		OutputFormat:       "csv",
		PipelineBufferSize: 512,
		BatchSize:          64,
		DedupeMaxSize:      100000,
		MaxPages:           50,
	}
}

// Endpoint returns the absolute URL of the list endpoint.
func (c *Config) Endpoint() (*url.URL, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	ref, err := url.Parse(c.ListPath)
	if err != nil {
		return nil, fmt.Errorf("invalid list path: %w", err)
	}
	return base.ResolveReference(ref), nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https")
	}
	if !strings.HasPrefix(c.ListPath, "/") {
		return fmt.Errorf("list path must start with /")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.RandomDelay < 0 {
		return fmt.Errorf("random delay cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	if len(c.PageSizes) == 0 {
		return fmt.Errorf("page sizes cannot be empty")
	}
	for _, size := range c.PageSizes {
		if size <= 0 {
			return fmt.Errorf("page sizes must be positive, got %d", size)
		}
	}
	if !slices.Contains(c.PageSizes, c.DefaultPageSize) {
		return fmt.Errorf("default page size %d must be one of the page sizes %v", c.DefaultPageSize, c.PageSizes)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}

	switch c.LogEncoding {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("log encoding must be auto, console, or json")
	}

	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	if c.PipelineBufferSize <= 0 {
		return fmt.Errorf("pipeline buffer size must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}

	return nil
}
