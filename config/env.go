package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CATALOG_"

// Load returns DefaultConfig overridden by the given .env files and then by
// the process environment. Missing .env files are skipped; variables already
// set in the environment win over file values.
func Load(files ...string) (*Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := DefaultConfig()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := EnvString(EnvPrefix + "BASE_URL"); ok {
		c.BaseURL = v
	}
	if v, ok := EnvString(EnvPrefix + "LIST_PATH"); ok {
		c.ListPath = v
	}
	if v, ok := EnvString(EnvPrefix + "USER_AGENT"); ok {
		c.UserAgent = v
	}
	if v, ok := EnvString(EnvPrefix + "METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	if v, ok := EnvString(EnvPrefix + "LOG_ENCODING"); ok {
		c.LogEncoding = strings.ToLower(v)
	}
	if v, ok := EnvString(EnvPrefix + "OUTPUT"); ok {
		c.OutputFile = v
	}
	if v, ok := EnvString(EnvPrefix + "FORMAT"); ok {
		c.OutputFormat = strings.ToLower(v)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"PARALLEL", &c.Parallelism},
		{"PAGE_SIZE", &c.DefaultPageSize},
		{"CACHE_SIZE", &c.CacheSize},
		{"BUFFER_SIZE", &c.PipelineBufferSize},
		{"BATCH_SIZE", &c.BatchSize},
		{"DEDUPE_MAX_SIZE", &c.DedupeMaxSize},
		{"MAX_PAGES", &c.MaxPages},
	}
	for _, item := range ints {
		v, ok, err := EnvInt(EnvPrefix + item.name)
		if err != nil {
			return err
		}
		if ok {
			*item.dst = v
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"TIMEOUT", &c.Timeout},
		{"DELAY", &c.Delay},
		{"RANDOM_DELAY", &c.RandomDelay},
	}
	for _, item := range durations {
		v, ok, err := EnvDuration(EnvPrefix + item.name)
		if err != nil {
			return err
		}
		if ok {
			*item.dst = v
		}
	}

	if v, ok, err := EnvBool(EnvPrefix + "VERBOSE"); err != nil {
		return err
	} else if ok {
		c.Verbose = v
	}

	if v, ok, err := EnvInts(EnvPrefix + "PAGE_SIZES"); err != nil {
		return err
	} else if ok {
		c.PageSizes = v
	}

	return nil
}

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

// EnvBool parses key with strconv.ParseBool.
func EnvBool(key string) (bool, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

// EnvDuration parses key as a time.Duration ("750ms", "5s").
func EnvDuration(key string) (time.Duration, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, true, nil
}

// EnvInts parses key as a comma separated list of integers.
func EnvInts(key string) ([]int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return nil, false, nil
	}
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parsed, err := strconv.Atoi(part)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, parsed)
	}
	return out, true, nil
}
