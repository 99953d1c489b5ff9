package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kacperjurak/batteryaging"
	"github.com/kacperjurak/batteryaging/pkg/render"
)

// Environment variables read by FromEnv.
const (
	EnvDatasetDir  = "BATTERY_DATASET_DIR"
	EnvDatasetURL  = "BATTERY_DATASET_URL"
	EnvCacheDir    = "BATTERY_CACHE_DIR"
	EnvKaggleUser  = "KAGGLE_USERNAME"
	EnvKaggleKey   = "KAGGLE_KEY"
	EnvOutput      = "BATTERY_OUTPUT"
	EnvLogLevel    = "BATTERY_LOG_LEVEL"
	EnvProgress    = "BATTERY_PROGRESS"
	EnvTrend       = "BATTERY_TREND"
	EnvHTTPTimeout = "BATTERY_HTTP_TIMEOUT"
	EnvPlotlyURL   = "BATTERY_PLOTLY_URL"
	EnvPlotlyFile  = "BATTERY_PLOTLY_FILE"
	EnvPlotlyCDN   = "BATTERY_PLOTLY_CDN"
)

// DefaultDatasetURL is the Kaggle download endpoint of the NASA battery dataset.
const DefaultDatasetURL = "https://www.kaggle.com/api/v1/datasets/download/patrickfleith/nasa-battery-dataset"

// DefaultOutput is the name of the generated chart document.
const DefaultOutput = "battery_aging_analysis.html"

// Config holds all configuration settings for one pipeline run
type Config struct {
	// DatasetDir points at an already extracted dataset. When set, nothing
	// is downloaded.
	DatasetDir     string
	DatasetURL     string
	CacheDir       string
	KaggleUsername string
	KaggleKey      string
	OutputPath     string
	LogLevel       logrus.Level
	Progress       bool
	Trend          batteryaging.TrendMethod
	HTTPTimeout    time.Duration

	// PlotlyFile is a local plotly.js bundle to inline. When empty the bundle
	// at PlotlyURL is downloaded once into CacheDir.
	PlotlyURL  string
	PlotlyFile string
	// PlotlyCDN references PlotlyURL from the document instead of inlining it.
	PlotlyCDN  bool
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	cache := filepath.Join(os.TempDir(), "batteryaging")
	if dir, err := os.UserCacheDir(); err == nil {
		cache = filepath.Join(dir, "batteryaging")
	}
	return &Config{
		DatasetURL:  DefaultDatasetURL,
		CacheDir:    cache,
		OutputPath:  DefaultOutput,
		LogLevel:    logrus.InfoLevel,
		Progress:    false,
		Trend:       batteryaging.TrendExp,
		HTTPTimeout: 10 * time.Minute,
		PlotlyURL:   render.DefaultPlotlyURL,
	}
}

// Load returns DefaultConfig overlaid with the process environment.
func Load() (*Config, error) {
	return FromEnv(os.LookupEnv)
}

// FromEnv returns DefaultConfig overlaid with the variables lookup reports.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvDatasetDir, &cfg.DatasetDir)
	str(EnvDatasetURL, &cfg.DatasetURL)
	str(EnvCacheDir, &cfg.CacheDir)
	str(EnvKaggleUser, &cfg.KaggleUsername)
	str(EnvKaggleKey, &cfg.KaggleKey)
	str(EnvOutput, &cfg.OutputPath)
	str(EnvPlotlyURL, &cfg.PlotlyURL)
	str(EnvPlotlyFile, &cfg.PlotlyFile)

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", EnvLogLevel)
		}
		cfg.LogLevel = level
	}

	if v, ok := lookup(EnvProgress); ok && v != "" {
		progress, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", EnvProgress)
		}
		cfg.Progress = progress
	}

	if v, ok := lookup(EnvPlotlyCDN); ok && v != "" {
		cdn, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", EnvPlotlyCDN)
		}
		cfg.PlotlyCDN = cdn
	}

	if v, ok := lookup(EnvTrend); ok {
		method, err := batteryaging.ParseTrendMethod(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", EnvTrend)
		}
		cfg.Trend = method
	}

	if v, ok := lookup(EnvHTTPTimeout); ok && v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s", EnvHTTPTimeout)
		}
		if timeout <= 0 {
			return nil, errors.Errorf("invalid %s: must be positive, got %s", EnvHTTPTimeout, v)
		}
		cfg.HTTPTimeout = timeout
	}

	return cfg, nil
}
