package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/pdfbench/pdfbench/pkg/constants"
)

// Default values
const (
	DefaultLogLevel      = "info"
	DefaultEnableVerbose = false

	DefaultTesseractPath = "tesseract"
	DefaultNougatPath    = "nougat"
	DefaultGrobidURL     = "http://localhost:8070"
)

// Config holds application configuration
type Config struct {
	// External tool paths (persisted to the config file)
	TesseractPath string `json:"tesseract_path"`
	NougatPath    string `json:"nougat_path"`

	// Structure extraction service
	GrobidURL string `json:"grobid_url"`

	// Runtime settings (not persisted to file)
	OCRLanguages     string  `json:"-"`
	OCRDPI           int     `json:"-"`
	LayoutTolerance  float64 `json:"-"`
	MarkupTimeoutSec int     `json:"-"`
	ChunkSize        int     `json:"-"`
	ChunkOverlap     int     `json:"-"`
	MaxPreviewChunks int     `json:"-"`
	LogLevel         string  `json:"-"`
	EnableVerbose    bool    `json:"-"`
}

// DefaultConfig returns the configuration by loading from file or creating default
func DefaultConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config file, using defaults: %v\n", err)
		cfg = &Config{
			TesseractPath: DefaultTesseractPath,
			NougatPath:    DefaultNougatPath,
			GrobidURL:     DefaultGrobidURL,
		}
	}

	platform := constants.GetPlatformConfig()
	if cfg.TesseractPath == DefaultTesseractPath {
		cfg.TesseractPath = resolveToolPath(DefaultTesseractPath, platform.TesseractPaths)
	}
	if cfg.NougatPath == DefaultNougatPath {
		cfg.NougatPath = resolveToolPath(DefaultNougatPath, platform.NougatPaths)
	}

	cfg.OCRLanguages = constants.DefaultOCRLanguages
	cfg.OCRDPI = constants.DefaultOCRDPI
	cfg.LayoutTolerance = constants.DefaultLayoutTolerance
	cfg.MarkupTimeoutSec = int(constants.DefaultMarkupTimeout.Seconds())
	cfg.ChunkSize = constants.DefaultChunkSize
	cfg.ChunkOverlap = constants.DefaultChunkOverlap
	cfg.MaxPreviewChunks = constants.DefaultMaxPreviewChunks
	cfg.LogLevel = DefaultLogLevel
	cfg.EnableVerbose = DefaultEnableVerbose

	return cfg
}

// resolveToolPath returns the first candidate resolvable on PATH or present
// on disk, falling back to the given default.
func resolveToolPath(def string, candidates []string) string {
	for _, candidate := range candidates {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
		if filepath.IsAbs(candidate) {
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return def
}

// LoadConfigWithEnvOverrides loads config and applies environment variable overrides
func LoadConfigWithEnvOverrides() *Config {
	cfg := DefaultConfig()

	if value := os.Getenv("PDFBENCH_TESSERACT_PATH"); value != "" {
		cfg.TesseractPath = value
	}
	if value := os.Getenv("PDFBENCH_NOUGAT_PATH"); value != "" {
		cfg.NougatPath = value
	}
	if value := os.Getenv("PDFBENCH_GROBID_URL"); value != "" {
		cfg.GrobidURL = value
	}
	if value := os.Getenv("PDFBENCH_OCR_LANGUAGES"); value != "" {
		cfg.OCRLanguages = value
	}
	if value := os.Getenv("PDFBENCH_OCR_DPI"); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			cfg.OCRDPI = intVal
		}
	}
	if value := os.Getenv("PDFBENCH_LAYOUT_TOLERANCE"); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			cfg.LayoutTolerance = floatVal
		}
	}
	if value := os.Getenv("PDFBENCH_MARKUP_TIMEOUT_SEC"); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			cfg.MarkupTimeoutSec = intVal
		}
	}
	if value := os.Getenv("PDFBENCH_LOG_LEVEL"); value != "" {
		cfg.LogLevel = value
	}
	if value := os.Getenv("PDFBENCH_VERBOSE"); value != "" {
		cfg.EnableVerbose = value == "true" || value == "1" || value == "yes"
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validator := NewConfigValidator()
	return validator.Validate(c)
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{GrobidURL: %s, OCRLanguages: %s, OCRDPI: %d, LogLevel: %s}",
		c.GrobidURL, c.OCRLanguages, c.OCRDPI, c.LogLevel)
}
