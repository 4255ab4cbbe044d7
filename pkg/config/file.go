package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfbench/pdfbench/pkg/constants"
)

// configDirName is the per-user configuration directory name.
const configDirName = ".pdfbench"

// configFileName is the persisted tool path configuration file.
const configFileName = "config.json"

// ConfigFilePath returns the path of the persisted configuration file.
func ConfigFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// LoadConfig reads the persisted tool path configuration. A missing file
// is not an error; defaults are returned instead.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		TesseractPath: DefaultTesseractPath,
		NougatPath:    DefaultNougatPath,
		GrobidURL:     DefaultGrobidURL,
	}

	path, err := ConfigFilePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// GetConfigValue returns a single persisted setting by key.
func GetConfigValue(key string) (string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}
	switch key {
	case "tesseract_path":
		return cfg.TesseractPath, nil
	case "nougat_path":
		return cfg.NougatPath, nil
	case "grobid_url":
		return cfg.GrobidURL, nil
	default:
		return "", fmt.Errorf("unknown config key: %s (valid keys: tesseract_path, nougat_path, grobid_url)", key)
	}
}

// SetConfigValue updates a single persisted setting by key and saves the
// configuration file.
func SetConfigValue(key, value string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	switch key {
	case "tesseract_path":
		cfg.TesseractPath = value
	case "nougat_path":
		cfg.NougatPath = value
	case "grobid_url":
		cfg.GrobidURL = value
	default:
		return fmt.Errorf("unknown config key: %s (valid keys: tesseract_path, nougat_path, grobid_url)", key)
	}
	return SaveConfig(cfg)
}

// SaveConfig persists the tool path configuration.
func SaveConfig(cfg *Config) error {
	path, err := ConfigFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DefaultDirPermission); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}
	return os.WriteFile(path, data, constants.DefaultFilePermission)
}
