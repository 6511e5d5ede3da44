package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	OutputDir    string `toml:"output_dir"`
	StagingDir   string `toml:"staging_dir"`
	CatalogPath  string `toml:"catalog_path"`
	DatabasePath string `toml:"database_path"`
	LogDir       string `toml:"log_dir"`
}

// Proxy contains the interception listener and the endpoints it recognizes.
type Proxy struct {
	Bind             string `toml:"bind"`
	MetricsBind      string `toml:"metrics_bind"`
	CACert           string `toml:"ca_cert"`
	CAKey            string `toml:"ca_key"`
	CatalogPageURL   string `toml:"catalog_page_url"`
	CatalogLookupURL string `toml:"catalog_lookup_url"`
	AssetHost        string `toml:"asset_host"`
	AssetBaseURL     string `toml:"asset_base_url"`
}

// Package contains settings for building cape archives.
type Package struct {
	ContentKey        string `toml:"content_key"`
	Locale            string `toml:"locale"`
	StaleStagingHours int    `toml:"stale_staging_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for capestudio.
//
// Configuration sections by subsystem:
//   - Paths: output tree, staging area, catalog document, cape database, logs
//   - Proxy: listener, CA material, and the three intercepted endpoints
//   - Package: shared content key, localization locale, staging retention
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Proxy   Proxy   `toml:"proxy"`
	Package Package `toml:"package"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/capestudio/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("capestudio.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the packager and proxy write into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.OutputDir,
		c.ZipsDir(),
		c.TexturesDir(),
		c.Paths.StagingDir,
		c.Paths.LogDir,
		filepath.Dir(c.Paths.CatalogPath),
		filepath.Dir(c.Paths.DatabasePath),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ZipsDir is where finished primary archives are written.
func (c *Config) ZipsDir() string {
	return filepath.Join(c.Paths.OutputDir, "zips")
}

// TexturesDir is where imported cape textures are kept.
func (c *Config) TexturesDir() string {
	return filepath.Join(c.Paths.OutputDir, "textures")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
