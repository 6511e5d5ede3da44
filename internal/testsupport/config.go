package testsupport

import (
	"path/filepath"
	"testing"

	"capestudio/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Directories are created before it returns.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.CatalogPath = filepath.Join(base, "output", "capesv2.json")
	cfgVal.Paths.DatabasePath = filepath.Join(base, "capes.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Proxy.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithContentKey overrides the shared content key.
func WithContentKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Package.ContentKey = key
	}
}

// WithLocale overrides the localization locale.
func WithLocale(locale string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Package.Locale = locale
	}
}

// WithAssetBaseURL overrides the base URL embedded in synthesized download links.
func WithAssetBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Proxy.AssetBaseURL = url
	}
}

// BaseDir returns the temp root backing cfg's paths.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
