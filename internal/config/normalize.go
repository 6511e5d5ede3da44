package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeProxy(); err != nil {
		return err
	}
	c.normalizePackage()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.staging_dir", &c.Paths.StagingDir, defaultStagingDir},
		{"paths.catalog_path", &c.Paths.CatalogPath, defaultCatalogPath},
		{"paths.database_path", &c.Paths.DatabasePath, defaultDatabasePath},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeProxy() error {
	c.Proxy.Bind = strings.TrimSpace(c.Proxy.Bind)
	if c.Proxy.Bind == "" {
		c.Proxy.Bind = defaultProxyBind
	}
	c.Proxy.MetricsBind = strings.TrimSpace(c.Proxy.MetricsBind)

	var err error
	if c.Proxy.CACert = strings.TrimSpace(c.Proxy.CACert); c.Proxy.CACert != "" {
		if c.Proxy.CACert, err = expandPath(c.Proxy.CACert); err != nil {
			return fmt.Errorf("proxy.ca_cert: %w", err)
		}
	}
	if c.Proxy.CAKey = strings.TrimSpace(c.Proxy.CAKey); c.Proxy.CAKey != "" {
		if c.Proxy.CAKey, err = expandPath(c.Proxy.CAKey); err != nil {
			return fmt.Errorf("proxy.ca_key: %w", err)
		}
	}

	c.Proxy.CatalogPageURL = strings.TrimSpace(c.Proxy.CatalogPageURL)
	if c.Proxy.CatalogPageURL == "" {
		c.Proxy.CatalogPageURL = defaultCatalogPageURL
	}
	c.Proxy.CatalogLookupURL = strings.TrimSpace(c.Proxy.CatalogLookupURL)
	if c.Proxy.CatalogLookupURL == "" {
		c.Proxy.CatalogLookupURL = defaultCatalogLookupURL
	}
	c.Proxy.AssetHost = strings.TrimSpace(c.Proxy.AssetHost)
	if c.Proxy.AssetHost == "" {
		c.Proxy.AssetHost = defaultAssetHost
	}
	c.Proxy.AssetBaseURL = strings.TrimRight(strings.TrimSpace(c.Proxy.AssetBaseURL), "/")
	if c.Proxy.AssetBaseURL == "" {
		c.Proxy.AssetBaseURL = defaultAssetBaseURL
	}
	return nil
}

func (c *Config) normalizePackage() {
	if c.Package.ContentKey == "" {
		if value, ok := os.LookupEnv(contentKeyEnv); ok {
			c.Package.ContentKey = value
		}
	}
	c.Package.Locale = strings.TrimSpace(c.Package.Locale)
	if c.Package.Locale == "" {
		c.Package.Locale = defaultLocale
	}
	if c.Package.StaleStagingHours <= 0 {
		c.Package.StaleStagingHours = defaultStaleStagingHours
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
