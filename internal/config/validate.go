package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"golang.org/x/text/language"
)

// contentKeyLength is the AES-256 key size the envelope format requires.
const contentKeyLength = 32

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProxy(); err != nil {
		return err
	}
	if err := c.validatePackage(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProxy() error {
	if _, _, err := net.SplitHostPort(c.Proxy.Bind); err != nil {
		return fmt.Errorf("proxy.bind must be host:port: %w", err)
	}
	if c.Proxy.MetricsBind != "" {
		if _, _, err := net.SplitHostPort(c.Proxy.MetricsBind); err != nil {
			return fmt.Errorf("proxy.metrics_bind must be host:port: %w", err)
		}
	}
	if (c.Proxy.CACert == "") != (c.Proxy.CAKey == "") {
		return errors.New("proxy.ca_cert and proxy.ca_key must be set together")
	}
	for name, raw := range map[string]string{
		"proxy.catalog_page_url":   c.Proxy.CatalogPageURL,
		"proxy.catalog_lookup_url": c.Proxy.CatalogLookupURL,
		"proxy.asset_base_url":     c.Proxy.AssetBaseURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if parsed.Scheme != "https" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute https URL, got %q", name, raw)
		}
	}
	return nil
}

func (c *Config) validatePackage() error {
	if len(c.Package.ContentKey) != contentKeyLength {
		return fmt.Errorf("package.content_key must be exactly %d bytes, got %d", contentKeyLength, len(c.Package.ContentKey))
	}
	if _, err := language.Parse(c.Package.Locale); err != nil {
		return fmt.Errorf("package.locale %q: %w", c.Package.Locale, err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
