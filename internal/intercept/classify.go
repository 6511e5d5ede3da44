package intercept

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Kind is the classification of one exchange.
type Kind int

const (
	PassThrough Kind = iota
	CatalogPage
	CatalogLookup
	ArchiveDownload
)

func (k Kind) String() string {
	switch k {
	case CatalogPage:
		return "catalog_page"
	case CatalogLookup:
		return "catalog_lookup"
	case ArchiveDownload:
		return "archive_download"
	default:
		return "pass_through"
	}
}

const archiveSuffix = "/primary.zip"

// requestURL renders the absolute URL of req, including any query.
func requestURL(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	u := *req.URL
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		u.Host = req.Host
	}
	u.Host = trimDefaultPort(u.Scheme, u.Host)
	return u.String()
}

// canonicalURL drops a default port from raw so configured endpoints compare
// equal to rebuilt request URLs.
func canonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Host = trimDefaultPort(u.Scheme, u.Host)
	return u.String()
}

// trimDefaultPort removes ":443" from https hosts and ":80" from http hosts.
// MITM requests carry the CONNECT authority, which always names the port.
func trimDefaultPort(scheme, host string) string {
	name, port, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	if (scheme == "https" && port == "443") || (scheme == "http" && port == "80") {
		if strings.Contains(name, ":") {
			return "[" + name + "]"
		}
		return name
	}
	return host
}

// Classify decides how the exchange started by req is handled.
func (e *Engine) Classify(req *http.Request) Kind {
	raw := requestURL(req)
	switch {
	case raw == "":
		return PassThrough
	case raw == e.opts.CatalogPageURL:
		return CatalogPage
	case raw == e.opts.CatalogLookupURL:
		return CatalogLookup
	case e.opts.AssetHost != "" && strings.Contains(raw, e.opts.AssetHost) && strings.HasSuffix(raw, archiveSuffix):
		return ArchiveDownload
	default:
		return PassThrough
	}
}

// candidateAssetID returns the path segment before the final primary.zip.
func candidateAssetID(req *http.Request) (string, bool) {
	var parts []string
	for _, p := range strings.Split(req.URL.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return "", false
	}
	return parts[len(parts)-2], true
}
