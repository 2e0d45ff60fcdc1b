package urlcanon

import (
	"net/url"
	"strings"

	"reviewd/internal/config"
)

// Canonicalizer rewrites arbitrary resource references into one resolvable
// form. The resolving origin is injected through config; nothing here reads
// ambient global state. Canonicalize is idempotent and never fails: on
// unparseable input it returns the best-effort string produced so far.
type Canonicalizer struct {
	scheme   string // "https" or "http"
	origin   string // scheme://host[:port], no trailing slash
	prefixes []string
}

// New builds a Canonicalizer from config. An unparseable or schemeless
// origin falls back to https://localhost.
func New(cfg *config.CanonConfig) *Canonicalizer {
	scheme, origin := "https", "https://localhost"
	if u, err := url.Parse(cfg.Origin); err == nil && u.Scheme != "" && u.Host != "" {
		scheme = u.Scheme
		origin = u.Scheme + "://" + u.Host
	}

	var prefixes []string
	if cfg.SchemePrefix != "" {
		prefixes = append(prefixes, cfg.SchemePrefix)
	}
	for _, p := range cfg.ExtraPrefixes {
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}

	return &Canonicalizer{scheme: scheme, origin: origin, prefixes: prefixes}
}

// Canonicalize rewrites raw into a consistently resolvable reference.
// Rules are applied in order: inline data/blob references pass through
// untouched, known app-scheme prefixes are stripped, doubly-prefixed values
// are cut back to the earliest http(s) occurrence, protocol-relative and
// plain-http references adopt the configured scheme, and relative paths
// resolve against the configured origin.
func (c *Canonicalizer) Canonicalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "blob:") {
		return s
	}

	// Strip known app-scheme wrappers, exposing the embedded URL.
	for _, p := range c.prefixes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			s = s[len(p):]
			lower = strings.ToLower(s)
			break
		}
	}

	// Doubly-prefixed values: keep from the earliest http(s) occurrence.
	idxHTTP := strings.Index(lower, "http://")
	idxHTTPS := strings.Index(lower, "https://")
	if idxHTTP >= 0 && idxHTTPS >= 0 {
		cut := idxHTTP
		if idxHTTPS < cut {
			cut = idxHTTPS
		}
		s = s[cut:]
	}

	if strings.HasPrefix(s, "//") {
		s = c.scheme + ":" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return s
	}

	switch u.Scheme {
	case "http":
		if c.scheme == "https" {
			u.Scheme = "https"
			return u.String()
		}
		return s
	case "https":
		return s
	case "":
		// Relative reference: force a leading slash and resolve against
		// the configured origin.
		if !strings.HasPrefix(s, "/") {
			s = "/" + s
		}
		return c.origin + s
	default:
		return s
	}
}
