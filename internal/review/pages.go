package review

import (
	"encoding/json"
	"strings"
)

// pageKeys are the candidate keys probed, in order, for renderable page
// references on an attachment record. The first key yielding at least one
// non-empty value wins. The list grew with the backend: producers evolved
// the attachment schema several times without ever adding a version field.
var pageKeys = []string{
	"pages",
	"page_urls",
	"preview_pages",
	"images",
	"image_urls",
}

// urlKeys are the single-value fallbacks probed when no page list is found.
var urlKeys = []string{
	"url",
	"file_url",
	"image",
	"src",
	"path",
}

// ExtractPages discovers the renderable page/image references of an
// attachment-like record. The result is ordered, de-duplicated on first
// appearance, and canonicalized. Malformed input yields nil, never an error.
func (n *Normalizer) ExtractPages(attachment json.RawMessage) []string {
	value := decodeAny(attachment)
	if value == nil {
		return nil
	}
	return n.finishPages(probePages(value))
}

// finishPages canonicalizes and de-duplicates while preserving first-seen order.
func (n *Normalizer) finishPages(raw []string) []string {
	var out []string
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		u := n.canon.Canonicalize(r)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func decodeAny(raw json.RawMessage) any {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return value
}

// probePages runs the candidate-key probe over one decoded attachment value.
func probePages(value any) []string {
	switch v := value.(type) {
	case string:
		return flattenString(v)
	case []any:
		return flattenList(v)
	case map[string]any:
		for _, key := range pageKeys {
			if inner, ok := v[key]; ok {
				if pages := flattenValue(inner); len(pages) > 0 {
					return pages
				}
			}
		}
		// The extra field may be an object or a JSON-encoded string that
		// itself carries the page lists.
		if inner, ok := v["extra"]; ok {
			if pages := probeExtra(inner); len(pages) > 0 {
				return pages
			}
		}
		for _, key := range urlKeys {
			if inner, ok := v[key]; ok {
				if pages := flattenValue(inner); len(pages) > 0 {
					return pages
				}
			}
		}
	}
	return nil
}

func probeExtra(extra any) []string {
	switch v := extra.(type) {
	case map[string]any:
		return probePages(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			return probePages(decoded)
		}
		return flattenString(s)
	default:
		return nil
	}
}

// flattenValue normalizes nested arrays and strings into a flat string list.
func flattenValue(value any) []string {
	switch v := value.(type) {
	case string:
		return flattenString(v)
	case []any:
		return flattenList(v)
	case map[string]any:
		for _, key := range urlKeys {
			if inner, ok := v[key]; ok {
				if pages := flattenValue(inner); len(pages) > 0 {
					return pages
				}
			}
		}
		return nil
	default:
		return nil
	}
}

func flattenList(list []any) []string {
	var out []string
	for _, entry := range list {
		out = append(out, flattenValue(entry)...)
	}
	return out
}

// flattenString handles strings that may be JSON-encoded arrays. On JSON
// failure it falls back to comma-splitting; failing that, the whole string
// is one URL.
func flattenString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var list []any
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return flattenList(list)
		}
	}
	if strings.Contains(s, ",") {
		var out []string
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return []string{s}
}
