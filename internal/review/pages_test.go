package review_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPages_CandidateKeyOrder(t *testing.T) {
	n := newTestNormalizer()

	// "pages" wins over later candidate keys.
	raw := json.RawMessage(`{
		"pages": ["https://cdn.example.com/p1.png"],
		"image_urls": ["https://cdn.example.com/other.png"]
	}`)

	assert.Equal(t,
		[]string{"https://cdn.example.com/p1.png"},
		n.ExtractPages(raw))
}

func TestExtractPages_SkipsEmptyCandidates(t *testing.T) {
	n := newTestNormalizer()

	// An empty earlier candidate does not mask a later one.
	raw := json.RawMessage(`{
		"pages": [],
		"preview_pages": ["https://cdn.example.com/p1.png", "https://cdn.example.com/p2.png"]
	}`)

	assert.Equal(t,
		[]string{"https://cdn.example.com/p1.png", "https://cdn.example.com/p2.png"},
		n.ExtractPages(raw))
}

func TestExtractPages_JSONStringList(t *testing.T) {
	n := newTestNormalizer()

	// Some producers double-encode the page list as a JSON string.
	raw := json.RawMessage(`{"pages": "[\"https://cdn.example.com/p1.png\",\"https://cdn.example.com/p2.png\"]"}`)

	assert.Equal(t,
		[]string{"https://cdn.example.com/p1.png", "https://cdn.example.com/p2.png"},
		n.ExtractPages(raw))
}

func TestExtractPages_CommaSplitFallback(t *testing.T) {
	n := newTestNormalizer()

	raw := json.RawMessage(`{"pages": "https://cdn.example.com/p1.png, https://cdn.example.com/p2.png"}`)

	assert.Equal(t,
		[]string{"https://cdn.example.com/p1.png", "https://cdn.example.com/p2.png"},
		n.ExtractPages(raw))
}

func TestExtractPages_SingleURLString(t *testing.T) {
	n := newTestNormalizer()

	raw := json.RawMessage(`{"pages": "https://cdn.example.com/only.png"}`)

	assert.Equal(t, []string{"https://cdn.example.com/only.png"}, n.ExtractPages(raw))
}

func TestExtractPages_ExtraFieldAsEncodedObject(t *testing.T) {
	n := newTestNormalizer()

	// The extra field may itself be a JSON-encoded string carrying the lists.
	raw := json.RawMessage(`{"extra": "{\"image_urls\": [\"https://cdn.example.com/e1.png\"]}"}`)

	assert.Equal(t, []string{"https://cdn.example.com/e1.png"}, n.ExtractPages(raw))
}

func TestExtractPages_SingleURLKeyFallback(t *testing.T) {
	n := newTestNormalizer()

	raw := json.RawMessage(`{"file_url": "https://cdn.example.com/doc.pdf"}`)

	assert.Equal(t, []string{"https://cdn.example.com/doc.pdf"}, n.ExtractPages(raw))
}

func TestExtractPages_DeduplicatesPreservingOrder(t *testing.T) {
	n := newTestNormalizer()

	// http and https forms of the same URL canonicalize to one entry.
	raw := json.RawMessage(`{"pages": [
		"https://cdn.example.com/p2.png",
		"http://cdn.example.com/p1.png",
		"https://cdn.example.com/p1.png",
		"https://cdn.example.com/p2.png"
	]}`)

	assert.Equal(t,
		[]string{"https://cdn.example.com/p2.png", "https://cdn.example.com/p1.png"},
		n.ExtractPages(raw))
}

func TestExtractPages_CanonicalizesRelativeReferences(t *testing.T) {
	n := newTestNormalizer()

	raw := json.RawMessage(`{"pages": ["files/p1.png", "/files/p2.png"]}`)

	assert.Equal(t,
		[]string{
			"https://review.example.com/files/p1.png",
			"https://review.example.com/files/p2.png",
		},
		n.ExtractPages(raw))
}

func TestExtractPages_MalformedInput(t *testing.T) {
	n := newTestNormalizer()

	assert.Nil(t, n.ExtractPages(json.RawMessage(`not json`)))
	assert.Nil(t, n.ExtractPages(json.RawMessage(`{"pages": 42}`)))
	assert.Nil(t, n.ExtractPages(json.RawMessage(`{}`)))
}
