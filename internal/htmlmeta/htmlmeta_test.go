package htmlmeta

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><head><title>Guide</title></head>
<body><p>Hello</p></body></html>`

func TestInjectAddsMetaTag(t *testing.T) {
	var out bytes.Buffer
	err := Inject(strings.NewReader(page), &out, "2024-05-04T10:30:00Z")
	require.NoError(t, err)

	html := out.String()
	assert.Contains(t, html, `property="article:modified_time"`)
	assert.Contains(t, html, `content="2024-05-04T10:30:00Z"`)
	assert.Contains(t, html, "<p>Hello</p>", "body content survives the rewrite")
}

func TestInjectIsIdempotent(t *testing.T) {
	var first bytes.Buffer
	require.NoError(t, Inject(strings.NewReader(page), &first, "2024-05-04T10:30:00Z"))

	var second bytes.Buffer
	require.NoError(t, Inject(bytes.NewReader(first.Bytes()), &second, "2024-06-01T00:00:00Z"))

	html := second.String()
	assert.Equal(t, 1, strings.Count(html, "article:modified_time"),
		"re-injection replaces the existing tag")
	assert.Contains(t, html, "2024-06-01T00:00:00Z")
	assert.NotContains(t, html, "2024-05-04T10:30:00Z")
}

func TestInjectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o600))

	require.NoError(t, InjectFile(path, "2024-05-04T10:30:00Z"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "article:modified_time")
}
