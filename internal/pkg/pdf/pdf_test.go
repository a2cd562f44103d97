package pdf

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesProducesWellFormedDocument(t *testing.T) {
	doc := New()
	doc.Title("Approval Certificate")
	doc.Blank()
	doc.Line("Application ID : APP2025123456")
	doc.Line("Beneficiary ID : GUN123456")

	out := string(doc.Bytes())

	assert.True(t, strings.HasPrefix(out, "%PDF-1.4\n"))
	assert.True(t, strings.HasSuffix(out, "%%EOF\n"))
	assert.Contains(t, out, "Approval Certificate")
	assert.Contains(t, out, "GUN123456")
	assert.Contains(t, out, "xref")
	assert.Contains(t, out, "/Root 1 0 R")
}

func TestXrefOffsetsPointAtObjects(t *testing.T) {
	doc := New()
	doc.Line("hello")
	out := doc.Bytes()

	// Every xref entry must land on an "N 0 obj" header
	text := string(out)
	idx := strings.Index(text, "xref\n")
	require.Greater(t, idx, 0)

	var entries []int
	for _, line := range strings.Split(text[idx:], "\n") {
		if len(line) == 19 && strings.HasSuffix(line, " 00000 n ") {
			off, err := strconv.Atoi(line[:10])
			require.NoError(t, err)
			entries = append(entries, off)
		}
	}
	require.Len(t, entries, 5)
	for i, off := range entries {
		assert.Contains(t, text[off:off+10], "obj", "object %d offset %d", i+1, off)
	}
}

func TestEscape(t *testing.T) {
	doc := New()
	doc.Line(`Name (with) \backslash`)
	out := string(doc.Bytes())

	assert.Contains(t, out, `Name \(with\) \\backslash`)
}
