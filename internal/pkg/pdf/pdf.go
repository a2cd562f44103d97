// Package pdf emits minimal single-page text documents. It covers exactly
// what the portal needs for approval certificates: Helvetica text on an A4
// page, nothing else.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	pageWidth  = 595
	pageHeight = 842

	marginLeft = 72
	marginTop  = 72

	titleSize   = 18
	bodySize    = 11
	lineSpacing = 18
)

type line struct {
	text string
	size int
}

// Builder assembles a document line by line, top to bottom
type Builder struct {
	lines []line
}

// New creates an empty document
func New() *Builder {
	return &Builder{}
}

// Title appends a heading line
func (b *Builder) Title(text string) {
	b.lines = append(b.lines, line{text: text, size: titleSize})
}

// Line appends a body line
func (b *Builder) Line(text string) {
	b.lines = append(b.lines, line{text: text, size: bodySize})
}

// Blank appends an empty line
func (b *Builder) Blank() {
	b.lines = append(b.lines, line{size: bodySize})
}

// Bytes renders the document
func (b *Builder) Bytes() []byte {
	content := b.contentStream()

	var buf bytes.Buffer
	offsets := make([]int, 0, 5)
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	writeObj(fmt.Sprintf("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] "+
		"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>\nendobj\n",
		pageWidth, pageHeight))
	writeObj(fmt.Sprintf("4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		len(content), content))
	writeObj("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xrefStart := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)+1))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefStart))

	return buf.Bytes()
}

func (b *Builder) contentStream() string {
	var sb strings.Builder
	sb.WriteString("BT\n")
	y := pageHeight - marginTop
	for _, l := range b.lines {
		if l.text != "" {
			sb.WriteString(fmt.Sprintf("/F1 %d Tf\n1 0 0 1 %d %d Tm\n(%s) Tj\n",
				l.size, marginLeft, y, escape(l.text)))
		}
		y -= lineSpacing
		if l.size == titleSize {
			y -= lineSpacing / 2
		}
	}
	sb.WriteString("ET")
	return sb.String()
}

// escape protects the PDF string delimiters
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
