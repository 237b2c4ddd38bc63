// Package render turns adapted CV text into a PDF document.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	fontFamily = "Helvetica"
	fontSize   = 10
	lineHeight = 15 // points
	wrapWidth  = 100 // characters per line before a hard wrap
)

// PDF renders plain text into a single-column PDF. Long lines are
// hard-wrapped; page breaks are automatic.
func PDF(text string) ([]byte, error) {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetFont(fontFamily, "", fontSize)
	doc.SetAutoPageBreak(true, 40)
	doc.AddPage()

	// The core fonts read strings as cp1252; accented names come out as
	// mojibake unless the UTF-8 input is translated first.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(text, "\n") {
		for _, chunk := range wrap(line, wrapWidth) {
			doc.CellFormat(0, lineHeight, tr(chunk), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// wrap splits a line into chunks of at most width runes. An empty line still
// yields one chunk so vertical spacing survives.
func wrap(line string, width int) []string {
	runes := []rune(line)
	if len(runes) <= width {
		return []string{line}
	}
	var chunks []string
	for len(runes) > width {
		chunks = append(chunks, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
