// Package extract pulls plain text out of submitted CV documents.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var ErrUnreadableDocument = errors.New("unreadable document")

// Text extracts plain text from a submitted document. PDFs are parsed; any
// other format is treated as UTF-8 plain text.
func Text(data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrUnreadableDocument)
	}

	if isPDF(data, filename) {
		return pdfText(data)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: not valid UTF-8 and not a PDF", ErrUnreadableDocument)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: no text content", ErrUnreadableDocument)
	}
	return text, nil
}

// isPDF sniffs the magic bytes first; the extension only decides the
// ambiguous cases.
func isPDF(data []byte, filename string) bool {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("%w: no extractable text", ErrUnreadableDocument)
	}
	return text, nil
}
