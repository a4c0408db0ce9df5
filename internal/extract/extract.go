package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

var (
	// ErrUnsupportedType is returned for anything that is not a PDF.
	ErrUnsupportedType = errors.New("extract: unsupported document type")
	// ErrNoText means the document parsed but held no text, or could not be parsed.
	ErrNoText = errors.New("extract: no text found")
)

// ResumeText extracts plain text from an in-memory resume upload.
// Library used: github.com/ledongthuc/pdf.
func ResumeText(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !IsPDF(data, mimeType, fileName) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, normalizeMimeType(mimeType))
	}
	text, err := extractPDF(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoText, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// IsPDF sniffs the magic header first and falls back to the declared type
// and extension.
func IsPDF(data []byte, mimeType string, fileName string) bool {
	if bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return true
	}
	if len(data) > 0 {
		return false
	}
	return normalizeMimeType(mimeType) == mimePDF || strings.EqualFold(filepath.Ext(fileName), ".pdf")
}

func extractPDF(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func normalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}
