package pdfocr

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// VerifyResult describes what a reader finds in a finished PDF
type VerifyResult struct {
	Pages     int // Number of pages
	TextChars int // Characters of extractable text across all pages
}

// Verify opens the PDF at path with an independent reader and counts its pages and text.
func Verify(path string) (result VerifyResult, err error) {
	// The reader panics on some malformed input
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return result, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	result.Pages = reader.NumPage()
	for i := 1; i <= result.Pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		result.TextChars += len(strings.TrimSpace(text))
	}
	return result, nil
}
