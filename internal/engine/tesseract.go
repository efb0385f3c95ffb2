package engine

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/gardar/scanbook/pkg/hocr"
)

// Tesseract recognizes a page by running the tesseract command and reading its hOCR output
type Tesseract struct {
	Binary string
	runner Runner
}

// NewTesseract returns a recognizer running "tesseract" from PATH through runner
func NewTesseract(runner Runner) *Tesseract {
	return &Tesseract{Binary: "tesseract", runner: runner}
}

// Args builds the tesseract command line writing hOCR for in to standard output
func (t *Tesseract) Args(in Input) []string {
	args := []string{in.Page.Path, "stdout"}
	if in.Language != "" {
		args = append(args, "-l", in.Language)
	}
	if in.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(int(in.DPI)))
	}
	return append(args, "hocr")
}

// Recognize implements Recognizer
func (t *Tesseract) Recognize(ctx context.Context, in Input) (hocr.Document, error) {
	var out bytes.Buffer
	if err := t.runner.Run(ctx, t.Binary, t.Args(in), &out); err != nil {
		return hocr.Document{}, fmt.Errorf("tesseract failed: %w", err)
	}
	doc, err := hocr.Parse(out.Bytes())
	if err != nil {
		return hocr.Document{}, fmt.Errorf("failed to parse tesseract output: %w", err)
	}
	return doc, nil
}
