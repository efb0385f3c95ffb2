//go:build !gosseract

package engine

import "errors"

// ErrGosseractNotEnabled is returned for the gosseract engine when it was not compiled in.
// Rebuild with -tags gosseract to enable it; this requires the Tesseract and Leptonica libraries.
var ErrGosseractNotEnabled = errors.New("gosseract engine not enabled; rebuild with -tags gosseract")

func newGosseract() (Recognizer, error) {
	return nil, ErrGosseractNotEnabled
}
