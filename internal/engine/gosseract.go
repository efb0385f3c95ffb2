//go:build gosseract

package engine

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/gardar/scanbook/pkg/hocr"
)

// gosseractRecognizer runs libtesseract in process, with one client per page
type gosseractRecognizer struct{}

func newGosseract() (Recognizer, error) {
	return gosseractRecognizer{}, nil
}

// Recognize implements Recognizer
func (gosseractRecognizer) Recognize(ctx context.Context, in Input) (hocr.Document, error) {
	if err := ctx.Err(); err != nil {
		return hocr.Document{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if langs := splitLanguages(in.Language); len(langs) > 0 {
		if err := client.SetLanguage(langs...); err != nil {
			return hocr.Document{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(int(in.DPI))); err != nil {
			return hocr.Document{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := client.SetImage(in.Page.Path); err != nil {
		return hocr.Document{}, fmt.Errorf("set image: %w", err)
	}

	out, err := client.HOCRText()
	if err != nil {
		return hocr.Document{}, fmt.Errorf("recognize text: %w", err)
	}
	return hocr.Parse([]byte(out))
}
