package pdfocr

import (
	"fmt"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	anyascii "github.com/anyascii/go"

	"github.com/gardar/scanbook/pkg/hocr"
)

// drawOCRLayer draws the words of an hOCR page onto a layer of the current PDF page.
// The pageNum parameter is used to create unique layer names for each page.
func drawOCRLayer(
	pdf *fpdf.Fpdf,
	page hocr.Page,
	debug bool,
	layerName string,
	pageNum int,
	transform func(x, y float64) (float64, float64),
	fontConfig FontConfig,
) error {
	layer := pdf.AddLayer(fmt.Sprintf("%s (Page %d)", layerName, pageNum), true)
	pdf.BeginLayer(layer)
	pdf.SetFont(fontConfig.Name, fontConfig.Style, fontConfig.Size)

	if debug {
		pdf.SetTextColor(255, 0, 0) // highlight text in red
	} else {
		pdf.SetAlpha(0.0, "Normal") // hide text from normal view
	}

	words := page.Words()
	approximated := 0
	for _, word := range words {
		if word.Text == "" || word.BBox.IsZero() {
			continue
		}
		if !drawWord(pdf, word, transform, fontConfig, debug) {
			approximated++
		}
	}

	if !debug {
		pdf.SetAlpha(1.0, "Normal")
	}
	pdf.EndLayer()

	// A few transliterated words are tolerated, a page full of them is not
	if len(words) > 0 && approximated > len(words)/10 {
		return fmt.Errorf("%d of %d words transliterated to fit the font", approximated, len(words))
	}
	return nil
}

// drawWord renders a single word scaled to the width of its box.
// It returns false when the text had to be transliterated to fit Latin-1.
func drawWord(pdf *fpdf.Fpdf, word hocr.Word, transform func(x, y float64) (float64, float64),
	fontConfig FontConfig, debug bool) bool {

	x, y := transform(word.BBox.X1, word.BBox.Y1)
	x2, y2 := transform(word.BBox.X2, word.BBox.Y2)
	wordWidth := x2 - x

	latin1, exact := toLatin1(word.Text)

	strWidth := pdf.GetStringWidth(latin1)
	if strWidth > 0 {
		pdf.SetFontSize(fontConfig.Size * wordWidth / strWidth)
	}

	fontSize, _ := pdf.GetFontSize()
	baseline := y + fontSize*fontConfig.AscentRatio
	pdf.Text(x, baseline, latin1)
	pdf.SetFontSize(fontConfig.Size)

	if debug {
		pdf.Rect(x, y, wordWidth, y2-y, "D")
	}
	return exact
}

// toLatin1 encodes s in ISO-8859-1, the range the core fonts cover.
// Other characters are replaced by their closest ASCII transliteration.
func toLatin1(s string) (string, bool) {
	var b strings.Builder
	exact := true
	for _, r := range s {
		if r < 0x100 {
			b.WriteByte(byte(r))
			continue
		}
		exact = false
		b.WriteString(anyascii.Transliterate(string(r)))
	}
	return b.String(), exact
}
