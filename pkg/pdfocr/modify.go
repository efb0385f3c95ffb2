package pdfocr

import (
	"bytes"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"github.com/gardar/scanbook/pkg/hocr"
)

// overlayPDF imports every page of inputPDFData and lays the matching hOCR page over it.
// Page sizes come from the hOCR page boxes (image pixels) at config.DPI, which is how
// MergeImages sized the pages, so imported pages and text line up.
func overlayPDF(inputPDFData []byte, doc *hocr.Document, config OCRConfig) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(inputPDFData))

	for i, page := range doc.Pages {
		pageNum := i + 1
		if page.BBox.IsZero() {
			return nil, fmt.Errorf("hOCR page %d has no page size", pageNum)
		}
		w := pointsFromPixels(page.BBox.Width(), config.DPI)
		h := pointsFromPixels(page.BBox.Height(), config.DPI)

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		tpl := importer.ImportPageFromStream(pdf, &rs, pageNum, "/MediaBox")
		importer.UseImportedTemplate(pdf, tpl, 0, 0, w, h)
		if pdf.Err() {
			return nil, fmt.Errorf("failed to import page %d: %w", pageNum, pdf.Error())
		}

		// hOCR boxes are in pixels relative to the page box origin
		transform := func(x, y float64) (float64, float64) {
			return pointsFromPixels(x-page.BBox.X1, config.DPI), pointsFromPixels(y-page.BBox.Y1, config.DPI)
		}

		if err := drawOCRLayer(pdf, page, config.Debug, config.LayerName, pageNum, transform, config.Font); err != nil {
			logger(config).WithField("page", pageNum).Warnf("OCR text layer incomplete: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
