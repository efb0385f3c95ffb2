// Package pdfocr builds the PDFs of a scanned book: the interim PDF holding the page
// images, and the searchable PDF with an OCR text layer over those pages.
//
// The interim PDF has one page per image, sized to the image at a fixed resolution.
// OCR engines that return hOCR get their text laid over the interim pages as an
// invisible layer per page, so the text is:
// - Fully searchable
// - Selectable with mouse drag operations
// - Can be toggled on/off in compatible PDF readers
//
// Main Functions:
//
// - MergeImages: Writes the interim PDF from page images
// - ApplyOCR: Adds an hOCR text layer to an existing PDF such as the interim PDF
// - CheckExistingOCRLayers: Looks for an OCR layer a previous run left behind
// - Verify: Reads back a finished PDF and counts its pages and text
package pdfocr

import (
	"fmt"

	"github.com/gardar/scanbook/pkg/hocr"
)

// ApplyOCR takes an existing PDF and lays the hOCR pages over its pages, in order.
// It refuses PDFs that already carry an OCR layer unless config.Force is set.
func ApplyOCR(inputPDFData []byte, doc *hocr.Document, config OCRConfig) (finalPDF []byte, err error) {
	if len(inputPDFData) == 0 {
		return nil, fmt.Errorf("input PDF data is empty")
	}
	if doc == nil || len(doc.Pages) == 0 {
		return nil, fmt.Errorf("hOCR data contains no pages")
	}
	if config.LayerName == "" {
		config.LayerName = DefaultConfig().LayerName
	}
	if config.Font.Name == "" {
		config.Font = DefaultFont
	}
	log := logger(config)

	layerResult, err := CheckExistingOCRLayers(inputPDFData, config.LayerName)
	if err != nil {
		return nil, fmt.Errorf("layer detection failed: %w", err)
	}
	for _, warning := range layerResult.Warnings {
		log.Warn(warning)
	}
	if layerResult.HasOCRLayer {
		if !config.Force {
			return nil, fmt.Errorf("file already has OCR (layer '%s')", layerResult.OCRLayerName)
		}
		log.Warn("file already has OCR; reapplying will result in duplicate OCR data")
	}

	// The page importer panics on unreadable input
	defer func() {
		if r := recover(); r != nil {
			finalPDF, err = nil, fmt.Errorf("error importing PDF pages: %v", r)
		}
	}()

	finalPDF, err = overlayPDF(inputPDFData, doc, config)
	if err != nil {
		return nil, fmt.Errorf("error adding OCR layer: %w", err)
	}
	return finalPDF, nil
}
