package pdfocr

import (
	"github.com/sirupsen/logrus"
)

// DefaultDPI is the scan resolution assumed when turning image pixels into PDF points
const DefaultDPI = 300

// OCRConfig holds user options for laying OCR text over the interim PDF
type OCRConfig struct {
	Debug     bool               // Draw the text in red with word boxes instead of invisibly
	Force     bool               // Apply OCR even if the PDF already has an OCR layer
	LayerName string             // Base name of OCR layer (page number will be appended)
	DPI       float64            // Pixels per inch of the page images; must match MergeImages
	Logger    logrus.FieldLogger // Logger for warnings (nil = logrus standard logger)
	Font      FontConfig
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() OCRConfig {
	return OCRConfig{
		LayerName: "OCR Text", // Will be formatted as "OCR Text (Page X)" in the final PDF
		DPI:       DefaultDPI,
		Font:      DefaultFont,
	}
}

// FontConfig contains font settings for OCR text rendering
type FontConfig struct {
	Name        string  // Font name (e.g., "Helvetica")
	Style       string  // Font style ("", "B", "I", "BI")
	Size        float64 // Default font size
	AscentRatio float64 // Vertical positioning ratio
}

// DefaultFont sets the default font to Helvetica which is tried and tested for the OCR layer
var DefaultFont = FontConfig{
	Name:        "Helvetica",
	Style:       "",
	Size:        10,
	AscentRatio: 0.718,
}
