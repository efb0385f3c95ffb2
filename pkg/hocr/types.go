package hocr

import (
	"fmt"
)

// Document is a whole hOCR document
type Document struct {
	Title    string            // Document title
	Language string            // Document language
	Metadata map[string]string // ocr-system, ocr-capabilities, ocr-number-of-pages, ocr-langs
	Pages    []Page            // Pages in reading order
}

// Page is one page of recognized text
// Corresponds to hOCR element with class: 'ocr_page'
type Page struct {
	ID         string      // Unique identifier
	PageNumber int         // Physical page number (ppageno), 1-based in generated output
	ImageName  string      // Source image the page was recognized from
	Lang       string      // Language code for this page
	BBox       BoundingBox // Page size in image pixels
	Areas      []Area      // Content areas (columns)
	Paragraphs []Paragraph // Paragraphs directly under the page
	Lines      []Line      // Lines directly under the page
}

// Area is a content area (column or region)
// Corresponds to hOCR element with class: 'ocr_carea'
type Area struct {
	ID         string
	Lang       string
	BBox       BoundingBox
	Paragraphs []Paragraph
	Lines      []Line // Lines directly under the area
	Words      []Word // Words with no line parent
}

// Paragraph is a paragraph within an area or page
// Corresponds to hOCR element with class: 'ocr_par'
type Paragraph struct {
	ID    string
	Lang  string
	BBox  BoundingBox
	Lines []Line
	Words []Word // Words with no line parent
}

// Line is a line of text
// Corresponds to hOCR elements with class 'ocr_line' and the line-like
// 'ocr_header', 'ocr_caption' and 'ocr_textfloat' classes Tesseract emits.
type Line struct {
	ID       string
	Class    string // Original class, "ocr_line" when empty
	Lang     string
	BBox     BoundingBox
	Baseline string // Raw baseline property, e.g. "0.004 -9"
	Words    []Word
}

// Word is a recognized word with its bounding box
// Corresponds to hOCR element with class: 'ocrx_word'
type Word struct {
	ID         string
	Text       string
	Lang       string
	BBox       BoundingBox
	Confidence float64 // Recognition confidence (0-100)
}

// BoundingBox is a rectangle in image pixel coordinates
// Used to store hOCR 'bbox' property values
type BoundingBox struct {
	X1 float64 // Left
	Y1 float64 // Top
	X2 float64 // Right
	Y2 float64 // Bottom
}

// NewBoundingBox creates a bounding box from the x1, y1, x2, y2 values of a 'bbox' property
func NewBoundingBox(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Width returns the horizontal extent of the box
func (b BoundingBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box
func (b BoundingBox) Height() float64 { return b.Y2 - b.Y1 }

// IsZero reports whether the box has no area
func (b BoundingBox) IsZero() bool { return b.Width() <= 0 || b.Height() <= 0 }

// String renders the box as an hOCR 'bbox' property
func (b BoundingBox) String() string {
	return fmt.Sprintf("bbox %d %d %d %d", int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
}

// Words returns every word on the page in reading order, whatever level it hangs from
func (p Page) Words() []Word {
	var words []Word
	for _, area := range p.Areas {
		words = append(words, area.Words...)
		for _, line := range area.Lines {
			words = append(words, line.Words...)
		}
		for _, par := range area.Paragraphs {
			words = append(words, par.words()...)
		}
	}
	for _, par := range p.Paragraphs {
		words = append(words, par.words()...)
	}
	for _, line := range p.Lines {
		words = append(words, line.Words...)
	}
	return words
}

func (p Paragraph) words() []Word {
	words := append([]Word(nil), p.Words...)
	for _, line := range p.Lines {
		words = append(words, line.Words...)
	}
	return words
}
