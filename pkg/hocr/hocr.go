// Package hocr reads, writes and combines hOCR, the HTML-based format OCR engines use
// to describe recognized text together with its position on the page.
//
// The package implements the hierarchy of the hOCR format:
// Document → Pages → Areas → Paragraphs → Lines → Words, each level carrying a bounding box.
// OCR engines that recognize one page image at a time produce one single-page document per
// image; Merge stitches those into the document for the whole book.
//
// Key Types:
//
// - Document: A whole hOCR document (one or more pages)
// - Page: A page with class 'ocr_page'
// - Area: A content area with class 'ocr_carea'
// - Paragraph: A paragraph with class 'ocr_par'
// - Line: A line of text with class 'ocr_line' (also 'ocr_header', 'ocr_caption', 'ocr_textfloat')
// - Word: A single word with class 'ocrx_word'
// - BoundingBox: A rectangle in image pixel coordinates
//
// Main Functions:
//
// - Parse: Parses hOCR HTML into a Document
// - Generate: Renders a Document as hOCR HTML
// - Merge: Combines single-page documents into one, renumbering the pages
// - Text: Extracts the plain text of a Document
// - Page.FitTo: Rescales a page to the pixel size of its source image
package hocr
