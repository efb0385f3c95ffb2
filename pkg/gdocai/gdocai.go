// Package gdocai recognizes scanned pages with Google Document AI and converts the
// results to hOCR, so they can be laid over the page images like any other OCR output.
//
// The package converts Google Document AI's proprietary format into hOCR while
// maintaining the positional data needed to place every word on its page.
//
// Key Features:
//
// - Send a page image (PNG or JPEG) to a Document AI OCR processor
// - Convert the Document AI page hierarchy (blocks, paragraphs, lines, tokens) to hOCR
// - Dump raw responses as JSON for debugging
//
// Main Functions:
//
// - NewClient: Connects to a Document AI processor
// - Client.ProcessDocument: Sends a document to Google Document AI for processing
// - Client.PageHOCR: Recognizes one page image and returns it as a single-page hOCR document
// - HOCRDocument: Converts a Document AI response to hOCR
// - ToJSON: Renders a response or any value as JSON
//
// Usage Requirements:
//
// - Google Cloud project with Document AI API enabled
// - Document AI processor configured for OCR
// - Authentication via GOOGLE_APPLICATION_CREDENTIALS environment variable
package gdocai

import (
	"context"
	"fmt"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/scanbook/pkg/hocr"
)

// PageHOCR sends one page image to Document AI and converts the result.
// It returns:
// - The page as a single-page hOCR document, boxes in the image's pixels
// - The raw Document AI response
// - Any error encountered
func (c *Client) PageHOCR(ctx context.Context, image []byte, mimeType string) (hocr.Document, *documentaipb.Document, error) {
	raw, err := c.ProcessDocument(ctx, image, mimeType)
	if err != nil {
		return hocr.Document{}, nil, err
	}
	if len(raw.Pages) != 1 {
		return hocr.Document{}, raw, fmt.Errorf("expected 1 page in result, got %d", len(raw.Pages))
	}

	doc := HOCRDocument(raw)
	return doc, raw, nil
}
