package gdocai

import (
	"fmt"
	"math"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/scanbook/pkg/hocr"
)

// HOCRDocument converts a Document AI response to an hOCR document, one hOCR page per response page
func HOCRDocument(docProto *documentaipb.Document) hocr.Document {
	doc := hocr.Document{
		Title:    "Document OCR",
		Language: documentLanguage(docProto),
		Metadata: map[string]string{
			"ocr-system":          "Document AI OCR",
			"ocr-number-of-pages": fmt.Sprintf("%d", len(docProto.GetPages())),
			"ocr-capabilities":    "ocrp_lang ocr_page ocr_carea ocr_par ocr_line ocrx_word",
		},
	}
	if doc.Language != "" {
		doc.Metadata["ocr-langs"] = doc.Language
	}

	for i, page := range docProto.GetPages() {
		pageNumber := int(page.PageNumber)
		if pageNumber == 0 {
			pageNumber = i + 1
		}
		doc.Pages = append(doc.Pages, HOCRPage(page, docProto.Text, pageNumber))
	}
	return doc
}

// HOCRPage converts a single Document AI page to an hOCR page.
// Blocks become areas; paragraphs and lines are nested under the element whose text span
// contains theirs, and anything left over hangs directly from the page.
func HOCRPage(page *documentaipb.Document_Page, fullText string, pageNumber int) hocr.Page {
	ocrPage := hocr.Page{
		ID:         fmt.Sprintf("page_%d", pageNumber),
		PageNumber: pageNumber,
	}
	if len(page.DetectedLanguages) > 0 {
		ocrPage.Lang = page.DetectedLanguages[0].LanguageCode
	}
	if dim := page.Dimension; dim != nil {
		ocrPage.BBox = hocr.NewBoundingBox(0, 0, float64(dim.Width), float64(dim.Height))
	}

	// Track which paragraphs and lines are assigned to avoid duplication
	assignedParagraphs := make(map[int]bool)
	assignedLines := make(map[int]bool)

	paragraph := func(id string, pidx int) hocr.Paragraph {
		para := page.Paragraphs[pidx]
		ocrParagraph := hocr.Paragraph{ID: id, BBox: boundingBox(para.Layout, page.Dimension)}
		for lidx, line := range page.Lines {
			if assignedLines[lidx] || !isElementInParent(line.Layout, para.Layout) {
				continue
			}
			assignedLines[lidx] = true
			ocrParagraph.Lines = append(ocrParagraph.Lines,
				convertLine(line, page, fullText, fmt.Sprintf("line_%d_%d", pageNumber, lidx)))
		}
		return ocrParagraph
	}

	for aidx, block := range page.Blocks {
		ocrArea := hocr.Area{
			ID:   fmt.Sprintf("carea_%d_%d", pageNumber, aidx),
			BBox: boundingBox(block.Layout, page.Dimension),
		}
		for pidx, para := range page.Paragraphs {
			if assignedParagraphs[pidx] || !isElementInParent(para.Layout, block.Layout) {
				continue
			}
			assignedParagraphs[pidx] = true
			ocrArea.Paragraphs = append(ocrArea.Paragraphs,
				paragraph(fmt.Sprintf("par_%d_%d", pageNumber, pidx), pidx))
		}
		ocrPage.Areas = append(ocrPage.Areas, ocrArea)
	}

	for pidx := range page.Paragraphs {
		if assignedParagraphs[pidx] {
			continue
		}
		ocrPage.Paragraphs = append(ocrPage.Paragraphs,
			paragraph(fmt.Sprintf("par_%d_%d", pageNumber, pidx), pidx))
	}

	for lidx, line := range page.Lines {
		if assignedLines[lidx] {
			continue
		}
		ocrPage.Lines = append(ocrPage.Lines,
			convertLine(line, page, fullText, fmt.Sprintf("line_%d_%d", pageNumber, lidx)))
	}

	return ocrPage
}

// convertLine turns a proto line and the tokens inside its text span into an hOCR line
func convertLine(line *documentaipb.Document_Page_Line, page *documentaipb.Document_Page, fullText, id string) hocr.Line {
	ocrLine := hocr.Line{
		ID:   id,
		BBox: boundingBox(line.Layout, page.Dimension),
	}
	if len(line.DetectedLanguages) > 0 {
		ocrLine.Lang = line.DetectedLanguages[0].LanguageCode
	}

	for tidx, token := range page.Tokens {
		if !isElementInParent(token.Layout, line.Layout) {
			continue
		}
		word := hocr.Word{
			ID:   fmt.Sprintf("%s_word_%d", id, tidx),
			Text: tokenText(token, fullText),
			BBox: boundingBox(token.Layout, page.Dimension),
		}
		if word.Text == "" {
			continue
		}
		if token.Layout != nil {
			word.Confidence = math.Round(float64(token.Layout.Confidence) * 100)
		}
		if len(token.DetectedLanguages) > 0 {
			word.Lang = token.DetectedLanguages[0].LanguageCode
		}
		ocrLine.Words = append(ocrLine.Words, word)
	}
	return ocrLine
}

// boundingBox converts Document AI coordinates to hOCR pixel coordinates.
// Normalized vertices (0-1) are scaled by the page dimension; absolute vertices are used as they are.
func boundingBox(layout *documentaipb.Document_Page_Layout, dimension *documentaipb.Document_Page_Dimension) hocr.BoundingBox {
	if layout == nil || layout.BoundingPoly == nil {
		return hocr.BoundingBox{}
	}

	var xs, ys []float64
	if nv := layout.BoundingPoly.NormalizedVertices; len(nv) > 0 && dimension != nil {
		for _, v := range nv {
			xs = append(xs, float64(v.X)*float64(dimension.Width))
			ys = append(ys, float64(v.Y)*float64(dimension.Height))
		}
	} else {
		for _, v := range layout.BoundingPoly.Vertices {
			xs = append(xs, float64(v.X))
			ys = append(ys, float64(v.Y))
		}
	}
	if len(xs) == 0 {
		return hocr.BoundingBox{}
	}

	box := hocr.NewBoundingBox(xs[0], ys[0], xs[0], ys[0])
	for i := range xs {
		box.X1 = math.Min(box.X1, xs[i])
		box.Y1 = math.Min(box.Y1, ys[i])
		box.X2 = math.Max(box.X2, xs[i])
		box.Y2 = math.Max(box.Y2, ys[i])
	}
	return hocr.NewBoundingBox(math.Round(box.X1), math.Round(box.Y1), math.Round(box.X2), math.Round(box.Y2))
}

// documentLanguage finds the most common language in the document
// by counting language occurrences across pages and tokens
func documentLanguage(doc *documentaipb.Document) string {
	langCount := make(map[string]int)
	for _, page := range doc.GetPages() {
		for _, lang := range page.DetectedLanguages {
			langCount[lang.LanguageCode]++
		}
		for _, token := range page.Tokens {
			for _, lang := range token.DetectedLanguages {
				langCount[lang.LanguageCode]++
			}
		}
	}

	var mostCommonLang string
	var highestCount int
	for lang, count := range langCount {
		// Ties go to the alphabetically first language so the result is stable
		if count > highestCount || (count == highestCount && lang < mostCommonLang) {
			highestCount = count
			mostCommonLang = lang
		}
	}
	return mostCommonLang
}

// isElementInParent reports whether the element's first text segment lies inside the parent's
func isElementInParent(elementLayout, parentLayout *documentaipb.Document_Page_Layout) bool {
	if elementLayout == nil || parentLayout == nil ||
		elementLayout.TextAnchor == nil || parentLayout.TextAnchor == nil ||
		len(elementLayout.TextAnchor.TextSegments) == 0 || len(parentLayout.TextAnchor.TextSegments) == 0 {
		return false
	}

	element := elementLayout.TextAnchor.TextSegments[0]
	parent := parentLayout.TextAnchor.TextSegments[0]
	return element.StartIndex >= parent.StartIndex && element.EndIndex <= parent.EndIndex
}
