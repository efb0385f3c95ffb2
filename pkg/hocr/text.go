package hocr

import (
	"strings"
)

// Text extracts the plain text of doc.
// Words of a line are separated by spaces, lines by newlines and pages by a form feed,
// the same layout OCRmyPDF writes to its sidecar file.
func Text(doc *Document) string {
	var b strings.Builder
	for i, page := range doc.Pages {
		if i > 0 {
			b.WriteString("\f")
		}
		for _, area := range page.Areas {
			writeWords(&b, area.Words)
			for _, par := range area.Paragraphs {
				writeParagraph(&b, par)
			}
			for _, line := range area.Lines {
				writeWords(&b, line.Words)
			}
		}
		for _, par := range page.Paragraphs {
			writeParagraph(&b, par)
		}
		for _, line := range page.Lines {
			writeWords(&b, line.Words)
		}
	}
	return b.String()
}

func writeParagraph(b *strings.Builder, par Paragraph) {
	for _, line := range par.Lines {
		writeWords(b, line.Words)
	}
	writeWords(b, par.Words)
	b.WriteString("\n")
}

func writeWords(b *strings.Builder, words []Word) {
	if len(words) == 0 {
		return
	}
	for i, w := range words {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(w.Text)
	}
	b.WriteString("\n")
}
