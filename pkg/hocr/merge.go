package hocr

import (
	"fmt"
	"sort"
	"strings"
)

// Merge combines per-page documents into one document in the given order.
// Pages are renumbered from 1 and element IDs are rewritten with the new page number,
// so IDs stay unique even though every engine run starts counting at page 1.
func Merge(system string, docs ...Document) *Document {
	merged := &Document{
		Title:    "OCR output",
		Metadata: map[string]string{},
	}

	langs := map[string]bool{}
	for _, doc := range docs {
		if doc.Language != "" {
			langs[doc.Language] = true
		}
		for _, page := range doc.Pages {
			n := len(merged.Pages) + 1
			page = renumber(page, n)
			if page.Lang != "" {
				langs[page.Lang] = true
			}
			merged.Pages = append(merged.Pages, page)
		}
	}

	var langList []string
	for l := range langs {
		langList = append(langList, l)
	}
	sort.Strings(langList)
	if len(langList) > 0 {
		merged.Language = langList[0]
		merged.Metadata["ocr-langs"] = strings.Join(langList, " ")
	}
	merged.Metadata["ocr-system"] = system
	merged.Metadata["ocr-number-of-pages"] = fmt.Sprint(len(merged.Pages))
	merged.Metadata["ocr-capabilities"] = "ocr_page ocr_carea ocr_par ocr_line ocrx_word"

	return merged
}

// renumber gives the page number n and prefixes every ID below it
func renumber(page Page, n int) Page {
	prefix := fmt.Sprintf("p%d_", n)
	id := func(old string) string {
		if old == "" {
			return ""
		}
		return prefix + old
	}

	page.ID = fmt.Sprintf("page_%d", n)
	page.PageNumber = n

	page.Areas = append([]Area(nil), page.Areas...)
	for i := range page.Areas {
		area := &page.Areas[i]
		area.ID = id(area.ID)
		area.Paragraphs = renumberParagraphs(area.Paragraphs, id)
		area.Lines = renumberLines(area.Lines, id)
		area.Words = renumberWords(area.Words, id)
	}
	page.Paragraphs = renumberParagraphs(page.Paragraphs, id)
	page.Lines = renumberLines(page.Lines, id)
	return page
}

func renumberParagraphs(pars []Paragraph, id func(string) string) []Paragraph {
	out := append([]Paragraph(nil), pars...)
	for i := range out {
		out[i].ID = id(out[i].ID)
		out[i].Lines = renumberLines(out[i].Lines, id)
		out[i].Words = renumberWords(out[i].Words, id)
	}
	return out
}

func renumberLines(lines []Line, id func(string) string) []Line {
	out := append([]Line(nil), lines...)
	for i := range out {
		out[i].ID = id(out[i].ID)
		out[i].Words = renumberWords(out[i].Words, id)
	}
	return out
}

func renumberWords(words []Word, id func(string) string) []Word {
	out := append([]Word(nil), words...)
	for i := range out {
		out[i].ID = id(out[i].ID)
	}
	return out
}
