package hocr

// FitTo returns the page with every box rescaled so the page box becomes 0 0 width height.
// Engines that recognize a resampled copy of an image report boxes in that copy's pixels;
// fitting them to the source image keeps the text over the right spot of the page.
// A page without a page box simply receives one.
func (p Page) FitTo(width, height float64) Page {
	if p.BBox.IsZero() {
		p.BBox = NewBoundingBox(0, 0, width, height)
		return p
	}
	if p.BBox == NewBoundingBox(0, 0, width, height) {
		return p
	}

	origin := p.BBox
	sx := width / origin.Width()
	sy := height / origin.Height()
	fit := func(b BoundingBox) BoundingBox {
		if b == (BoundingBox{}) {
			return b
		}
		return NewBoundingBox(
			(b.X1-origin.X1)*sx, (b.Y1-origin.Y1)*sy,
			(b.X2-origin.X1)*sx, (b.Y2-origin.Y1)*sy,
		)
	}

	p.BBox = NewBoundingBox(0, 0, width, height)
	p.Areas = append([]Area(nil), p.Areas...)
	for i := range p.Areas {
		area := &p.Areas[i]
		area.BBox = fit(area.BBox)
		area.Paragraphs = fitParagraphs(area.Paragraphs, fit)
		area.Lines = fitLines(area.Lines, fit)
		area.Words = fitWords(area.Words, fit)
	}
	p.Paragraphs = fitParagraphs(p.Paragraphs, fit)
	p.Lines = fitLines(p.Lines, fit)
	return p
}

func fitParagraphs(pars []Paragraph, fit func(BoundingBox) BoundingBox) []Paragraph {
	out := append([]Paragraph(nil), pars...)
	for i := range out {
		out[i].BBox = fit(out[i].BBox)
		out[i].Lines = fitLines(out[i].Lines, fit)
		out[i].Words = fitWords(out[i].Words, fit)
	}
	return out
}

func fitLines(lines []Line, fit func(BoundingBox) BoundingBox) []Line {
	out := append([]Line(nil), lines...)
	for i := range out {
		out[i].BBox = fit(out[i].BBox)
		out[i].Words = fitWords(out[i].Words, fit)
	}
	return out
}

func fitWords(words []Word, fit func(BoundingBox) BoundingBox) []Word {
	out := append([]Word(nil), words...)
	for i := range out {
		out[i].BBox = fit(out[i].BBox)
	}
	return out
}
