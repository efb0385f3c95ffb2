package gdocai

import (
	"strings"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/scanbook/pkg/hocr"
)

func layout(start, end int64, x1, y1, x2, y2 float32) *documentaipb.Document_Page_Layout {
	return &documentaipb.Document_Page_Layout{
		Confidence: 0.93,
		TextAnchor: &documentaipb.Document_TextAnchor{
			TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: start, EndIndex: end}},
		},
		BoundingPoly: &documentaipb.BoundingPoly{
			NormalizedVertices: []*documentaipb.NormalizedVertex{
				{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2},
			},
		},
	}
}

// samplePage is a 1000x2000 pixel page reading "Hello world\nBye\n":
// one block with one paragraph holding the first line, and a second line outside any paragraph.
func samplePage() *documentaipb.Document {
	icelandic := []*documentaipb.Document_Page_DetectedLanguage{{LanguageCode: "is"}}
	return &documentaipb.Document{
		Text: "Hello world\nBye\n",
		Pages: []*documentaipb.Document_Page{{
			PageNumber:        1,
			Dimension:         &documentaipb.Document_Page_Dimension{Width: 1000, Height: 2000, Unit: "pixels"},
			DetectedLanguages: icelandic,
			Blocks: []*documentaipb.Document_Page_Block{
				{Layout: layout(0, 12, 0.1, 0.1, 0.9, 0.2)},
			},
			Paragraphs: []*documentaipb.Document_Page_Paragraph{
				{Layout: layout(0, 12, 0.1, 0.1, 0.9, 0.2)},
			},
			Lines: []*documentaipb.Document_Page_Line{
				{Layout: layout(0, 12, 0.1, 0.1, 0.9, 0.2)},
				{Layout: layout(12, 16, 0.1, 0.5, 0.3, 0.6)},
			},
			Tokens: []*documentaipb.Document_Page_Token{
				{Layout: layout(0, 6, 0.1, 0.1, 0.4, 0.2), DetectedLanguages: icelandic},
				{Layout: layout(6, 12, 0.5, 0.1, 0.9, 0.2)},
				{Layout: layout(12, 16, 0.1, 0.5, 0.3, 0.6)},
			},
		}},
	}
}

func TestHOCRDocument(t *testing.T) {
	doc := HOCRDocument(samplePage())
	if doc.Language != "is" || doc.Metadata["ocr-number-of-pages"] != "1" {
		t.Fatalf("document = %+v", doc)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("pages = %d", len(doc.Pages))
	}

	page := doc.Pages[0]
	if page.BBox != hocr.NewBoundingBox(0, 0, 1000, 2000) {
		t.Fatalf("page bbox = %v", page.BBox)
	}
	if len(page.Areas) != 1 || len(page.Areas[0].Paragraphs) != 1 || len(page.Areas[0].Paragraphs[0].Lines) != 1 {
		t.Fatalf("areas = %+v", page.Areas)
	}
	if len(page.Paragraphs) != 0 || len(page.Lines) != 1 {
		t.Fatalf("unassigned paragraphs = %d, lines = %d", len(page.Paragraphs), len(page.Lines))
	}

	words := page.Words()
	var texts []string
	for _, w := range words {
		texts = append(texts, w.Text)
	}
	if got := strings.Join(texts, "|"); got != "Hello|world|Bye" {
		t.Fatalf("words = %q", got)
	}
	if words[0].BBox != hocr.NewBoundingBox(100, 200, 400, 400) {
		t.Fatalf("first word bbox = %v", words[0].BBox)
	}
	if words[0].Confidence != 93 || words[0].Lang != "is" {
		t.Fatalf("first word = %+v", words[0])
	}

	if got := hocr.Text(&doc); got != "Hello world\n\nBye\n" {
		t.Fatalf("text = %q", got)
	}
}

func TestBoundingBoxAbsoluteVertices(t *testing.T) {
	l := &documentaipb.Document_Page_Layout{
		BoundingPoly: &documentaipb.BoundingPoly{
			Vertices: []*documentaipb.Vertex{{X: 30, Y: 40}, {X: 10, Y: 40}, {X: 10, Y: 20}, {X: 30, Y: 20}},
		},
	}
	if got := boundingBox(l, nil); got != hocr.NewBoundingBox(10, 20, 30, 40) {
		t.Fatalf("bbox = %v", got)
	}
	if got := boundingBox(nil, nil); got != (hocr.BoundingBox{}) {
		t.Fatalf("bbox of nil layout = %v", got)
	}
}

func TestTextFromLayout(t *testing.T) {
	text := "Garðar á bók"
	l := &documentaipb.Document_Page_Layout{
		TextAnchor: &documentaipb.Document_TextAnchor{
			TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{
				{StartIndex: 0, EndIndex: 6},
				{StartIndex: 9, EndIndex: 99},
			},
		},
	}
	if got := textFromLayout(l, text); got != "Garðarbók" {
		t.Fatalf("text = %q", got)
	}
	if got := textFromLayout(nil, text); got != "" {
		t.Fatalf("text of nil layout = %q", got)
	}
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(samplePage())
	if err != nil {
		t.Fatalf("proto: %v", err)
	}
	if !strings.Contains(out, `"Hello world\nBye\n"`) {
		t.Fatalf("proto JSON = %s", out)
	}

	out, err = ToJSON(map[string]int{"pages": 2})
	if err != nil || !strings.Contains(out, `"pages": 2`) {
		t.Fatalf("struct JSON = %s, %v", out, err)
	}
}

func TestMimeType(t *testing.T) {
	for format, want := range map[string]string{"png": "image/png", "jpeg": "image/jpeg", "JPG": "image/jpeg", "gif": "application/octet-stream"} {
		if got := MimeType(format); got != want {
			t.Errorf("MimeType(%q) = %q; want %q", format, got, want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{ProjectID: "p", Location: "eu"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "processor_id") {
		t.Fatalf("err = %v", err)
	}
	cfg.ProcessorID = "x"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("err = %v", err)
	}
}
