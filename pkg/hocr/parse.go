package hocr

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

const (
	classPage      = "ocr_page"
	classArea      = "ocr_carea"
	classParagraph = "ocr_par"
	classLine      = "ocr_line"
	classWord      = "ocrx_word"
)

// lineClasses are the classes treated as a line of text
var lineClasses = []string{classLine, "ocr_header", "ocr_caption", "ocr_textfloat"}

var charsetPattern = regexp.MustCompile(`(?i)charset\s*=\s*["']?([a-z0-9_-]+)`)

// Parse converts raw hOCR data into a Document.
// Latin-1 input (declared through a charset other than UTF-8) is decoded first.
func Parse(data []byte) (Document, error) {
	doc := Document{Metadata: make(map[string]string)}

	if m := charsetPattern.FindSubmatch(data); m != nil {
		enc := strings.ToLower(string(m[1]))
		if enc != "utf-8" && enc != "utf8" {
			decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
			if err != nil {
				return doc, fmt.Errorf("failed to decode %s: %w", enc, err)
			}
			data = decoded
		}
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return doc, fmt.Errorf("failed to parse hOCR HTML: %w", err)
	}

	parseHead(&doc, root)

	for _, m := range nearest(root, classPage) {
		doc.Pages = append(doc.Pages, parsePage(m.node))
	}
	if len(doc.Pages) == 0 {
		return doc, fmt.Errorf("no ocr_page elements found in hOCR data")
	}
	return doc, nil
}

// ParseTitle breaks down an hOCR title attribute into its properties
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	props := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		props[fields[0]] = fields[1:]
	}
	return props
}

// ParseBoundingBox extracts the 'bbox' property of a title attribute
func ParseBoundingBox(title string) (BoundingBox, bool) {
	bbox, ok := ParseTitle(title)["bbox"]
	if !ok || len(bbox) < 4 {
		return BoundingBox{}, false
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil {
			return BoundingBox{}, false
		}
		v[i] = f
	}
	return NewBoundingBox(v[0], v[1], v[2], v[3]), true
}

// element holds the attributes shared by every hOCR level
type element struct {
	id    string
	lang  string
	bbox  BoundingBox
	props map[string][]string
}

func readElement(n *html.Node) element {
	e := element{props: map[string][]string{}}
	for _, a := range n.Attr {
		switch a.Key {
		case "id":
			e.id = a.Val
		case "lang", "xml:lang":
			e.lang = a.Val
		case "title":
			e.props = ParseTitle(a.Val)
			e.bbox, _ = ParseBoundingBox(a.Val)
		}
	}
	return e
}

func (e element) first(prop string) string {
	if v := e.props[prop]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func parsePage(n *html.Node) Page {
	e := readElement(n)
	page := Page{ID: e.id, Lang: e.lang, BBox: e.bbox}
	page.ImageName = strings.Trim(e.first("image"), `"`)
	page.PageNumber, _ = strconv.Atoi(e.first("ppageno"))

	for _, m := range nearest(n, append([]string{classArea, classParagraph}, lineClasses...)...) {
		switch m.class {
		case classArea:
			page.Areas = append(page.Areas, parseArea(m.node))
		case classParagraph:
			page.Paragraphs = append(page.Paragraphs, parseParagraph(m.node))
		default:
			page.Lines = append(page.Lines, parseLine(m.node, m.class))
		}
	}
	return page
}

func parseArea(n *html.Node) Area {
	e := readElement(n)
	area := Area{ID: e.id, Lang: e.lang, BBox: e.bbox}

	for _, m := range nearest(n, append([]string{classParagraph, classWord}, lineClasses...)...) {
		switch m.class {
		case classParagraph:
			area.Paragraphs = append(area.Paragraphs, parseParagraph(m.node))
		case classWord:
			area.Words = append(area.Words, parseWord(m.node))
		default:
			area.Lines = append(area.Lines, parseLine(m.node, m.class))
		}
	}
	return area
}

func parseParagraph(n *html.Node) Paragraph {
	e := readElement(n)
	par := Paragraph{ID: e.id, Lang: e.lang, BBox: e.bbox}

	for _, m := range nearest(n, append([]string{classWord}, lineClasses...)...) {
		if m.class == classWord {
			par.Words = append(par.Words, parseWord(m.node))
			continue
		}
		par.Lines = append(par.Lines, parseLine(m.node, m.class))
	}
	return par
}

func parseLine(n *html.Node, class string) Line {
	e := readElement(n)
	line := Line{ID: e.id, Lang: e.lang, BBox: e.bbox}
	if class != classLine {
		line.Class = class
	}
	if baseline := e.props["baseline"]; len(baseline) > 0 {
		line.Baseline = strings.Join(baseline, " ")
	}
	for _, m := range nearest(n, classWord) {
		line.Words = append(line.Words, parseWord(m.node))
	}
	return line
}

func parseWord(n *html.Node) Word {
	e := readElement(n)
	word := Word{ID: e.id, Lang: e.lang, BBox: e.bbox, Text: textContent(n)}
	if conf := e.first("x_wconf"); conf != "" {
		word.Confidence, _ = strconv.ParseFloat(conf, 64)
	}
	if lang := e.first("lang"); lang != "" {
		word.Lang = lang
	}
	return word
}

// parseHead reads the title, language and ocr-* meta tags
func parseHead(doc *Document, root *html.Node) {
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.Data {
		case "html":
			for _, a := range n.Attr {
				if a.Key == "lang" || a.Key == "xml:lang" {
					doc.Language = a.Val
				}
			}
		case "title":
			doc.Title = textContent(n)
		case "meta":
			name, content := attr(n, "name"), attr(n, "content")
			switch {
			case strings.HasPrefix(name, "ocr-"):
				doc.Metadata[name] = content
			case name == "dc.language" && content != "":
				doc.Language = content
			}
		case "body":
			return false
		}
		return true
	})
}

// match is an element found by nearest together with the class it matched
type match struct {
	class string
	node  *html.Node
}

// nearest collects, in document order, the closest descendants of n carrying one of classes.
// It does not look inside a matched element, so each element is claimed by its nearest ancestor level.
func nearest(n *html.Node, classes ...string) []match {
	var found []match
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, func(node *html.Node) bool {
			if node.Type != html.ElementNode {
				return true
			}
			if class := matchClass(node, classes); class != "" {
				found = append(found, match{class: class, node: node})
				return false
			}
			return true
		})
	}
	return found
}

// walk visits n and its descendants depth-first; visit returns false to skip the children
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func matchClass(n *html.Node, classes []string) string {
	for _, class := range strings.Fields(attr(n, "class")) {
		for _, want := range classes {
			if class == want {
				return want
			}
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates the text below n with surrounding space trimmed
func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(node *html.Node) bool {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		return true
	})
	return strings.TrimSpace(b.String())
}
