package gdocai

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

// textFromLayout extracts text from a layout's text anchor segments
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	runes := []rune(fullText)
	result := strings.Builder{}
	totalRunes := len(runes)

	for _, seg := range layout.TextAnchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > totalRunes {
			end = totalRunes
		}
		if start > end {
			start = end
		}
		result.WriteString(string(runes[start:end]))
	}
	return result.String()
}

// tokenText is the text of a token on one line, without the break Document AI appends
func tokenText(token *documentaipb.Document_Page_Token, fullText string) string {
	text := strings.TrimSpace(textFromLayout(token.Layout, fullText))
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.ReplaceAll(text, "\r", "")
}
