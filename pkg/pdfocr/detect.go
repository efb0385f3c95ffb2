package pdfocr

import (
	"fmt"
	"regexp"
	"strings"
)

// layerNamePatterns find optional content group (layer) names in raw PDF data
var layerNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*\(([^)]+)\)`),
	regexp.MustCompile(`/OCG\s*<<[^>]*?/Name\s*\(([^)]+)\)`),
	regexp.MustCompile(`<</Type/OCG/Name\(([^)]+)\)`),
	regexp.MustCompile(`/Name\s*\(([^)]+)\)[\s\S]{1,50}/Type\s*/OCG`),
}

// detectPDFLayers attempts to find layer names in the raw PDF data.
// Layers inside compressed object streams are not found.
func detectPDFLayers(pdfData []byte) ([]string, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	var layers []string
	seen := make(map[string]bool)
	for _, pattern := range layerNamePatterns {
		for _, match := range pattern.FindAllSubmatch(pdfData, -1) {
			name := unescapePDFString(string(match[1]))
			if decoded, err := decodeUTF16BE([]byte(name)); err == nil {
				name = decoded
			}
			if !seen[name] {
				seen[name] = true
				layers = append(layers, name)
			}
		}
	}
	return layers, nil
}

// LayerCheckResult contains the results of checking for OCR layers
type LayerCheckResult struct {
	Layers       []string // All detected layers
	HasOCRLayer  bool     // True if the specified OCR layer exists
	OCRLayerName string   // Name of the detected OCR layer (if any)
	Warnings     []string // Any warnings about potential OCR layers
}

// CheckExistingOCRLayers checks for existing OCR layers in a PDF.
// Both the plain layer name and the per-page "<name> (Page N)" form count as a match.
func CheckExistingOCRLayers(pdfData []byte, ocrLayerName string) (LayerCheckResult, error) {
	result := LayerCheckResult{}

	layers, err := detectPDFLayers(pdfData)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers

	pageLayerPattern := regexp.MustCompile(fmt.Sprintf(`^%s\s*\(Page\s*\d+`, regexp.QuoteMeta(ocrLayerName)))
	for _, layer := range layers {
		if layer == ocrLayerName || pageLayerPattern.MatchString(layer) {
			result.HasOCRLayer = true
			result.OCRLayerName = layer
			break
		}
		if strings.Contains(strings.ToLower(layer), "ocr") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Existing layer detected that might contain OCR: %s", layer))
		}
	}

	return result, nil
}
