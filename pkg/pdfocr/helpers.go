package pdfocr

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// pointsFromPixels converts an image length in pixels to PDF points at the given resolution
func pointsFromPixels(px, dpi float64) float64 {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return px * 72 / dpi
}

func unescapePDFString(s string) string {
	s = strings.ReplaceAll(s, "\\(", "(")
	s = strings.ReplaceAll(s, "\\)", ")")
	s = strings.ReplaceAll(s, "\\\\", "\\")
	return s
}

func decodeUTF16BE(b []byte) (string, error) {
	if len(b) < 2 || b[0] != 0xFE || b[1] != 0xFF {
		return "", fmt.Errorf("no BOM detected, cannot confirm UTF-16BE")
	}
	b = b[2:]
	runes := make([]rune, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		runes = append(runes, rune(uint16(b[i])<<8|uint16(b[i+1])))
	}
	return string(runes), nil
}

// logger returns the configured logger, defaulting to the logrus standard logger
func logger(config OCRConfig) logrus.FieldLogger {
	if config.Logger == nil {
		return logrus.StandardLogger()
	}
	return config.Logger
}
