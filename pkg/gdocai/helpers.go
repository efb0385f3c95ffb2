package gdocai

import (
	"encoding/json"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ToJSON converts various types to a pretty-printed JSON string
// It handles both protocol buffer messages and regular Go structs
func ToJSON(data interface{}) (string, error) {
	switch v := data.(type) {
	case proto.Message:
		// For protocol buffer messages, use protojson
		jsonData, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(jsonData), nil

	default:
		// For regular Go structs, use standard json package
		jsonData, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(jsonData), nil
	}
}

// MimeType maps a decoded image format name ("png", "jpeg") to the MIME type Document AI expects
func MimeType(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	}
	return "application/octet-stream"
}
