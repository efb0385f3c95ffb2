package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/sirupsen/logrus"

	"github.com/gardar/scanbook/pkg/gdocai"
	"github.com/gardar/scanbook/pkg/hocr"
)

// DocAI recognizes pages with a Google Document AI processor, one request per page image
type DocAI struct {
	client   *gdocai.Client
	debugDir string
	log      logrus.FieldLogger
}

// NewDocAI connects to the processor in cfg. When debugDir is set every raw response
// is saved there as JSON.
func NewDocAI(ctx context.Context, cfg *gdocai.Config, debugDir string, log logrus.FieldLogger) (*DocAI, error) {
	client, err := gdocai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if debugDir != "" {
		if err := os.MkdirAll(debugDir, 0o755); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create debug directory: %w", err)
		}
	}
	return &DocAI{client: client, debugDir: debugDir, log: log}, nil
}

// Close closes the Document AI connection
func (d *DocAI) Close() error {
	return d.client.Close()
}

// Recognize implements Recognizer
func (d *DocAI) Recognize(ctx context.Context, in Input) (hocr.Document, error) {
	image, err := os.ReadFile(in.Page.Path)
	if err != nil {
		return hocr.Document{}, fmt.Errorf("failed to read image: %w", err)
	}

	doc, raw, err := d.client.PageHOCR(ctx, image, gdocai.MimeType(in.Page.Format))
	if raw != nil && d.debugDir != "" {
		d.dump(in.Page.Name, raw)
	}
	if err != nil {
		return hocr.Document{}, err
	}
	return doc, nil
}

// dump saves a raw response next to the other debug output; failures are only logged
func (d *DocAI) dump(name string, raw *documentaipb.Document) {
	apiJSON, err := gdocai.ToJSON(raw)
	if err != nil {
		d.log.Warnf("Failed to convert API response to JSON: %v", err)
		return
	}
	path := filepath.Join(d.debugDir, strings.TrimSuffix(name, filepath.Ext(name))+".json")
	if err := os.WriteFile(path, []byte(apiJSON), 0o644); err != nil {
		d.log.Warnf("Failed to write API response JSON: %v", err)
		return
	}
	d.log.WithField("path", path).Debug("API response JSON saved")
}
