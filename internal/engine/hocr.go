package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gardar/scanbook/pkg/hocr"
	"github.com/gardar/scanbook/pkg/pages"
	"github.com/gardar/scanbook/pkg/pdfocr"
)

// Input is one page image to recognize
type Input struct {
	Page     pages.Page
	Language string  // Language codes joined by '+'
	DPI      float64 // Scan resolution, 0 when unknown
}

// Recognizer turns one page image into a single-page hOCR document with boxes in image pixels
type Recognizer interface {
	Recognize(ctx context.Context, in Input) (hocr.Document, error)
}

// HOCR is an engine that recognizes each page image on its own and lays the merged
// hOCR over the interim PDF
type HOCR struct {
	name string
	rec  Recognizer
	log  logrus.FieldLogger
}

// NewHOCR returns an engine named name that recognizes pages with rec
func NewHOCR(name string, rec Recognizer, log logrus.FieldLogger) *HOCR {
	return &HOCR{name: name, rec: rec, log: log}
}

func (e *HOCR) Name() string { return e.name }

// Close closes the recognizer if it holds resources
func (e *HOCR) Close() error {
	if c, ok := e.rec.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Run implements Engine
func (e *HOCR) Run(ctx context.Context, job Job) error {
	if job.OutputType == "pdfa" {
		e.log.Warnf("%s engine writes plain PDF; PDF/A output needs the ocrmypdf engine", e.name)
	}
	if job.Deskew || job.RotatePages {
		e.log.Debugf("%s engine does not deskew or rotate pages", e.name)
	}

	docs, err := e.recognize(ctx, job)
	if err != nil {
		return err
	}
	merged := hocr.Merge(e.name, docs...)

	interim, err := os.ReadFile(job.Interim)
	if err != nil {
		return fmt.Errorf("failed to read interim PDF: %w", err)
	}

	config := pdfocr.DefaultConfig()
	config.DPI = job.DPI
	config.Logger = e.log
	finalPDF, err := pdfocr.ApplyOCR(interim, merged, config)
	if err != nil {
		return fmt.Errorf("failed to apply OCR text layer: %w", err)
	}
	if err := os.WriteFile(job.Output, finalPDF, 0o644); err != nil {
		return fmt.Errorf("failed to write output PDF: %w", err)
	}

	if job.Sidecar != "" {
		if err := os.WriteFile(job.Sidecar, []byte(hocr.Text(merged)), 0o644); err != nil {
			return fmt.Errorf("failed to write sidecar text: %w", err)
		}
		e.log.WithField("path", job.Sidecar).Info("Sidecar text saved")
	}
	if job.HOCR != "" {
		html, err := hocr.Generate(merged)
		if err != nil {
			return fmt.Errorf("failed to generate hOCR: %w", err)
		}
		if err := os.WriteFile(job.HOCR, []byte(html), 0o644); err != nil {
			return fmt.Errorf("failed to write hOCR: %w", err)
		}
		e.log.WithField("path", job.HOCR).Info("hOCR saved")
	}
	return nil
}

// recognize runs the recognizer over every page, at most job.Jobs at a time.
// Results keep the page order whatever order they finish in.
func (e *HOCR) recognize(ctx context.Context, job Job) ([]hocr.Document, error) {
	docs := make([]hocr.Document, len(job.Pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, job.Jobs))
	for i, page := range job.Pages {
		g.Go(func() error {
			doc, err := e.rec.Recognize(gctx, Input{Page: page, Language: job.Language, DPI: job.DPI})
			if err != nil {
				return fmt.Errorf("failed to recognize page %d (%s): %w", i+1, page.Name, err)
			}
			if len(doc.Pages) != 1 {
				return fmt.Errorf("page %d (%s): expected 1 hOCR page, got %d", i+1, page.Name, len(doc.Pages))
			}
			doc.Pages[0] = doc.Pages[0].FitTo(float64(page.Width), float64(page.Height))
			doc.Pages[0].ImageName = page.Name

			e.log.WithFields(logrus.Fields{"page": i + 1, "file": page.Name}).
				Debugf("recognized %d words", len(doc.Pages[0].Words()))
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
