// Package engine runs the OCR pass that turns the interim PDF into the searchable book.
//
// Engines are interchangeable behind the Engine interface:
//
// - ocrmypdf: hands the interim PDF to the OCRmyPDF command line tool
// - tesseract: runs the tesseract command once per page image
// - gosseract: calls libtesseract in process (requires the "gosseract" build tag)
// - docai: sends every page image to a Google Document AI processor
//
// All engines but ocrmypdf recognize the page images into hOCR, merge the pages into one
// document and lay it over the interim PDF as an invisible text layer.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gardar/scanbook/pkg/gdocai"
	"github.com/gardar/scanbook/pkg/pages"
)

// Job is one OCR pass over a book
type Job struct {
	Pages       []pages.Page // Pages in book order, one per interim PDF page
	Interim     string       // Interim PDF holding the page images
	Output      string       // Searchable PDF to write
	Language    string       // Tesseract language codes joined by '+', e.g. "eng+isl"
	OutputType  string       // "pdf" or "pdfa"
	Jobs        int          // Parallelism hint
	Deskew      bool         // Straighten and clean pages where the engine can
	RotatePages bool         // Fix page orientation where the engine can
	DPI         float64      // Resolution the interim PDF was built at
	Sidecar     string       // Optional plain text output
	HOCR        string       // Optional hOCR output
}

// Languages splits the language setting into its codes
func (j Job) Languages() []string {
	return splitLanguages(j.Language)
}

func splitLanguages(s string) []string {
	var langs []string
	for _, l := range strings.Split(s, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

// Engine performs the OCR pass. Run must leave Job.Interim in place.
type Engine interface {
	Name() string
	Run(ctx context.Context, job Job) error
}

// Options carries what engines need to be built
type Options struct {
	Logger   logrus.FieldLogger
	Runner   Runner        // Process runner; nil runs real processes
	DocAI    gdocai.Config // Processor for the docai engine
	DebugDir string        // Where the docai engine dumps raw responses, if set
}

type factory func(ctx context.Context, opts Options) (Engine, error)

var factories = map[string]factory{
	"ocrmypdf": func(_ context.Context, opts Options) (Engine, error) {
		return NewOCRmyPDF(opts.Runner, opts.Logger), nil
	},
	"tesseract": func(_ context.Context, opts Options) (Engine, error) {
		return NewHOCR("tesseract", NewTesseract(opts.Runner), opts.Logger), nil
	},
	"gosseract": func(_ context.Context, opts Options) (Engine, error) {
		rec, err := newGosseract()
		if err != nil {
			return nil, err
		}
		return NewHOCR("gosseract", rec, opts.Logger), nil
	},
	"docai": func(ctx context.Context, opts Options) (Engine, error) {
		rec, err := NewDocAI(ctx, &opts.DocAI, opts.DebugDir, opts.Logger)
		if err != nil {
			return nil, err
		}
		return NewHOCR("docai", rec, opts.Logger), nil
	},
}

// Names lists the known engine names
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the engine called name.
// Engines holding connections implement io.Closer.
func New(ctx context.Context, name string, opts Options) (Engine, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown OCR engine %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{Logger: opts.Logger}
	}
	return f(ctx, opts)
}
