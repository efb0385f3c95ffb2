// Package book binds a folder of page scans into a searchable PDF.
//
// An Assembler runs the whole pipeline: it verifies the images, orders them by the
// page numbers in their names, merges them into an interim PDF and hands that to an
// OCR engine. The interim PDF is removed once the searchable PDF exists and is kept
// when OCR fails, so the work done so far is not lost.
package book

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gardar/scanbook/internal/engine"
	"github.com/gardar/scanbook/pkg/pages"
	"github.com/gardar/scanbook/pkg/pdfocr"
)

var (
	// ErrAssemble means the interim PDF could not be built; no interim file is left behind.
	ErrAssemble = errors.New("failed to assemble interim PDF")

	// ErrOCR means the OCR pass failed or produced a bad PDF; the interim PDF is kept.
	ErrOCR = errors.New("OCR failed")

	// ErrOutputExists means the output file is already there and overwriting was not allowed.
	ErrOutputExists = errors.New("output file already exists")
)

// Options controls a run
type Options struct {
	InputDir    string
	Interim     string
	Output      string
	Language    string
	OutputType  string
	Jobs        int
	DPI         float64
	Deskew      bool
	RotatePages bool
	Sidecar     string
	HOCR        string
	KeepInterim bool
	Overwrite   bool
	Verify      bool
	DryRun      bool
}

// Result describes how far a run got
type Result struct {
	Skipped  []pages.Skipped     // Files that failed verification
	Sequence pages.Sequence      // Page order and gaps
	Output   string              // Searchable PDF, set once it is written
	Interim  string              // Interim PDF left on disk, if any
	Verified pdfocr.VerifyResult // What a reader found in the output
}

// Assembler runs the scan-to-book pipeline
type Assembler struct {
	opts Options
	log  logrus.FieldLogger
}

// New returns an assembler for opts
func New(opts Options, log logrus.FieldLogger) *Assembler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Assembler{opts: opts, log: log}
}

// Run plans the book and binds it with eng; see Plan and Bind.
func (a *Assembler) Run(ctx context.Context, eng engine.Engine) (Result, error) {
	res, err := a.Plan()
	if err != nil || a.opts.DryRun {
		return res, err
	}
	return a.Bind(ctx, eng, res)
}

// Plan verifies and orders the images in the input directory without writing anything.
// Unless this is a dry run it also makes sure the output may be written, so a run that
// would be refused stops before an OCR engine is set up.
// Errors wrap pages.ErrDirNotFound, pages.ErrNotDir, pages.ErrNoImages or ErrOutputExists.
func (a *Assembler) Plan() (Result, error) {
	var res Result

	scan, err := pages.Scan(a.opts.InputDir)
	if err != nil {
		return res, err
	}
	res.Skipped = scan.Skipped
	for _, s := range scan.Skipped {
		a.log.WithField("file", s.Name).Warnf("Skipping unreadable image: %v", s.Err)
	}
	a.log.WithField("dir", a.opts.InputDir).Infof("Found %d valid images", len(scan.Valid))

	seq, err := pages.Plan(scan.Valid)
	if err != nil {
		return res, err
	}
	res.Sequence = seq
	if len(seq.Gaps) > 0 {
		a.log.WithField("count", seq.MissingCount()).
			Warnf("Missing page numbers: %s", pages.FormatGaps(seq.Gaps))
	}

	if a.opts.DryRun {
		for i, p := range seq.Pages {
			a.log.WithField("file", p.Name).Debugf("Page %d", i+1)
		}
		return res, nil
	}
	return res, a.checkOutput()
}

// Bind merges the planned pages into the interim PDF and has eng turn it into the output.
// Errors wrap ErrAssemble or ErrOCR so callers can tell them apart with errors.Is.
func (a *Assembler) Bind(ctx context.Context, eng engine.Engine, plan Result) (Result, error) {
	res := plan
	seq := plan.Sequence
	if len(seq.Pages) == 0 {
		return res, pages.ErrNoImages
	}

	if err := a.assemble(seq); err != nil {
		return res, fmt.Errorf("%w: %w", ErrAssemble, err)
	}
	a.log.WithField("path", a.opts.Interim).Infof("Interim PDF written with %d pages", len(seq.Pages))

	job := engine.Job{
		Pages:       seq.Pages,
		Interim:     a.opts.Interim,
		Output:      a.opts.Output,
		Language:    a.opts.Language,
		OutputType:  a.opts.OutputType,
		Jobs:        a.opts.Jobs,
		Deskew:      a.opts.Deskew,
		RotatePages: a.opts.RotatePages,
		DPI:         a.opts.DPI,
		Sidecar:     a.opts.Sidecar,
		HOCR:        a.opts.HOCR,
	}
	a.log.WithFields(logrus.Fields{
		"engine":    eng.Name(),
		"jobs":      job.Jobs,
		"languages": strings.Join(job.Languages(), ", "),
	}).Info("Running OCR")

	if err := eng.Run(ctx, job); err != nil {
		res.Interim = a.opts.Interim
		return res, fmt.Errorf("%w: %w", ErrOCR, err)
	}

	if a.opts.Verify {
		verified, err := pdfocr.Verify(a.opts.Output)
		switch {
		case err != nil:
			a.log.Warnf("Could not verify output PDF: %v", err)
		case verified.Pages != len(seq.Pages):
			res.Interim = a.opts.Interim
			return res, fmt.Errorf("%w: output has %d pages, expected %d", ErrOCR, verified.Pages, len(seq.Pages))
		default:
			res.Verified = verified
			if verified.TextChars == 0 {
				a.log.Warn("Output PDF contains no extractable text")
			} else {
				a.log.Debugf("Output PDF has %d characters of text", verified.TextChars)
			}
		}
	}
	res.Output = a.opts.Output

	if a.opts.KeepInterim {
		res.Interim = a.opts.Interim
		return res, nil
	}
	if err := os.Remove(a.opts.Interim); err != nil {
		res.Interim = a.opts.Interim
		a.log.Warnf("Failed to remove interim PDF: %v", err)
	}
	return res, nil
}

// checkOutput refuses to replace an existing output unless overwriting is allowed.
// Any other stat failure means the output could not be written either, so it is reported now.
func (a *Assembler) checkOutput() error {
	_, err := os.Stat(a.opts.Output)
	switch {
	case err == nil:
		if !a.opts.Overwrite {
			return fmt.Errorf("%w: %s (use -overwrite to replace it)", ErrOutputExists, a.opts.Output)
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("failed to check output file: %w", err)
	}
}

// assemble writes the interim PDF, removing it again if anything fails
func (a *Assembler) assemble(seq pages.Sequence) (err error) {
	images := make([]pdfocr.Image, len(seq.Pages))
	for i, p := range seq.Pages {
		images[i] = pdfocr.Image{Path: p.Path, Format: p.Format, Width: p.Width, Height: p.Height}
	}

	if dir := filepath.Dir(a.opts.Interim); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create interim directory: %w", err)
		}
	}
	f, err := os.Create(a.opts.Interim)
	if err != nil {
		return fmt.Errorf("failed to create interim PDF: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close interim PDF: %w", cerr)
		}
		if err != nil {
			os.Remove(a.opts.Interim)
		}
	}()

	return pdfocr.MergeImages(f, images, a.opts.DPI)
}
