// scanbook is a command-line tool for binding a folder of page scans into a searchable PDF.
//
// The tool verifies every PNG and JPEG image in the input directory, skipping files that
// do not decode, and orders them by the page numbers in their names (page2 before page10).
// Missing page numbers are reported. The pages are merged losslessly into an interim PDF,
// which an OCR engine turns into the searchable book. The interim PDF is deleted after a
// successful run and kept when OCR fails.
//
// Usage:
//
//	scanbook [options]
//
// Input and output options:
//
//	-input string        Directory containing the page images (default "images")
//	-interim string      Path of the interim PDF (default "temp_merged.pdf")
//	-output string       Path of the searchable PDF (default "book.pdf")
//	-sidecar string      Path to save the recognized text
//	-hocr string         Path to save the hOCR (all engines but ocrmypdf)
//	-config string       Path to a YAML configuration file
//
// OCR options:
//
//	-engine string       OCR engine: docai, gosseract, ocrmypdf, tesseract (default "ocrmypdf")
//	-lang string         OCR languages, joined by '+' (default "eng")
//	-output-type string  Output type: pdf or pdfa (default "pdfa")
//	-jobs int            Number of pages to OCR in parallel (default half the CPUs)
//	-dpi float           Resolution the pages were scanned at (default 300)
//	-deskew              Deskew and clean pages (default true)
//	-rotate-pages        Fix page orientation (default true)
//
// Processing options:
//
//	-dry-run             Print the page order and stop
//	-overwrite           Overwrite the output PDF if it already exists
//	-keep-interim        Keep the interim PDF after a successful run
//	-verify              Check the page count of the finished PDF (default true)
//	-log-level string    Log level: debug, info, warn, error (default "info")
//	-log-format string   Log format: text or json (default "text")
//
// Every option can also be set in the YAML file, and the main ones through SCANBOOK_*
// environment variables; flags win over the environment, which wins over the file.
// The docai engine reads its processor from the file:
//
//	engine: docai
//	docai:
//	  project_id: "your-gcp-project-id"
//	  location: "us"
//	  processor_id: "your-processor-id"
//
// and authenticates through the GOOGLE_APPLICATION_CREDENTIALS environment variable.
//
// Exit status is 0 on success and when there is nothing to bind, 1 on any failure.
//
// Examples:
//
//	scanbook -input ./scans -output saga.pdf -lang isl+eng
//	scanbook -input ./scans -engine tesseract -hocr saga.hocr -sidecar saga.txt
//	scanbook -config scanbook.yml -dry-run
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gardar/scanbook/internal/book"
	"github.com/gardar/scanbook/internal/config"
	"github.com/gardar/scanbook/internal/engine"
	"github.com/gardar/scanbook/pkg/pages"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("scanbook", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg, err := config.Parse(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log := newLogger(cfg.Log, stderr).WithField("run", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assembler := book.New(options(cfg), log)
	res, err := assembler.Plan()
	switch {
	case errors.Is(err, pages.ErrNoImages):
		log.Warnf("No valid images in %s; nothing to do", cfg.InputDir)
		return 0
	case err != nil:
		log.Error(err)
		return 1
	}

	if cfg.DryRun {
		for i, p := range res.Sequence.Pages {
			fmt.Fprintf(stdout, "%d\t%s\n", i+1, p.Path)
		}
		return 0
	}

	eng, err := engine.New(ctx, cfg.Engine, engine.Options{
		Logger:   log,
		DocAI:    cfg.DocAI.Config,
		DebugDir: cfg.DocAI.DebugDir,
	})
	if err != nil {
		log.Errorf("Failed to set up OCR engine: %v", err)
		return 1
	}
	if c, ok := eng.(io.Closer); ok {
		defer c.Close()
	}

	res, err = assembler.Bind(ctx, eng, res)
	switch {
	case errors.Is(err, book.ErrOCR):
		log.WithField("interim", res.Interim).Errorf("%v", err)
		log.Infof("Interim PDF kept at %s", res.Interim)
		return 1
	case err != nil:
		log.Error(err)
		return 1
	}

	if res.Interim != "" {
		log.WithField("path", res.Interim).Info("Interim PDF kept")
	}
	log.WithField("path", res.Output).Info("OCR-enhanced PDF created")
	return 0
}

// newLogger builds the process logger from the log settings; they were validated with the config
func newLogger(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func options(cfg config.Config) book.Options {
	return book.Options{
		InputDir:    cfg.InputDir,
		Interim:     cfg.Interim,
		Output:      cfg.Output,
		Language:    cfg.Language,
		OutputType:  cfg.OutputType,
		Jobs:        cfg.Jobs,
		DPI:         cfg.DPI,
		Deskew:      cfg.Deskew,
		RotatePages: cfg.RotatePages,
		Sidecar:     cfg.Sidecar,
		HOCR:        cfg.HOCR,
		KeepInterim: cfg.KeepInterim,
		Overwrite:   cfg.Overwrite,
		Verify:      cfg.Verify,
		DryRun:      cfg.DryRun,
	}
}
