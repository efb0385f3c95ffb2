package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
)

// OCRmyPDF runs the ocrmypdf command line tool over the interim PDF
type OCRmyPDF struct {
	Binary string
	runner Runner
	log    logrus.FieldLogger
}

// NewOCRmyPDF returns the engine running "ocrmypdf" from PATH through runner
func NewOCRmyPDF(runner Runner, log logrus.FieldLogger) *OCRmyPDF {
	return &OCRmyPDF{Binary: "ocrmypdf", runner: runner, log: log}
}

func (e *OCRmyPDF) Name() string { return "ocrmypdf" }

// Args builds the ocrmypdf command line for job
func (e *OCRmyPDF) Args(job Job) []string {
	jobs := job.Jobs
	if jobs < 1 {
		jobs = 1
	}
	args := []string{"--force-ocr", "--optimize", "3"}
	if job.Deskew {
		args = append(args, "--deskew", "--clean", "--clean-final")
	}
	if job.RotatePages {
		args = append(args, "--rotate-pages", "--rotate-pages-threshold", "5")
	}
	args = append(args,
		"--language", job.Language,
		"--output-type", job.OutputType,
		"--jobs", strconv.Itoa(jobs),
	)
	if job.Sidecar != "" {
		args = append(args, "--sidecar", job.Sidecar)
	}
	return append(args, job.Interim, job.Output)
}

// Run implements Engine
func (e *OCRmyPDF) Run(ctx context.Context, job Job) error {
	if job.HOCR != "" {
		e.log.Warn("ocrmypdf does not write hOCR; ignoring the hOCR output setting")
	}
	if err := e.runner.Run(ctx, e.Binary, e.Args(job), nil); err != nil {
		return fmt.Errorf("ocrmypdf failed: %w", err)
	}
	return nil
}
