package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/gardar/scanbook/pkg/hocr"
	"github.com/gardar/scanbook/pkg/pages"
	"github.com/gardar/scanbook/pkg/pdfocr"
)

// fakeRunner records invocations and plays back canned output
type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	stdout string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string, stdout io.Writer) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if stdout != nil {
		io.WriteString(stdout, f.stdout)
	}
	return f.err
}

// halfSizeRecognizer reports each page at half the image resolution with the
// file's base name as its only word
type halfSizeRecognizer struct {
	fail string
}

func (r halfSizeRecognizer) Recognize(_ context.Context, in Input) (hocr.Document, error) {
	if in.Page.Name == r.fail {
		return hocr.Document{}, errors.New("unreadable page")
	}
	w, h := float64(in.Page.Width)/2, float64(in.Page.Height)/2
	text := strings.TrimSuffix(in.Page.Name, filepath.Ext(in.Page.Name))
	box := hocr.NewBoundingBox(10, 10, w-10, 30)
	return hocr.Document{Pages: []hocr.Page{{
		ID:    "page_1",
		BBox:  hocr.NewBoundingBox(0, 0, w, h),
		Lines: []hocr.Line{{ID: "line_1_1", BBox: box, Words: []hocr.Word{{ID: "word_1_1", Text: text, BBox: box}}}},
	}}}, nil
}

func quietLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

// writeBook writes n blank PNG pages plus their interim PDF and returns the job for them
func writeBook(t *testing.T, n int) Job {
	t.Helper()
	dir := t.TempDir()
	job := Job{
		Interim:    filepath.Join(dir, "interim.pdf"),
		Output:     filepath.Join(dir, "book.pdf"),
		Language:   "eng",
		OutputType: "pdf",
		Jobs:       2,
		DPI:        100,
	}

	var images []pdfocr.Image
	for i := 1; i <= n; i++ {
		name := "page" + string(rune('0'+i)) + ".png"
		path := filepath.Join(dir, name)
		img := image.NewGray(image.Rect(0, 0, 200, 300))
		img.Set(5, 5, color.White)
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
		c := pages.Candidate{Path: path, Name: name, Format: "png", Width: 200, Height: 300}
		job.Pages = append(job.Pages, pages.Page{Candidate: c, Index: i, HasIndex: true})
		images = append(images, pdfocr.Image{Path: path, Format: "png", Width: 200, Height: 300})
	}

	f, err := os.Create(job.Interim)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := pdfocr.MergeImages(f, images, job.DPI); err != nil {
		t.Fatalf("merge: %v", err)
	}
	return job
}

func TestOCRmyPDFArgs(t *testing.T) {
	job := Job{
		Interim:     "temp_merged.pdf",
		Output:      "book.pdf",
		Language:    "eng+isl",
		OutputType:  "pdfa",
		Jobs:        4,
		Deskew:      true,
		RotatePages: true,
	}
	e := NewOCRmyPDF(&fakeRunner{}, quietLogger())

	want := []string{
		"--force-ocr", "--optimize", "3",
		"--deskew", "--clean", "--clean-final",
		"--rotate-pages", "--rotate-pages-threshold", "5",
		"--language", "eng+isl", "--output-type", "pdfa", "--jobs", "4",
		"temp_merged.pdf", "book.pdf",
	}
	if got := e.Args(job); !reflect.DeepEqual(got, want) {
		t.Fatalf("args =\n%q\nwant\n%q", got, want)
	}

	job.Deskew, job.RotatePages, job.Jobs, job.Sidecar = false, false, 0, "book.txt"
	want = []string{
		"--force-ocr", "--optimize", "3",
		"--language", "eng+isl", "--output-type", "pdfa", "--jobs", "1",
		"--sidecar", "book.txt",
		"temp_merged.pdf", "book.pdf",
	}
	if got := e.Args(job); !reflect.DeepEqual(got, want) {
		t.Fatalf("args =\n%q\nwant\n%q", got, want)
	}
}

func TestOCRmyPDFRun(t *testing.T) {
	runner := &fakeRunner{}
	e := NewOCRmyPDF(runner, quietLogger())
	job := Job{Interim: "in.pdf", Output: "out.pdf", Language: "eng", OutputType: "pdf", Jobs: 2}

	if err := e.Run(context.Background(), job); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(runner.calls) != 1 || runner.calls[0][0] != "ocrmypdf" {
		t.Fatalf("calls = %q", runner.calls)
	}

	runner.err = errors.Join(errors.New("exit status 2"), errors.New("InputFileError: not a PDF"))
	err := e.Run(context.Background(), job)
	if err == nil || !strings.Contains(err.Error(), "InputFileError") {
		t.Fatalf("err = %v", err)
	}
}

func TestTesseract(t *testing.T) {
	page := pages.Page{Candidate: pages.Candidate{Path: "/scans/p1.png", Name: "p1.png"}}
	runner := &fakeRunner{stdout: `<html><body><div class='ocr_page' title='bbox 0 0 100 50'>
		<span class='ocr_line' title='bbox 1 1 90 20'><span class='ocrx_word' title='bbox 1 1 40 20; x_wconf 90'>Hi</span></span>
		</div></body></html>`}
	rec := NewTesseract(runner)

	doc, err := rec.Recognize(context.Background(), Input{Page: page, Language: "eng+isl", DPI: 300})
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	want := []string{"tesseract", "/scans/p1.png", "stdout", "-l", "eng+isl", "--dpi", "300", "hocr"}
	if !reflect.DeepEqual(runner.calls[0], want) {
		t.Fatalf("call = %q", runner.calls[0])
	}
	if words := doc.Pages[0].Words(); len(words) != 1 || words[0].Text != "Hi" {
		t.Fatalf("words = %+v", words)
	}

	runner.stdout = "garbage"
	if _, err := rec.Recognize(context.Background(), Input{Page: page}); err == nil {
		t.Fatal("expected error for output without pages")
	}
}

func TestHOCRRun(t *testing.T) {
	job := writeBook(t, 2)
	dir := filepath.Dir(job.Output)
	job.Sidecar = filepath.Join(dir, "book.txt")
	job.HOCR = filepath.Join(dir, "book.hocr")

	e := NewHOCR("fake", halfSizeRecognizer{}, quietLogger())
	if err := e.Run(context.Background(), job); err != nil {
		t.Fatalf("run: %v", err)
	}

	res, err := pdfocr.Verify(job.Output)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Pages != 2 {
		t.Fatalf("pages = %d", res.Pages)
	}
	if _, err := os.Stat(job.Interim); err != nil {
		t.Fatalf("interim removed by engine: %v", err)
	}

	text, err := os.ReadFile(job.Sidecar)
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "page1\n\fpage2\n" {
		t.Fatalf("sidecar = %q", text)
	}

	data, err := os.ReadFile(job.HOCR)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := hocr.Parse(data)
	if err != nil {
		t.Fatalf("parse hOCR: %v", err)
	}
	if len(doc.Pages) != 2 || doc.Pages[1].ImageName != "page2.png" {
		t.Fatalf("hOCR pages = %+v", doc.Pages)
	}
	if doc.Pages[0].BBox != hocr.NewBoundingBox(0, 0, 200, 300) {
		t.Fatalf("page box not fitted to image: %v", doc.Pages[0].BBox)
	}
	if w := doc.Pages[0].Words()[0]; w.BBox != hocr.NewBoundingBox(20, 20, 180, 60) {
		t.Fatalf("word box not fitted to image: %v", w.BBox)
	}
}

func TestHOCRRunRecognizerFailure(t *testing.T) {
	job := writeBook(t, 3)
	e := NewHOCR("fake", halfSizeRecognizer{fail: "page2.png"}, quietLogger())

	err := e.Run(context.Background(), job)
	if err == nil || !strings.Contains(err.Error(), "page 2 (page2.png)") {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(job.Output); !os.IsNotExist(err) {
		t.Fatal("output written despite failure")
	}
}

func TestNew(t *testing.T) {
	opts := Options{Logger: quietLogger(), Runner: &fakeRunner{}}

	e, err := New(context.Background(), "tesseract", opts)
	if err != nil || e.Name() != "tesseract" {
		t.Fatalf("tesseract engine = %v, %v", e, err)
	}
	if _, err := New(context.Background(), "abbyy", opts); err == nil || !strings.Contains(err.Error(), "ocrmypdf") {
		t.Fatalf("err = %v", err)
	}
	if _, err := New(context.Background(), "docai", opts); err == nil {
		t.Fatal("docai engine built without a processor")
	}
}

func TestJobLanguages(t *testing.T) {
	if got := (Job{Language: "eng+ isl+"}).Languages(); !reflect.DeepEqual(got, []string{"eng", "isl"}) {
		t.Fatalf("languages = %q", got)
	}
}

func TestExecRunner(t *testing.T) {
	r := ExecRunner{Logger: quietLogger()}

	err := r.Run(context.Background(), "scanbook-no-such-tool", nil, nil)
	if !errors.Is(err, exec.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no shell available")
	}
	var out bytes.Buffer
	if err := r.Run(context.Background(), "sh", []string{"-c", "echo out; echo noise >&2"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "out\n" {
		t.Fatalf("stdout = %q", out.String())
	}

	err = r.Run(context.Background(), "sh", []string{"-c", "echo broken input >&2; exit 3"}, nil)
	if err == nil || !strings.Contains(err.Error(), "broken input") {
		t.Fatalf("err = %v", err)
	}
}
