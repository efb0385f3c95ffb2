package pages

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

// writePNG writes a small valid PNG to dir/name
func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// writeJPEG writes a small valid JPEG to dir/name
func writeJPEG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func names(seq Sequence) []string {
	out := make([]string, len(seq.Pages))
	for i, p := range seq.Pages {
		out[i] = p.Name
	}
	return out
}

func candidates(list ...string) []Candidate {
	out := make([]Candidate, len(list))
	for i, n := range list {
		out[i] = Candidate{Path: filepath.Join("scans", n), Name: n}
	}
	return out
}

func TestPageIndex(t *testing.T) {
	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{"page1.png", 1, true},
		{"page010.png", 10, true},
		{"scan_2024_007.png", 2024, true},
		{"42", 42, true},
		{"cover.png", 0, false},
		{"", 0, false},
		{"p99999999999999999999999.png", 0, false},
		{"page٣.png", 3, true},
		{"p١٢_3.png", 12, true},
		{"p１０.png", 10, true},
		{"𝟗x", 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PageIndex(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("PageIndex(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNaturalKeySegments(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"page10.png", Key{{Text: "page"}, {Digits: "10", IsNum: true}, {Text: ".png"}}},
		{"10abc", Key{{Text: ""}, {Digits: "10", IsNum: true}, {Text: "abc"}}},
		{"abc007", Key{{Text: "abc"}, {Digits: "7", IsNum: true}, {Text: ""}}},
		{"Cover.PNG", Key{{Text: "cover.png"}}},
		{"page٣.png", Key{{Text: "page٣.png"}}},
		{"p0", Key{{Text: "p"}, {Digits: "", IsNum: true}, {Text: ""}}},
		{"", Key{{Text: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NaturalKey(tt.name); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("NaturalKey(%q) = %v; want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"page2.png", "page10.png", -1},
		{"page10.png", "page2.png", 1},
		{"Page2.png", "page2.png", 0},
		{"page01.png", "page1.png", 0},
		{"back.png", "cover.png", -1},
		{"page", "page1", -1},
		{"img99999999999999999999.png", "img100000000000000000000.png", -1},
		{"2.png", "a.png", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			if got := Compare(NaturalKey(tt.a), NaturalKey(tt.b)); got != tt.want {
				t.Fatalf("Compare(%q, %q) = %d; want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNaturalOrderDiffersFromLexical(t *testing.T) {
	list := []string{"page10.png", "page2.png", "page1.png"}

	lexical := append([]string(nil), list...)
	sort.Strings(lexical)
	if lexical[1] != "page10.png" {
		t.Fatalf("lexical sort unexpectedly natural: %v", lexical)
	}

	seq, err := Plan(candidates(list...))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	want := []string{"page1.png", "page2.png", "page10.png"}
	if got := names(seq); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v; want %v", got, want)
	}
}

func TestPlanReportsGap(t *testing.T) {
	seq, err := Plan(candidates("page5.png", "page1.png", "page4.png", "page2.png"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if got, want := names(seq), []string{"page1.png", "page2.png", "page4.png", "page5.png"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v; want %v", got, want)
	}
	if got := seq.Missing(); !reflect.DeepEqual(got, []int{3}) {
		t.Fatalf("missing = %v; want [3]", got)
	}
}

func TestPlanGapRanges(t *testing.T) {
	seq, err := Plan(candidates("p2.png", "p9.png", "p6.png", "p6b.png"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	want := []Gap{{From: 3, To: 5}, {From: 7, To: 8}}
	if !reflect.DeepEqual(seq.Gaps, want) {
		t.Fatalf("gaps = %v; want %v", seq.Gaps, want)
	}
	if got := FormatGaps(seq.Gaps); got != "3-5, 7-8" {
		t.Fatalf("FormatGaps = %q", got)
	}
	if seq.MissingCount() != 5 || len(seq.Missing()) != 5 {
		t.Fatalf("missing count = %d, expanded %v", seq.MissingCount(), seq.Missing())
	}
}

func TestPlanWithoutDigits(t *testing.T) {
	seq, err := Plan(candidates("cover.png", "Back.png", "appendix.jpg"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(seq.Gaps) != 0 {
		t.Fatalf("gaps = %v; want none", seq.Gaps)
	}
	if got, want := names(seq), []string{"appendix.jpg", "Back.png", "cover.png"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v; want %v", got, want)
	}
}

func TestPlanDigitlessNamesDoNotAffectGaps(t *testing.T) {
	seq, err := Plan(candidates("cover.png", "page1.png", "page3.png", "back.png"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(seq.Pages) != 4 {
		t.Fatalf("pages = %v; want all 4", names(seq))
	}
	if got := seq.Missing(); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("missing = %v; want [2]", got)
	}
	for _, p := range seq.Pages {
		if (p.Name == "cover.png" || p.Name == "back.png") && p.HasIndex {
			t.Fatalf("%s should have no page number", p.Name)
		}
	}
}

func TestPlanDuplicatesAndFirstRunRule(t *testing.T) {
	// Gap detection looks at the first run only: 2024 for every file here
	seq, err := Plan(candidates("scan_2024_007.png", "scan_2024_001.png", "scan_2024_003.png"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(seq.Gaps) != 0 {
		t.Fatalf("gaps = %v; want none (duplicates are not flagged)", seq.Gaps)
	}
	want := []string{"scan_2024_001.png", "scan_2024_003.png", "scan_2024_007.png"}
	if got := names(seq); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v; want %v", got, want)
	}
	if seq.Pages[0].Index != 2024 {
		t.Fatalf("index = %d; want 2024", seq.Pages[0].Index)
	}
}

func TestPlanTieBreakIsDeterministic(t *testing.T) {
	a, err := Plan(candidates("p1.png", "p01.png", "P1.png"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	b, err := Plan(candidates("P1.png", "p1.png", "p01.png"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !reflect.DeepEqual(names(a), names(b)) {
		t.Fatalf("order depends on input order: %v vs %v", names(a), names(b))
	}
	if got, want := names(a), []string{"P1.png", "p01.png", "p1.png"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v; want %v", got, want)
	}
}

func TestPlanEmpty(t *testing.T) {
	_, err := Plan(nil)
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("err = %v; want ErrNoImages", err)
	}
}

func TestScanSkipsCorruptImage(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "page1.png")
	writeJPEG(t, dir, "page2.JPG")
	if err := os.WriteFile(filepath.Join(dir, "page3.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(res.Valid) != 2 {
		t.Fatalf("valid = %v; want 2 files", res.Valid)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Name != "page3.png" || res.Skipped[0].Err == nil {
		t.Fatalf("skipped = %+v; want page3.png", res.Skipped)
	}
}

func TestScanTruncatedImage(t *testing.T) {
	dir := t.TempDir()
	full := writePNG(t, dir, "page1.png")
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "page2.png"), data[:len(data)/2], 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(res.Valid) != 1 || len(res.Skipped) != 1 || res.Skipped[0].Name != "page2.png" {
		t.Fatalf("valid=%v skipped=%+v", res.Valid, res.Skipped)
	}
}

func TestScanIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "page1.png")
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644)
	os.Mkdir(filepath.Join(dir, "sub.png"), 0o755)
	writePNG(t, dir, "PAGE2.PNG")
	writeJPEG(t, dir, "page3.jpeg")

	res, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(res.Valid) != 3 || len(res.Skipped) != 0 {
		t.Fatalf("valid=%v skipped=%+v", res.Valid, res.Skipped)
	}
	for _, c := range res.Valid {
		if c.Width == 0 || c.Height == 0 || c.Format == "" {
			t.Fatalf("candidate missing image details: %+v", c)
		}
	}
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrDirNotFound) {
		t.Fatalf("err = %v; want ErrDirNotFound", err)
	}
}

func TestScanFileInsteadOfDir(t *testing.T) {
	path := writePNG(t, t.TempDir(), "page1.png")
	_, err := Scan(path)
	if !errors.Is(err, ErrNotDir) {
		t.Fatalf("err = %v; want ErrNotDir", err)
	}
}

func TestScanAndPlanAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"page10.png", "page2.png", "page1.png", "cover.png", "page7.jpg"} {
		if filepath.Ext(n) == ".jpg" {
			writeJPEG(t, dir, n)
		} else {
			writePNG(t, dir, n)
		}
	}

	run := func() Sequence {
		res, err := Scan(dir)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		seq, err := Plan(res.Valid)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		return seq
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ:\n%+v\n%+v", first, second)
	}
	want := []string{"cover.png", "page1.png", "page2.png", "page7.jpg", "page10.png"}
	if got := names(first); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v; want %v", got, want)
	}
	if got := first.Missing(); !reflect.DeepEqual(got, []int{3, 4, 5, 6, 8, 9}) {
		t.Fatalf("missing = %v", got)
	}
}

func TestScanEmptyDirThenPlan(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte{0xff, 0xd8}, 0o644)

	res, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := Plan(res.Valid); !errors.Is(err, ErrNoImages) {
		t.Fatalf("err = %v; want ErrNoImages", err)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("skipped = %+v", res.Skipped)
	}
}
