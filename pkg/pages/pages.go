// Package pages discovers, validates and orders page-image scans for binding into a book.
//
// A scanned book usually arrives as a folder of images named after the page they hold
// (page1.png, page2.png, ..., page10.png). This package turns such a folder into a
// deterministic page order and tells the operator which page numbers seem to be missing.
//
// Key Features:
//
// - Scan a directory for PNG and JPEG files and verify that each one decodes
// - Report corrupt files by name without aborting the scan
// - Order pages with a natural sort, so "page2" comes before "page10"
// - Detect gaps in the numeric page sequence taken from the file names
//
// Main Functions:
//
// - Scan: Finds and verifies the candidate images in a directory
// - PageIndex: Extracts the page number from a file name (first run of digits)
// - NaturalKey: Builds the natural ordering key of a file name (all runs of digits)
// - Plan: Orders the verified images and computes the missing page numbers
package pages

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrDirNotFound is returned by Scan when the input directory does not exist.
	ErrDirNotFound = errors.New("input directory not found")

	// ErrNotDir is returned by Scan when the input path is not a directory.
	ErrNotDir = errors.New("input path is not a directory")

	// ErrNoImages is returned by Plan when there is nothing to bind.
	ErrNoImages = errors.New("no valid images found")
)

// Candidate is an image file that passed verification
type Candidate struct {
	Path   string // Path to the file
	Name   string // Base name, used for ordering and page numbers
	Format string // Decoded image format ("png", "jpeg")
	Width  int    // Width in pixels
	Height int    // Height in pixels
}

// Skipped is a candidate file that failed verification
type Skipped struct {
	Name string // Base name of the file
	Err  error  // Why the file could not be used
}

// ScanResult holds the outcome of scanning a directory
type ScanResult struct {
	Valid   []Candidate // Files that decoded as images, in directory order
	Skipped []Skipped   // Files with an image extension that failed to decode
}

// Page is a verified image with the page number found in its name
type Page struct {
	Candidate
	Index    int  // Page number taken from the name, valid when HasIndex
	HasIndex bool // False when the name contains no digits
}

// Gap is an inclusive range of page numbers that no file claims
type Gap struct {
	From int
	To   int
}

// Len returns the number of page numbers in the gap
func (g Gap) Len() int { return g.To - g.From + 1 }

// Sequence is the final page order together with the detected gaps
type Sequence struct {
	Pages []Page // Pages in binding order
	Gaps  []Gap  // Missing page numbers, ascending and non-overlapping
}

// Paths returns the page paths in binding order
func (s Sequence) Paths() []string {
	paths := make([]string, len(s.Pages))
	for i, p := range s.Pages {
		paths[i] = p.Path
	}
	return paths
}

// Missing expands the gaps into the full list of missing page numbers
func (s Sequence) Missing() []int {
	var missing []int
	for _, g := range s.Gaps {
		for i := g.From; i <= g.To; i++ {
			missing = append(missing, i)
		}
	}
	return missing
}

// MissingCount returns how many page numbers are missing without expanding the gaps
func (s Sequence) MissingCount() int {
	n := 0
	for _, g := range s.Gaps {
		n += g.Len()
	}
	return n
}

// String renders the gap as "7" or "7-9"
func (g Gap) String() string {
	if g.From == g.To {
		return strconv.Itoa(g.From)
	}
	return strconv.Itoa(g.From) + "-" + strconv.Itoa(g.To)
}

// FormatGaps renders gaps as a compact comma-separated list, e.g. "3, 7-9"
func FormatGaps(gaps []Gap) string {
	parts := make([]string, len(gaps))
	for i, g := range gaps {
		parts[i] = g.String()
	}
	return strings.Join(parts, ", ")
}
