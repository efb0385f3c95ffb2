package pages

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// imageExtensions lists the lower-cased extensions considered for binding
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// IsImageName reports whether name has one of the recognized image extensions (case-insensitive)
func IsImageName(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Scan lists dir (without recursing) and verifies every file with an image extension.
//
// Each file is opened, fully decoded and closed before the next one is looked at.
// Files that fail to decode end up in ScanResult.Skipped; they never abort the scan.
// Valid files are returned in directory order; use Plan to put them in page order.
func Scan(dir string) (ScanResult, error) {
	var result ScanResult

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, fmt.Errorf("%w: %s", ErrDirNotFound, dir)
		}
		return result, fmt.Errorf("failed to access input directory: %w", err)
	}
	if !info.IsDir() {
		return result, fmt.Errorf("%w: %s", ErrNotDir, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return result, fmt.Errorf("failed to read input directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !IsImageName(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		candidate, err := verifyImage(path)
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{Name: entry.Name(), Err: err})
			continue
		}
		result.Valid = append(result.Valid, candidate)
	}

	return result, nil
}

// verifyImage decodes the whole file so truncated scans are caught, not just bad headers
func verifyImage(path string) (Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return Candidate{}, fmt.Errorf("image has no pixels")
	}

	return Candidate{
		Path:   path,
		Name:   filepath.Base(path),
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
