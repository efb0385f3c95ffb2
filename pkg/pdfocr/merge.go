package pdfocr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"strings"

	"codeberg.org/go-pdf/fpdf"
)

// Image is a page image to place in the interim PDF
type Image struct {
	Path   string // File to embed
	Format string // Decoded format ("png", "jpeg")
	Width  int    // Width in pixels
	Height int    // Height in pixels
}

// MergeImages writes a PDF with one page per image, in order, to w.
//
// Each page is exactly the size of its image at dpi, so nothing is scaled or cropped.
// JPEG data is embedded as is and PNG pixel data is stored losslessly; no image is
// recompressed with a lossy codec. PNGs that fpdf cannot embed directly (interlaced, or
// 16-bit with alpha) are re-encoded from their decoded pixels first.
func MergeImages(w io.Writer, images []Image, dpi float64) error {
	if len(images) == 0 {
		return fmt.Errorf("no images provided")
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("scanbook", true)

	for i, img := range images {
		if img.Width <= 0 || img.Height <= 0 {
			return fmt.Errorf("image %d (%s) has no size", i+1, img.Path)
		}
		pw := pointsFromPixels(float64(img.Width), dpi)
		ph := pointsFromPixels(float64(img.Height), dpi)

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: pw, Ht: ph})
		opts := fpdf.ImageOptions{ImageType: strings.ToUpper(img.Format)}
		if opts.ImageType == "PNG" {
			if err := registerPNG(pdf, img.Path, opts); err != nil {
				return fmt.Errorf("failed to add image %d (%s): %w", i+1, img.Path, err)
			}
		}
		pdf.ImageOptions(img.Path, 0, 0, pw, ph, false, opts, 0, "")
		if pdf.Err() {
			return fmt.Errorf("failed to add image %d (%s): %w", i+1, img.Path, pdf.Error())
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return nil
}

// registerPNG registers a re-encoded copy of path under its own name when fpdf cannot read
// the file as it is. ImageOptions then finds the registered copy instead of the file.
func registerPNG(pdf *fpdf.Fpdf, path string, opts fpdf.ImageOptions) error {
	hdr, err := readPNGHeader(path)
	if err != nil {
		return err
	}
	if !hdr.needsReencode() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	src, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	// fpdf splits alpha from color assuming 8-bit samples
	if hdr.depth > 8 && hdr.hasAlpha() {
		b := src.Bounds()
		dst := image.NewNRGBA(b)
		draw.Draw(dst, b, src, b.Min, draw.Src)
		src = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return fmt.Errorf("failed to re-encode image: %w", err)
	}
	pdf.RegisterImageOptionsReader(path, opts, &buf)
	return pdf.Error()
}

// pngHeader holds the IHDR fields that decide whether fpdf can embed a PNG
type pngHeader struct {
	depth     byte
	colorType byte
	interlace byte
}

func (h pngHeader) hasAlpha() bool { return h.colorType == 4 || h.colorType == 6 }

func (h pngHeader) needsReencode() bool {
	return h.interlace != 0 || (h.depth > 8 && h.hasAlpha())
}

// readPNGHeader reads the IHDR chunk, which the format requires to come first
func readPNGHeader(path string) (pngHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return pngHeader{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	// signature (8), chunk length (4), "IHDR" (4), width (4), height (4), depth, color type,
	// compression, filter, interlace
	var b [29]byte
	if _, err := io.ReadFull(f, b[:]); err != nil {
		return pngHeader{}, fmt.Errorf("failed to read PNG header: %w", err)
	}
	if string(b[:8]) != "\x89PNG\r\n\x1a\n" || string(b[12:16]) != "IHDR" || binary.BigEndian.Uint32(b[8:12]) != 13 {
		return pngHeader{}, fmt.Errorf("not a PNG file")
	}
	return pngHeader{depth: b[24], colorType: b[25], interlace: b[28]}, nil
}
