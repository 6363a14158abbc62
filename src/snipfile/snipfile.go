package snipfile

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// DefaultExtension is appended to paths that have no extension.
const DefaultExtension = ".png"

var (
	ErrEmptyPath         = errors.New("empty save path")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

type encodeFunc func(w io.Writer, img image.Image) error

var encoders = map[string]encodeFunc{
	".png":  png.Encode,
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
	".gif":  encodeGIF,
	".bmp":  bmp.Encode,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
}

func encodeGIF(w io.Writer, img image.Image) error {
	return gif.Encode(w, img, nil)
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// Extensions lists the extensions Save can encode, PNG first.
func Extensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff"}
}

// ResolvePath appends DefaultExtension when path has no extension. A
// trailing bare dot counts as none ("shot." becomes "shot.png"). Any other
// extension is kept as given, even one Save cannot encode.
func ResolvePath(path string) string {
	switch filepath.Ext(path) {
	case "":
		return path + DefaultExtension
	case ".":
		return path + DefaultExtension[1:]
	}
	return path
}

// Save writes img to path, encoded by the path's extension, and returns the
// path actually written.
func Save(img image.Image, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}
	if img == nil {
		return "", errors.New("no image to save")
	}

	path = ResolvePath(path)
	encode, ok := encoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Printf("Wrote %dx%d image to %s", img.Bounds().Dx(), img.Bounds().Dy(), path)
	return path, nil
}
