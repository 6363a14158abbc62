package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/kbinani/screenshot"
)

// ErrEmptyRegion is returned for rectangles that cover no pixels.
var ErrEmptyRegion = errors.New("region has zero area")

// Capture captures the entire virtual screen across all active displays
func Capture() (*image.RGBA, error) {
	bounds, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	return img, nil
}

// VirtualBounds returns the union of all active display bounds.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// GetDisplayBounds returns the bounds of the primary display
func GetDisplayBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	return screenshot.GetDisplayBounds(0), nil
}

// Live grabs regions straight from the screen.
type Live struct{}

// Capture captures a specific region of the screen
func (Live) Capture(r image.Rectangle) (*image.RGBA, error) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrEmptyRegion, r.Dx(), r.Dy())
	}
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return img, nil
}

// Frame crops regions out of a desktop image grabbed earlier, typically
// right before a selection overlay covered the screen.
type Frame struct {
	Image *image.RGBA
	// Origin is the screen position of the image's top-left pixel.
	Origin image.Point
}

// GrabFrame captures the whole virtual screen into a Frame.
func GrabFrame() (*Frame, error) {
	bounds, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	return &Frame{Image: img, Origin: bounds.Min}, nil
}

// Capture returns a copy of r, given in screen coordinates, clipped to the
// frame. The result's origin is (0,0).
func (f *Frame) Capture(r image.Rectangle) (*image.RGBA, error) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrEmptyRegion, r.Dx(), r.Dy())
	}
	if f == nil || f.Image == nil {
		return nil, errors.New("no frame captured")
	}
	clip := r.Sub(f.Origin).Intersect(f.Image.Bounds())
	if clip.Empty() {
		return nil, fmt.Errorf("%w: %v lies outside the screen", ErrEmptyRegion, r)
	}
	out := image.NewRGBA(image.Rect(0, 0, clip.Dx(), clip.Dy()))
	draw.Draw(out, out.Bounds(), f.Image, clip.Min, draw.Src)
	return out, nil
}
