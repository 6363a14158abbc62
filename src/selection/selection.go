package selection

import (
	"errors"
	"fmt"
	"image"
	"log"
)

// InstructionText is shown while a selection gesture is in progress.
const InstructionText = "Click and drag to select the area to snip. Use arrow keys to adjust."

var (
	ErrNoSelection = errors.New("no selection to capture")
	ErrNoImage     = errors.New("no captured image to save")
)

// Point is a screen position in pixels.
type Point struct {
	X int
	Y int
}

// Rect is a rectangle described by its edges. A normalized Rect has
// Left <= Right and Top <= Bottom.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// RectFromCorners builds the normalized rectangle spanned by two arbitrary corners.
func RectFromCorners(a, b Point) Rect {
	return Rect{
		Left:   min(a.X, b.X),
		Top:    min(a.Y, b.Y),
		Right:  max(a.X, b.X),
		Bottom: max(a.Y, b.Y),
	}
}

// Normalize returns r with its edges ordered.
func (r Rect) Normalize() Rect {
	return RectFromCorners(Point{r.Left, r.Top}, Point{r.Right, r.Bottom})
}

func (r Rect) Width() int { return r.Right - r.Left }
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Bounds converts r to an image.Rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// Direction is an arrow-key nudge.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// offset returns the one-pixel shift for d.
func (d Direction) offset() (dx, dy int) {
	switch d {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	}
	return 0, 0
}

// Controls is the enabled state of the three shell buttons.
type Controls struct {
	Start  bool
	Save   bool
	Resnip bool
}

// Presenter receives UI signals from the Controller. All calls happen on
// the UI goroutine.
type Presenter interface {
	EnterOverlay()
	ExitOverlay()
	SetControls(c Controls)
	Redraw()
	ShowImage(img *image.RGBA)
	ClearImage()
	ShowStatus(msg string)
}

// Capturer grabs a screen region.
type Capturer interface {
	Capture(r image.Rectangle) (*image.RGBA, error)
}

// Saver persists an image and returns the path actually written.
type Saver interface {
	Save(img image.Image, path string) (string, error)
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(img image.Image, path string) (string, error)

func (f SaverFunc) Save(img image.Image, path string) (string, error) { return f(img, path) }

// Controller owns the selection gesture state and the captured image.
// It is not safe for concurrent use; drive it from the UI goroutine only.
type Controller struct {
	presenter Presenter
	capturer  Capturer
	saver     Saver

	active   bool
	start    *Point
	end      *Point
	selected *Rect
	image    *image.RGBA
	controls Controls
}

// NewController wires a controller to its collaborators and applies the
// initial control state.
func NewController(p Presenter, c Capturer, s Saver) *Controller {
	ctl := &Controller{
		presenter: p,
		capturer:  c,
		saver:     s,
	}
	ctl.setControls(Controls{Start: true})
	return ctl
}

// SetCapturer swaps the capture adapter, e.g. for a freshly grabbed frame.
func (c *Controller) SetCapturer(cp Capturer) { c.capturer = cp }

// Begin starts a new selection gesture, discarding any previous image.
func (c *Controller) Begin() {
	c.active = true
	c.start = nil
	c.end = nil
	c.selected = nil
	c.image = nil

	c.presenter.ClearImage()
	c.setControls(Controls{})
	c.presenter.ShowStatus(InstructionText)
	c.presenter.EnterOverlay()
	log.Printf("Selection started")
}

func (c *Controller) PointerDown(x, y int) {
	if !c.active {
		return
	}
	c.start = &Point{X: x, Y: y}
}

func (c *Controller) PointerMove(x, y int) {
	if !c.active {
		return
	}
	c.end = &Point{X: x, Y: y}
	c.presenter.Redraw()
}

// PointerUp finalizes the gesture and captures the normalized region.
func (c *Controller) PointerUp(x, y int) {
	if !c.active {
		return
	}
	c.end = &Point{X: x, Y: y}
	c.active = false

	if c.start != nil {
		r := RectFromCorners(*c.start, *c.end)
		c.selected = &r
	}
	c.presenter.Redraw()

	img, err := c.capture()
	c.presenter.ExitOverlay()
	if err != nil {
		log.Printf("Capture failed: %v", err)
		c.presenter.ShowStatus(fmt.Sprintf("Capture failed: %v", err))
		c.setControls(Controls{Start: true})
		return
	}

	c.image = img
	c.presenter.ShowImage(img)
	c.setControls(Controls{Save: true, Resnip: true})
	log.Printf("Captured region %s (%dx%d)", c.selected, img.Bounds().Dx(), img.Bounds().Dy())
}

func (c *Controller) capture() (*image.RGBA, error) {
	if c.selected == nil {
		return nil, ErrNoSelection
	}
	if c.capturer == nil {
		return nil, errors.New("no capture source configured")
	}
	return c.capturer.Capture(c.selected.Bounds())
}

// Nudge shifts both corners one pixel in d. It is a no-op unless a
// gesture is active with both corners set.
func (c *Controller) Nudge(d Direction) {
	if !c.active || c.start == nil || c.end == nil {
		return
	}
	dx, dy := d.offset()
	c.start.X += dx
	c.start.Y += dy
	c.end.X += dx
	c.end.Y += dy
	c.presenter.Redraw()
}

// Save persists the held image. On failure the image and Save stay available.
func (c *Controller) Save(path string) (string, error) {
	if c.image == nil {
		return "", ErrNoImage
	}
	written, err := c.saver.Save(c.image, path)
	if err != nil {
		log.Printf("Save failed for %q: %v", path, err)
		c.presenter.ShowStatus(fmt.Sprintf("Failed to save snip: %v", err))
		return "", err
	}
	c.presenter.ShowStatus(fmt.Sprintf("Snip saved as '%s'", written))
	c.setControls(Controls{Start: true, Resnip: true})
	log.Printf("Snip saved to %s", written)
	return written, nil
}

func (c *Controller) setControls(ctl Controls) {
	c.controls = ctl
	c.presenter.SetControls(ctl)
}

// Active reports whether a selection gesture is in progress.
func (c *Controller) Active() bool { return c.active }

// Corners returns the raw drag corners; ok is false until both are set.
func (c *Controller) Corners() (start, end Point, ok bool) {
	if c.start == nil || c.end == nil {
		return Point{}, Point{}, false
	}
	return *c.start, *c.end, true
}

// Selection returns the last finalized rectangle.
func (c *Controller) Selection() (Rect, bool) {
	if c.selected == nil {
		return Rect{}, false
	}
	return *c.selected, true
}

func (c *Controller) Image() *image.RGBA { return c.image }

func (c *Controller) Controls() Controls { return c.controls }
