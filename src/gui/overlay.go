package gui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

var outlineColor = color.NRGBA{R: 255, A: 255}

// overlay covers the screen with the frozen desktop under a translucent
// veil and draws the live selection outline.
type overlay struct {
	widget.BaseWidget
	shell *Shell

	background *canvas.Image
	veil       *canvas.Rectangle
	outline    *canvas.Rectangle
}

var (
	_ desktop.Mouseable = (*overlay)(nil)
	_ desktop.Hoverable = (*overlay)(nil)
	_ fyne.Draggable    = (*overlay)(nil)
)

func newOverlay(s *Shell, opacity float64) *overlay {
	o := &overlay{shell: s}

	o.background = canvas.NewImageFromImage(nil)
	o.background.FillMode = canvas.ImageFillStretch
	o.background.ScaleMode = canvas.ImageScalePixels

	o.veil = canvas.NewRectangle(color.NRGBA{A: uint8(opacity * 255)})

	o.outline = canvas.NewRectangle(color.Transparent)
	o.outline.StrokeColor = outlineColor
	o.outline.StrokeWidth = 1
	o.outline.Hide()

	o.ExtendBaseWidget(o)
	return o
}

func (o *overlay) setBackground(img image.Image) {
	o.background.Image = img
	o.background.Refresh()
}

func (o *overlay) CreateRenderer() fyne.WidgetRenderer {
	return &overlayRenderer{o: o}
}

func (o *overlay) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	o.shell.ctl.PointerDown(o.shell.toScreen(ev.Position))
}

func (o *overlay) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	o.shell.ctl.PointerUp(o.shell.toScreen(ev.Position))
}

func (o *overlay) MouseIn(*desktop.MouseEvent) {}

// MouseMoved ignores hover motion; only a held button moves the end corner.
func (o *overlay) MouseMoved(*desktop.MouseEvent) {}

func (o *overlay) MouseOut() {}

// Dragged receives pointer motion while the button is held.
func (o *overlay) Dragged(ev *fyne.DragEvent) {
	o.shell.ctl.PointerMove(o.shell.toScreen(ev.Position))
}

func (o *overlay) DragEnd() {}

type overlayRenderer struct {
	o *overlay
}

func (r *overlayRenderer) Layout(size fyne.Size) {
	r.o.background.Resize(size)
	r.o.background.Move(fyne.NewPos(0, 0))
	r.o.veil.Resize(size)
	r.o.veil.Move(fyne.NewPos(0, 0))
	r.layoutOutline()
}

// layoutOutline draws the raw drag rectangle between the two corners as
// they are, whichever way the drag went.
func (r *overlayRenderer) layoutOutline() {
	ctl := r.o.shell.ctl
	start, end, ok := ctl.Corners()
	if !ok || !ctl.Active() {
		r.o.outline.Hide()
		return
	}
	a := r.o.shell.toOverlay(start)
	b := r.o.shell.toOverlay(end)
	r.o.outline.Move(fyne.NewPos(min(a.X, b.X), min(a.Y, b.Y)))
	r.o.outline.Resize(fyne.NewSize(abs32(b.X-a.X), abs32(b.Y-a.Y)))
	r.o.outline.Show()
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func (r *overlayRenderer) MinSize() fyne.Size { return fyne.NewSize(1, 1) }

func (r *overlayRenderer) Refresh() {
	r.layoutOutline()
	r.o.background.Refresh()
	r.o.outline.Refresh()
}

func (r *overlayRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.o.background, r.o.veil, r.o.outline}
}

func (r *overlayRenderer) Destroy() {}
