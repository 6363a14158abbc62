package gui

import (
	"fmt"
	"image"
	"log"
	"os"

	"screen-snip/src/screenshot"
	"screen-snip/src/selection"
	"screen-snip/src/snipfile"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	Title       = "Snipping Tool"
	WelcomeText = "Press 'Start Snip' to capture a portion of the screen"

	maxPreviewWidth  = 800
	maxPreviewHeight = 600
)

// Options configures the shell. Zero values fall back to live screen access.
type Options struct {
	OverlayOpacity float64
	SaveDir        string
	WindowSize     fyne.Size

	// GrabFrame freezes the desktop when the overlay opens.
	GrabFrame func() (*screenshot.Frame, error)
	// DisplayBounds reports the screen area the full-screen overlay covers.
	DisplayBounds func() (image.Rectangle, error)
	// Save persists a captured image.
	Save selection.SaverFunc
}

// Shell is the snipping window. It owns the selection controller and
// forwards pointer and keyboard input to it.
type Shell struct {
	app     fyne.App
	window  fyne.Window
	opts    Options
	ctl     *selection.Controller
	overlay *overlay

	overlayWin fyne.Window
	status     *widget.Label
	preview    *canvas.Image
	startBtn   *widget.Button
	saveBtn    *widget.Button
	resnipBtn  *widget.Button

	// screen position of the overlay's top-left corner
	origin image.Point
}

// New builds the main window and the hidden overlay window.
func New(a fyne.App, opts Options) *Shell {
	if opts.GrabFrame == nil {
		opts.GrabFrame = screenshot.GrabFrame
	}
	if opts.DisplayBounds == nil {
		opts.DisplayBounds = screenshot.GetDisplayBounds
	}
	if opts.Save == nil {
		opts.Save = snipfile.Save
	}
	if opts.OverlayOpacity <= 0 || opts.OverlayOpacity > 1 {
		opts.OverlayOpacity = 0.3
	}
	if opts.WindowSize.Width <= 0 || opts.WindowSize.Height <= 0 {
		opts.WindowSize = fyne.NewSize(300, 200)
	}

	s := &Shell{
		app:  a,
		opts: opts,
	}

	a.SetIcon(Icon)
	s.window = a.NewWindow(Title)
	s.window.SetIcon(Icon)
	s.status = widget.NewLabel(WelcomeText)
	s.status.Alignment = fyne.TextAlignCenter
	s.status.Wrapping = fyne.TextWrapWord

	s.preview = canvas.NewImageFromImage(nil)
	s.preview.FillMode = canvas.ImageFillContain
	s.preview.Hide()

	s.startBtn = widget.NewButton("Start Snip", s.StartSnip)
	s.saveBtn = widget.NewButton("Save Snip", s.showSaveDialog)
	s.resnipBtn = widget.NewButton("Resnip", s.StartSnip)
	s.ctl = selection.NewController(s, nil, opts.Save)

	s.window.SetContent(container.NewBorder(
		nil,
		container.NewVBox(s.startBtn, s.saveBtn, s.resnipBtn),
		nil, nil,
		container.NewStack(s.status, s.preview),
	))
	s.window.Resize(opts.WindowSize)
	s.window.SetMaster()

	s.overlayWin = a.NewWindow(Title + " - Select Region")
	s.overlayWin.SetPadded(false)
	s.overlay = newOverlay(s, opts.OverlayOpacity)
	s.overlayWin.SetContent(s.overlay)
	s.overlayWin.Canvas().SetOnTypedKey(s.typedKey)
	s.overlayWin.SetCloseIntercept(func() {})

	s.setupTray()
	return s
}

// Window returns the main window.
func (s *Shell) Window() fyne.Window { return s.window }

// Controller exposes the selection controller driving this shell.
func (s *Shell) Controller() *selection.Controller { return s.ctl }

// ShowAndRun shows the main window and runs the application loop.
func (s *Shell) ShowAndRun() {
	s.window.ShowAndRun()
}

// StartSnip begins a new selection unless one is already running. It must
// run on the UI goroutine; use fyne.Do from other goroutines.
func (s *Shell) StartSnip() {
	if s.ctl.Active() {
		return
	}
	s.ctl.Begin()
}

// RequestSnip starts a selection on behalf of the hotkey or another launch,
// but only while the Start Snip control is enabled.
func (s *Shell) RequestSnip() bool {
	if !s.ctl.Controls().Start {
		log.Printf("Snip request ignored: Start Snip is disabled")
		return false
	}
	s.StartSnip()
	return true
}

// ShowWindow brings the main window to the front.
func (s *Shell) ShowWindow() {
	s.window.Show()
	s.window.RequestFocus()
}

func (s *Shell) setupTray() {
	desk, ok := s.app.(desktop.App)
	if !ok {
		return
	}
	desk.SetSystemTrayIcon(Icon)
	desk.SetSystemTrayMenu(fyne.NewMenu(Title,
		fyne.NewMenuItem("Start Snip", s.StartSnip),
		fyne.NewMenuItem("Show Window", s.ShowWindow),
	))
}

func (s *Shell) typedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyLeft:
		s.ctl.Nudge(selection.Left)
	case fyne.KeyRight:
		s.ctl.Nudge(selection.Right)
	case fyne.KeyUp:
		s.ctl.Nudge(selection.Up)
	case fyne.KeyDown:
		s.ctl.Nudge(selection.Down)
	}
}

// toScreen converts an overlay position to screen pixels.
func (s *Shell) toScreen(p fyne.Position) (int, int) {
	scale := s.overlayWin.Canvas().Scale()
	return s.origin.X + int(p.X*scale), s.origin.Y + int(p.Y*scale)
}

// toOverlay converts screen pixels to an overlay position.
func (s *Shell) toOverlay(p selection.Point) fyne.Position {
	scale := s.overlayWin.Canvas().Scale()
	return fyne.NewPos(float32(p.X-s.origin.X)/scale, float32(p.Y-s.origin.Y)/scale)
}

// EnterOverlay freezes the desktop and covers the screen with the
// semi-transparent selection overlay.
func (s *Shell) EnterOverlay() {
	s.window.Hide()

	frame, err := s.opts.GrabFrame()
	if err != nil {
		log.Printf("Desktop capture for overlay failed: %v", err)
		s.ctl.SetCapturer(failedCapture{err: err})
		s.overlay.setBackground(nil)
	} else {
		s.ctl.SetCapturer(frame)
	}

	bounds, err := s.opts.DisplayBounds()
	if err != nil {
		log.Printf("Display bounds unavailable, assuming origin (0,0): %v", err)
		bounds = image.Rectangle{}
	}
	s.origin = bounds.Min

	if frame != nil {
		s.overlay.setBackground(overlayBackground(frame, bounds))
	}

	s.overlayWin.SetFullScreen(true)
	s.overlayWin.Show()
	s.overlayWin.RequestFocus()
	s.overlay.Refresh()
}

// ExitOverlay closes the overlay and restores the main window.
func (s *Shell) ExitOverlay() {
	s.overlayWin.SetFullScreen(false)
	s.overlayWin.Hide()
	s.window.Show()
}

func (s *Shell) SetControls(c selection.Controls) {
	setEnabled(s.startBtn, c.Start)
	setEnabled(s.saveBtn, c.Save)
	setEnabled(s.resnipBtn, c.Resnip)
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (s *Shell) Redraw() { s.overlay.Refresh() }

func (s *Shell) ShowImage(img *image.RGBA) {
	s.status.SetText("")
	s.preview.Image = img
	s.preview.SetMinSize(previewSize(img.Bounds()))
	s.preview.Show()
	s.preview.Refresh()
}

func (s *Shell) ClearImage() {
	s.preview.Image = nil
	s.preview.Hide()
	s.preview.Refresh()
}

func (s *Shell) ShowStatus(msg string) { s.status.SetText(msg) }

// previewSize fits an image into the preview bounds, keeping its aspect.
func previewSize(b image.Rectangle) fyne.Size {
	w, h := float32(b.Dx()), float32(b.Dy())
	if w <= 0 || h <= 0 {
		return fyne.NewSize(0, 0)
	}
	scale := min(float32(1), maxPreviewWidth/w, maxPreviewHeight/h)
	return fyne.NewSize(w*scale, h*scale)
}

func (s *Shell) showSaveDialog() {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			s.ShowStatus(fmt.Sprintf("Failed to open save dialog: %v", err))
			return
		}
		if w == nil {
			return // User cancelled
		}
		path := w.URI().Path()
		_ = w.Close()
		// The dialog already created an empty file at path. Save writes
		// its own, possibly under another name.
		_ = os.Remove(path)
		s.saveTo(path)
	}, s.window)

	d.SetFileName("snip.png")
	d.SetFilter(storage.NewExtensionFileFilter(snipfile.Extensions()))
	if s.opts.SaveDir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(s.opts.SaveDir)); err == nil {
			d.SetLocation(lister)
		}
	}
	d.Show()
}

func (s *Shell) saveTo(path string) {
	if _, err := s.ctl.Save(path); err != nil {
		log.Printf("Save snip failed: %v", err)
	}
}

// overlayBackground crops the frozen desktop to the display the overlay covers.
func overlayBackground(frame *screenshot.Frame, bounds image.Rectangle) image.Image {
	if bounds.Empty() {
		return frame.Image
	}
	bg, err := frame.Capture(bounds)
	if err != nil {
		return frame.Image
	}
	return bg
}

type failedCapture struct{ err error }

func (f failedCapture) Capture(image.Rectangle) (*image.RGBA, error) {
	return nil, fmt.Errorf("screen capture unavailable: %w", f.err)
}
