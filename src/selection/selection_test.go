package selection

import (
	"errors"
	"image"
	"strings"
	"testing"
)

type fakePresenter struct {
	overlay  bool
	controls Controls
	redraws  int
	shown    *image.RGBA
	status   string
}

func (p *fakePresenter) EnterOverlay() { p.overlay = true }
func (p *fakePresenter) ExitOverlay() { p.overlay = false }
func (p *fakePresenter) SetControls(c Controls) { p.controls = c }
func (p *fakePresenter) Redraw() { p.redraws++ }
func (p *fakePresenter) ShowImage(img *image.RGBA) { p.shown = img }
func (p *fakePresenter) ClearImage() { p.shown = nil }
func (p *fakePresenter) ShowStatus(msg string) { p.status = msg }

type fakeCapturer struct {
	calls []image.Rectangle
	err   error
}

func (c *fakeCapturer) Capture(r image.Rectangle) (*image.RGBA, error) {
	c.calls = append(c.calls, r)
	if c.err != nil {
		return nil, c.err
	}
	if r.Empty() {
		return nil, errors.New("empty region")
	}
	return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
}

type fakeSaver struct {
	paths []string
	err   error
}

func (s *fakeSaver) Save(img image.Image, path string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if !strings.HasSuffix(path, ".png") {
		path += ".png"
	}
	s.paths = append(s.paths, path)
	return path, nil
}

func newTestController() (*Controller, *fakePresenter, *fakeCapturer, *fakeSaver) {
	p := &fakePresenter{}
	c := &fakeCapturer{}
	s := &fakeSaver{}
	return NewController(p, c, s), p, c, s
}

func TestRectFromCorners(t *testing.T) {
	tests := []struct {
		a, b Point
		want Rect
	}{
		{Point{50, 50}, Point{10, 30}, Rect{10, 30, 50, 50}},
		{Point{10, 30}, Point{50, 50}, Rect{10, 30, 50, 50}},
		{Point{10, 50}, Point{50, 30}, Rect{10, 30, 50, 50}},
		{Point{-5, 7}, Point{3, -2}, Rect{-5, -2, 3, 7}},
		{Point{4, 4}, Point{4, 4}, Rect{4, 4, 4, 4}},
	}

	for _, tt := range tests {
		got := RectFromCorners(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("RectFromCorners(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got.Left > got.Right || got.Top > got.Bottom {
			t.Errorf("RectFromCorners(%v, %v) not normalized: %v", tt.a, tt.b, got)
		}
		if again := got.Normalize(); again != got {
			t.Errorf("Normalize not idempotent: %v -> %v", got, again)
		}
	}
}

func TestRectEmpty(t *testing.T) {
	if !(Rect{20, 20, 20, 40}).Empty() {
		t.Error("zero-width rect should be empty")
	}
	if (Rect{10, 30, 50, 50}).Empty() {
		t.Error("40x20 rect should not be empty")
	}
}

func TestInitialControls(t *testing.T) {
	ctl, p, _, _ := newTestController()
	want := Controls{Start: true}
	if ctl.Controls() != want || p.controls != want {
		t.Errorf("initial controls = %+v, want %+v", p.controls, want)
	}
	if _, _, ok := ctl.Corners(); ok {
		t.Error("corners should be absent before any gesture")
	}
}

func TestBegin(t *testing.T) {
	ctl, p, _, _ := newTestController()
	ctl.Begin()

	if !ctl.Active() {
		t.Fatal("expected active selection")
	}
	if !p.overlay {
		t.Error("expected overlay to be entered")
	}
	if p.controls != (Controls{}) {
		t.Errorf("controls during selection = %+v, want all disabled", p.controls)
	}
	if p.status != InstructionText {
		t.Errorf("status = %q", p.status)
	}
}

func TestGestureNormalizesAndCaptures(t *testing.T) {
	ctl, p, c, _ := newTestController()
	ctl.Begin()
	ctl.PointerDown(50, 50)
	ctl.PointerMove(30, 40)
	ctl.PointerUp(10, 30)

	got, ok := ctl.Selection()
	if !ok {
		t.Fatal("expected a finalized selection")
	}
	if want := (Rect{10, 30, 50, 50}); got != want {
		t.Errorf("selection = %v, want %v", got, want)
	}
	if ctl.Active() {
		t.Error("selection should no longer be active")
	}
	if len(c.calls) != 1 || c.calls[0] != image.Rect(10, 30, 50, 50) {
		t.Errorf("capture calls = %v", c.calls)
	}
	if ctl.Image() == nil || p.shown != ctl.Image() {
		t.Error("captured image should be held and shown")
	}
	if b := ctl.Image().Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("image size = %dx%d, want 40x20", b.Dx(), b.Dy())
	}
	if p.overlay {
		t.Error("overlay should be exited after capture")
	}
	if want := (Controls{Save: true, Resnip: true}); p.controls != want {
		t.Errorf("controls = %+v, want %+v", p.controls, want)
	}
	if p.redraws < 2 {
		t.Errorf("expected redraws on move and release, got %d", p.redraws)
	}
}

func TestPointerEventsIgnoredWhenInactive(t *testing.T) {
	ctl, p, c, _ := newTestController()
	ctl.PointerDown(1, 1)
	ctl.PointerMove(5, 5)
	ctl.PointerUp(9, 9)

	if _, _, ok := ctl.Corners(); ok {
		t.Error("corners should stay absent")
	}
	if len(c.calls) != 0 {
		t.Error("capture must not run without an active selection")
	}
	if p.redraws != 0 {
		t.Errorf("redraws = %d, want 0", p.redraws)
	}
}

func TestNudge(t *testing.T) {
	tests := []struct {
		dir  Direction
		want Rect
	}{
		{Up, Rect{10, 29, 50, 49}},
		{Down, Rect{10, 31, 50, 51}},
		{Left, Rect{9, 30, 49, 50}},
		{Right, Rect{11, 30, 51, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			ctl, _, _, _ := newTestController()
			ctl.Begin()
			ctl.PointerDown(10, 30)
			ctl.PointerMove(50, 50)
			ctl.Nudge(tt.dir)

			start, end, ok := ctl.Corners()
			if !ok {
				t.Fatal("corners should be set")
			}
			got := RectFromCorners(start, end)
			if got != tt.want {
				t.Errorf("after %s nudge = %v, want %v", tt.dir, got, tt.want)
			}
			if got.Width() != 40 || got.Height() != 20 {
				t.Errorf("nudge changed size to %dx%d", got.Width(), got.Height())
			}
		})
	}
}

func TestNudgeThenRelease(t *testing.T) {
	ctl, _, c, _ := newTestController()
	ctl.Begin()
	ctl.PointerDown(10, 30)
	ctl.PointerMove(50, 50)
	ctl.Nudge(Up)
	ctl.PointerUp(50, 49)

	got, _ := ctl.Selection()
	if want := (Rect{10, 29, 50, 49}); got != want {
		t.Errorf("selection = %v, want %v", got, want)
	}
	if len(c.calls) != 1 {
		t.Fatalf("capture calls = %d", len(c.calls))
	}
}

func TestNudgeNoOp(t *testing.T) {
	t.Run("before drag", func(t *testing.T) {
		ctl, p, _, _ := newTestController()
		ctl.Begin()
		ctl.PointerDown(10, 10)
		ctl.Nudge(Right)
		if _, _, ok := ctl.Corners(); ok {
			t.Error("end corner should still be absent")
		}
		if p.redraws != 0 {
			t.Errorf("redraws = %d, want 0", p.redraws)
		}
	})

	t.Run("after finalization", func(t *testing.T) {
		ctl, _, _, _ := newTestController()
		ctl.Begin()
		ctl.PointerDown(10, 30)
		ctl.PointerUp(50, 50)
		start, end, _ := ctl.Corners()
		ctl.Nudge(Left)
		s2, e2, _ := ctl.Corners()
		if s2 != start || e2 != end {
			t.Errorf("corners changed after finalization: %v,%v -> %v,%v", start, end, s2, e2)
		}
	})

	t.Run("idle", func(t *testing.T) {
		ctl, p, _, _ := newTestController()
		ctl.Nudge(Down)
		if p.redraws != 0 {
			t.Errorf("redraws = %d, want 0", p.redraws)
		}
	})
}

func TestNudgeAllowsOffscreen(t *testing.T) {
	ctl, _, _, _ := newTestController()
	ctl.Begin()
	ctl.PointerDown(0, 0)
	ctl.PointerMove(5, 5)
	ctl.Nudge(Left)
	ctl.Nudge(Up)
	start, _, _ := ctl.Corners()
	if start != (Point{-1, -1}) {
		t.Errorf("start = %v, want (-1,-1)", start)
	}
}

func TestZeroAreaCaptureFails(t *testing.T) {
	ctl, p, c, _ := newTestController()
	ctl.Begin()
	ctl.PointerDown(20, 20)
	ctl.PointerUp(20, 40)

	if len(c.calls) != 1 || c.calls[0] != image.Rect(20, 20, 20, 40) {
		t.Errorf("capture calls = %v", c.calls)
	}
	if ctl.Image() != nil || p.shown != nil {
		t.Error("no image should be set after a failed capture")
	}
	if want := (Controls{Start: true}); p.controls != want {
		t.Errorf("controls = %+v, want %+v", p.controls, want)
	}
	if p.overlay {
		t.Error("overlay should be exited after a failed capture")
	}
	if !strings.HasPrefix(p.status, "Capture failed") {
		t.Errorf("status = %q", p.status)
	}
}

func TestReleaseWithoutPress(t *testing.T) {
	ctl, p, c, _ := newTestController()
	ctl.Begin()
	ctl.PointerUp(20, 40)

	if len(c.calls) != 0 {
		t.Error("capture must not run without a start point")
	}
	if want := (Controls{Start: true}); p.controls != want {
		t.Errorf("controls = %+v, want %+v", p.controls, want)
	}
	if !strings.Contains(p.status, ErrNoSelection.Error()) {
		t.Errorf("status = %q", p.status)
	}
}

func TestCapturerError(t *testing.T) {
	ctl, p, c, _ := newTestController()
	c.err = errors.New("screen access denied")
	ctl.Begin()
	ctl.PointerDown(0, 0)
	ctl.PointerUp(10, 10)

	if ctl.Image() != nil {
		t.Error("no image expected")
	}
	if p.controls.Save {
		t.Error("save must stay disabled")
	}
	if !strings.Contains(p.status, "screen access denied") {
		t.Errorf("status = %q", p.status)
	}
}

func TestSave(t *testing.T) {
	ctl, p, _, s := newTestController()
	ctl.Begin()
	ctl.PointerDown(0, 0)
	ctl.PointerUp(10, 10)

	written, err := ctl.Save("shot")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if written != "shot.png" {
		t.Errorf("written = %q, want shot.png", written)
	}
	if len(s.paths) != 1 {
		t.Errorf("saver calls = %d", len(s.paths))
	}
	if p.status != "Snip saved as 'shot.png'" {
		t.Errorf("status = %q", p.status)
	}
	if want := (Controls{Start: true, Resnip: true}); p.controls != want {
		t.Errorf("controls = %+v, want %+v", p.controls, want)
	}
}

func TestSaveFailureKeepsImage(t *testing.T) {
	ctl, p, _, s := newTestController()
	ctl.Begin()
	ctl.PointerDown(0, 0)
	ctl.PointerUp(10, 10)
	img := ctl.Image()

	s.err = errors.New("permission denied")
	if _, err := ctl.Save("/nope/shot.png"); err == nil {
		t.Fatal("expected save error")
	}
	if ctl.Image() != img {
		t.Error("image should be kept after a failed save")
	}
	if !p.controls.Save {
		t.Error("save should remain available for retry")
	}
	if !strings.Contains(p.status, "permission denied") {
		t.Errorf("status = %q", p.status)
	}
}

func TestSaveWithoutImage(t *testing.T) {
	ctl, _, _, _ := newTestController()
	if _, err := ctl.Save("shot"); !errors.Is(err, ErrNoImage) {
		t.Errorf("err = %v, want ErrNoImage", err)
	}
}

func TestBeginDiscardsPreviousImage(t *testing.T) {
	ctl, p, _, _ := newTestController()
	ctl.Begin()
	ctl.PointerDown(0, 0)
	ctl.PointerUp(10, 10)
	if ctl.Image() == nil {
		t.Fatal("expected first capture to succeed")
	}

	ctl.Begin()
	if ctl.Image() != nil || p.shown != nil {
		t.Error("previous image should be dropped")
	}
	if p.controls.Save {
		t.Error("save should be disabled until the new gesture completes")
	}
	if _, _, ok := ctl.Corners(); ok {
		t.Error("corners should be cleared")
	}
	if _, ok := ctl.Selection(); ok {
		t.Error("previous selection should be cleared")
	}
}
