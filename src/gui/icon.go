package gui

import (
	_ "embed"

	"fyne.io/fyne/v2"
)

//go:embed icon.svg
var iconSVG []byte

// Icon is the scissors-over-selection icon used for the windows and the tray.
var Icon = fyne.NewStaticResource("screen-snip.svg", iconSVG)
