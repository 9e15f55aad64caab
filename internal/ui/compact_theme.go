package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// CompactTheme tightens the default fyne theme for a single-window form.
type CompactTheme struct{}

// NewCompactTheme creates a new compact theme
func NewCompactTheme() fyne.Theme {
	return &CompactTheme{}
}

var (
	colorSuccess = color.RGBA{R: 46, G: 160, B: 67, A: 255}
	colorError   = color.RGBA{R: 183, G: 28, B: 28, A: 255}
	colorWarning = color.RGBA{R: 255, G: 193, B: 7, A: 255}
	colorPrimary = color.RGBA{R: 211, G: 47, B: 47, A: 255}
)

// compactSizes overrides the default sizes; the rest fall through.
var compactSizes = map[fyne.ThemeSizeName]float32{
	theme.SizeNamePadding:            3,
	theme.SizeNameInnerPadding:       6,
	theme.SizeNameLineSpacing:        2,
	theme.SizeNameScrollBar:          12,
	theme.SizeNameText:               13,
	theme.SizeNameHeadingText:        16,
	theme.SizeNameSubHeadingText:     13,
	theme.SizeNameCaptionText:        10,
	theme.SizeNameInputRadius:        3,
	theme.SizeNameSelectionRadius:    2,
	theme.SizeNameSeparatorThickness: 1,
}

// Color returns theme colors
func (t *CompactTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameSuccess:
		return colorSuccess
	case theme.ColorNameError:
		return colorError
	case theme.ColorNameWarning:
		return colorWarning
	case theme.ColorNamePrimary:
		return colorPrimary
	}
	return theme.DefaultTheme().Color(name, variant)
}

// Font returns theme fonts
func (t *CompactTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns theme icons
func (t *CompactTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns theme sizes with compact adjustments
func (t *CompactTheme) Size(name fyne.ThemeSizeName) float32 {
	if size, ok := compactSizes[name]; ok {
		return size
	}
	return theme.DefaultTheme().Size(name)
}
