package ui

import "time"

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
	IconClose    = "×"
)

// Text fragments
const (
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%.0f%%"
	MiddleDotSeparator  = " · "
)

// Window and form sizing
const (
	WindowWidth     float32 = 720
	WindowHeight    float32 = 360
	SettingsDialogW float32 = 500
	SettingsDialogH float32 = 320
	ToastWidth      float32 = 300
	ToastHeight     float32 = 120
	ToastMargin     float32 = 20
	ToastAutoHide           = 5 * time.Second
)
