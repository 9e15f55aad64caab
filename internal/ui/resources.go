package ui

import (
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
)

// AppIcon is the icon file looked up next to the executable and in the
// working directory.
const AppIcon = "tubegrab.png"

// LoadLogoResource loads the application icon from disk.
func LoadLogoResource() (fyne.Resource, error) {
	if exe, err := os.Executable(); err == nil {
		if res, err := fyne.LoadResourceFromPath(filepath.Join(filepath.Dir(exe), AppIcon)); err == nil {
			return res, nil
		}
	}
	return fyne.LoadResourceFromPath(AppIcon)
}
