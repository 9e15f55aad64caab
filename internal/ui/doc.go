// Package ui is the fyne desktop front-end. It collects a Request from the
// form, hands it to the download Supervisor, and renders the events drained
// from the Supervisor and FFmpeg installer queues on the fyne main thread.
// All UI strings are localized via Localization.
package ui
