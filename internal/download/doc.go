// Package download runs one download job at a time on a background worker.
//
// The Supervisor resolves the requested location through the extractor
// registry, expands collections, and transfers every entry through a
// backend: yt-dlp (via github.com/lrstanley/go-ytdlp) for media pages and a
// plain HTTP stream for direct file links. Progress is posted to a bounded
// EventQueue that the presentation layer drains on its own goroutine.
// Cancellation is cooperative: RequestCancel sets a flag the worker checks
// before each item and before each chunk it writes.
package download
