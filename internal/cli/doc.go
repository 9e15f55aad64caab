// Package cli is the cobra command tree of tubegrab. The get and ffmpeg
// install commands drain the same event queues the desktop UI renders and
// print them with pterm.
package cli
