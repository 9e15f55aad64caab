// Package toolchain acquires the external FFmpeg binaries. The Installer
// downloads a release archive with hashicorp/go-getter, which also unpacks
// it, and moves ffmpeg and ffprobe into the per-user data directory. It
// holds the same busy gate as the download supervisor.
package toolchain
