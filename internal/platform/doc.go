// Package platform contains OS integration and external tooling glue:
// playlist expansion through github.com/ytget/ytdlp/v2, detection of the
// FFmpeg binary, the application data directory and file manager helpers.
package platform
