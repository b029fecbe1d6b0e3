// Package ffmpeg drives the external ffmpeg binary for the formats the Go
// image stack cannot encode or decode natively (AVIF).
package ffmpeg
