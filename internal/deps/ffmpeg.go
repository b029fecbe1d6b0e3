package deps

import "strings"

// FFmpegRequirement describes the binary used to encode and decode AVIF.
// An empty configured value falls back to "ffmpeg" on PATH.
func FFmpegRequirement(configured string) Requirement {
	command := strings.TrimSpace(configured)
	if command == "" {
		command = "ffmpeg"
	}
	return Requirement{
		Name:        "FFmpeg",
		Command:     command,
		Description: "Required for AVIF conversion",
		Optional:    true,
	}
}

// CheckFFmpeg reports whether the configured FFmpeg binary can be run.
func CheckFFmpeg(configured string) Status {
	return Check(FFmpegRequirement(configured))
}
