package main

import (
	"log/slog"
	"time"

	"imgutil/internal/codec"
	"imgutil/internal/config"
	"imgutil/internal/ffmpeg"
)

func newCodec(cfg *config.Config, logger *slog.Logger) *codec.Codec {
	timeout := time.Duration(cfg.FFmpeg.TimeoutSeconds) * time.Second
	return codec.New(ffmpeg.New(cfg.FFmpegBinary(), timeout, logger))
}

func avifOptions(cfg *config.Config) ffmpeg.AVIFOptions {
	return ffmpeg.AVIFOptions{CRF: cfg.Convert.AVIFCRF, CPUUsed: cfg.Convert.AVIFCPUUsed}
}

// ffmpegAvailable fails fast when AVIF output is requested without ffmpeg,
// instead of failing every file.
func ffmpegAvailable(cfg *config.Config, logger *slog.Logger) error {
	timeout := time.Duration(cfg.FFmpeg.TimeoutSeconds) * time.Second
	return ffmpeg.New(cfg.FFmpegBinary(), timeout, logger).Available()
}
