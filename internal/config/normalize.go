package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBatch()
	c.normalizeRename()
	c.normalizeResize()
	c.normalizeConvert()
	c.normalizeFFmpeg()
	c.normalizeHistory()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBatch() {
	if c.Batch.Workers == 0 {
		c.Batch.Workers = defaultWorkers
	}
	if len(c.Batch.Extensions) == 0 {
		c.Batch.Extensions = append([]string(nil), defaultImageExtensions...)
		return
	}
	exts := make([]string, 0, len(c.Batch.Extensions))
	seen := make(map[string]struct{}, len(c.Batch.Extensions))
	for _, ext := range c.Batch.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultImageExtensions...)
	}
	c.Batch.Extensions = exts
}

func (c *Config) normalizeRename() {
	c.Rename.Case = strings.ToLower(strings.TrimSpace(c.Rename.Case))
	if c.Rename.Case == "none" {
		c.Rename.Case = ""
	}
	if c.Rename.PadWidth < 0 {
		c.Rename.PadWidth = 0
	}
}

func (c *Config) normalizeResize() {
	c.Resize.Mode = strings.ToLower(strings.TrimSpace(c.Resize.Mode))
	if c.Resize.Mode == "" {
		c.Resize.Mode = defaultResizeMode
	}
	c.Resize.Filter = strings.ToLower(strings.TrimSpace(c.Resize.Filter))
	if c.Resize.Filter == "" {
		c.Resize.Filter = defaultResizeFilter
	}
	c.Resize.Background = strings.ToLower(strings.TrimSpace(c.Resize.Background))
	if c.Resize.Background == "" {
		c.Resize.Background = defaultBackground
	}
	if c.Resize.Quality == 0 {
		c.Resize.Quality = defaultQuality
	}
}

func (c *Config) normalizeConvert() {
	c.Convert.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Convert.Format), "."))
	switch c.Convert.Format {
	case "":
		c.Convert.Format = defaultConvertFormat
	case "jpg":
		c.Convert.Format = "jpeg"
	case "tif":
		c.Convert.Format = "tiff"
	}
	if c.Convert.Quality == 0 {
		c.Convert.Quality = defaultQuality
	}
	if c.Convert.AVIFCRF == 0 {
		c.Convert.AVIFCRF = defaultAVIFCRF
	}
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if value, ok := os.LookupEnv(ffmpegBinaryEnv); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.Binary = strings.TrimSpace(value)
	}
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	if c.FFmpeg.TimeoutSeconds == 0 {
		c.FFmpeg.TimeoutSeconds = defaultFFmpegTimeout
	}
}

func (c *Config) normalizeHistory() {
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = 0
	}
}

func (c *Config) normalizeNotifications() {
	if value, ok := os.LookupEnv(ntfyTopicEnv); ok && strings.TrimSpace(value) != "" {
		c.Notifications.NtfyTopic = value
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
