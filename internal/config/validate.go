package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	validCases   = map[string]struct{}{"": {}, "lower": {}, "upper": {}, "title": {}}
	validModes   = map[string]struct{}{"stretch": {}, "crop": {}, "pad": {}, "fill": {}, "max": {}, "min": {}}
	validFilters = map[string]struct{}{"lanczos": {}, "catmullrom": {}, "linear": {}, "box": {}, "nearest": {}}
	validFormats = map[string]struct{}{"jpeg": {}, "png": {}, "webp": {}, "avif": {}, "gif": {}, "tiff": {}, "bmp": {}}
	validLevels  = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateRename(); err != nil {
		return err
	}
	if err := c.validateResize(); err != nil {
		return err
	}
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 1 || c.Batch.Workers > maxWorkers {
		return fmt.Errorf("batch.workers must be between 1 and %d", maxWorkers)
	}
	return nil
}

func (c *Config) validateRename() error {
	if _, ok := validCases[c.Rename.Case]; !ok {
		return fmt.Errorf("rename.case: unsupported value %q (use lower, upper, title, or none)", c.Rename.Case)
	}
	if c.Rename.StartIndex < 0 {
		return errors.New("rename.start_index must be >= 0")
	}
	if c.Rename.PadWidth > 12 {
		return errors.New("rename.pad_width must be <= 12")
	}
	return nil
}

func (c *Config) validateResize() error {
	if _, ok := validModes[c.Resize.Mode]; !ok {
		return fmt.Errorf("resize.mode: unsupported value %q", c.Resize.Mode)
	}
	if _, ok := validFilters[c.Resize.Filter]; !ok {
		return fmt.Errorf("resize.filter: unsupported value %q", c.Resize.Filter)
	}
	if err := ensureQuality("resize.quality", c.Resize.Quality); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConvert() error {
	if _, ok := validFormats[c.Convert.Format]; !ok {
		return fmt.Errorf("convert.format: unsupported value %q", c.Convert.Format)
	}
	if err := ensureQuality("convert.quality", c.Convert.Quality); err != nil {
		return err
	}
	if c.Convert.AVIFCRF < 0 || c.Convert.AVIFCRF > 63 {
		return errors.New("convert.avif_crf must be between 0 and 63")
	}
	if c.Convert.AVIFCPUUsed < 0 || c.Convert.AVIFCPUUsed > 8 {
		return errors.New("convert.avif_cpu_used must be between 0 and 8")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.TimeoutSeconds <= 0 {
		return errors.New("ffmpeg.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if c.Notifications.MinFiles < 0 {
		return errors.New("notifications.min_files must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, ok := validLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensureQuality(key string, value int) error {
	if value < 1 || value > 100 {
		return fmt.Errorf("%s must be between 1 and 100", key)
	}
	return nil
}
