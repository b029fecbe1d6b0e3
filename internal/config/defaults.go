package config

const (
	defaultConfigPath       = "~/.config/imgutil/config.toml"
	defaultLogDir           = "~/.local/state/imgutil/logs"
	defaultWorkers          = 5
	maxWorkers              = 64
	defaultStartIndex       = 1
	defaultResizeMode       = "max"
	defaultResizeFilter     = "lanczos"
	defaultBackground       = "transparent"
	defaultQuality          = 85
	defaultConvertFormat    = "webp"
	defaultAVIFCRF          = 30
	defaultAVIFCPUUsed      = 4
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFmpegTimeout    = 120
	defaultHistoryRetention = 90
	defaultNotifyTimeout    = 10
	defaultNotifyMinFiles   = 1
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	ntfyTopicEnv            = "IMGUTIL_NTFY_TOPIC"
	ffmpegBinaryEnv         = "IMGUTIL_FFMPEG"
)

var defaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".avif"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
			LogDir:   defaultLogDir,
		},
		Batch: Batch{
			Workers:    defaultWorkers,
			Extensions: append([]string(nil), defaultImageExtensions...),
		},
		Rename: Rename{
			StartIndex: defaultStartIndex,
		},
		Resize: Resize{
			Mode:       defaultResizeMode,
			Filter:     defaultResizeFilter,
			KeepAspect: true,
			Background: defaultBackground,
			Quality:    defaultQuality,
		},
		Convert: Convert{
			Format:      defaultConvertFormat,
			Quality:     defaultQuality,
			AVIFCRF:     defaultAVIFCRF,
			AVIFCPUUsed: defaultAVIFCPUUsed,
		},
		FFmpeg: FFmpeg{
			Binary:         defaultFFmpegBinary,
			TimeoutSeconds: defaultFFmpegTimeout,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetention,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			BatchCompleted: true,
			BatchFailed:    true,
			Errors:         true,
			MinFiles:       defaultNotifyMinFiles,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
