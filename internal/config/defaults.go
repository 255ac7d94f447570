package config

const (
	defaultHistoryDB     = "~/.local/share/lyricmux/history.db"
	defaultLyricEncoding = "gb2312"
	defaultFFmpegBinary  = "ffmpeg"
	defaultProbeBinary   = "ffprobe"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultNotifyTimeout = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			HistoryDB: defaultHistoryDB,
		},
		Lyrics: Lyrics{
			Encoding: defaultLyricEncoding,
		},
		FFmpeg: FFmpeg{
			Binary:      defaultFFmpegBinary,
			ProbeBinary: defaultProbeBinary,
		},
		Run: Run{
			CleanStale: true,
			History:    true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
