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
	c.normalizeLyrics()
	c.normalizeFFmpeg()
	c.normalizeNotifications()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.AudioDir) != "" {
		if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
			return fmt.Errorf("paths.audio_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LyricsDir) != "" {
		if c.Paths.LyricsDir, err = expandPath(c.Paths.LyricsDir); err != nil {
			return fmt.Errorf("paths.lyrics_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.CoverDir) != "" {
		if c.Paths.CoverDir, err = expandPath(c.Paths.CoverDir); err != nil {
			return fmt.Errorf("paths.cover_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = os.TempDir()
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeLyrics() {
	c.Lyrics.Encoding = strings.TrimSpace(c.Lyrics.Encoding)
	if c.Lyrics.Encoding == "" {
		c.Lyrics.Encoding = defaultLyricEncoding
	}
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	c.FFmpeg.ProbeBinary = strings.TrimSpace(c.FFmpeg.ProbeBinary)
	if c.FFmpeg.ProbeBinary == "" {
		c.FFmpeg.ProbeBinary = defaultProbeBinary
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		expanded, err := expandPath(c.Logging.File)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	return nil
}
