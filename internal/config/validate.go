package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. The audio directory is not
// required here because the CLI may supply it as a flag after loading.
func (c *Config) Validate() error {
	if err := c.validateLyrics(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLyrics() error {
	if !c.Lyrics.Skip && c.Lyrics.Encoding == "" {
		return errors.New("lyrics.encoding must be set unless lyrics.skip is true")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.Binary == "" {
		return errors.New("ffmpeg.binary must be set")
	}
	if c.FFmpeg.ProbeBinary == "" {
		return errors.New("ffmpeg.probe_binary must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
