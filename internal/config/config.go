package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories and files a batch run touches.
type Paths struct {
	AudioDir   string `toml:"audio_dir"`
	LyricsDir  string `toml:"lyrics_dir"`
	CoverDir   string `toml:"cover_dir"`
	ScratchDir string `toml:"scratch_dir"`
	HistoryDB  string `toml:"history_db"`
}

// Lyrics contains lyric matching and decoding settings.
type Lyrics struct {
	Encoding     string `toml:"encoding"`
	KeepOriginal bool   `toml:"keep_original"`
	Skip         bool   `toml:"skip"`
}

// Covers contains cover art matching settings.
type Covers struct {
	StrictMatch bool `toml:"strict_match"`
}

// FFmpeg contains external tool settings.
type FFmpeg struct {
	Binary      string `toml:"binary"`
	ProbeBinary string `toml:"probe_binary"`
	UseGPU      bool   `toml:"use_gpu"`
}

// Run contains batch execution settings.
type Run struct {
	DryRun     bool `toml:"dry_run"`
	SkipTagged bool `toml:"skip_tagged"`
	CleanStale bool `toml:"clean_stale"`
	History    bool `toml:"history"`
}

// Notifications contains push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for lyricmux.
//
// Configuration sections by subsystem:
//   - Paths: audio/lyrics/cover directories, scratch space, history database
//   - Lyrics: text encoding and post-embed handling of matched lyric files
//   - Covers: cover art matching strictness
//   - FFmpeg: binary locations and hardware acceleration
//   - Run: batch behaviour (dry-run, skip-tagged, stale cleanup, history)
//   - Notifications: ntfy topic for run milestones
//   - Logging: log format, level, and optional file output
type Config struct {
	Paths         Paths         `toml:"paths"`
	Lyrics        Lyrics        `toml:"lyrics"`
	Covers        Covers        `toml:"covers"`
	FFmpeg        FFmpeg        `toml:"ffmpeg"`
	Run           Run           `toml:"run"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lyricmux/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/lyricmux/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lyricmux.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a batch run writes to. The audio
// directory is deliberately excluded; its absence is a configuration error
// surfaced at run time, not something to paper over by creating it.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.ScratchDir) != "" {
		if err := os.MkdirAll(c.Paths.ScratchDir, 0o755); err != nil {
			return fmt.Errorf("create scratch directory %q: %w", c.Paths.ScratchDir, err)
		}
	}
	if c.Run.History && strings.TrimSpace(c.Paths.HistoryDB) != "" {
		dir := filepath.Dir(c.Paths.HistoryDB)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}
	return nil
}

// LyricsDirOrDefault returns the effective lyrics directory: the configured
// one when set, otherwise the audio directory.
func (c *Config) LyricsDirOrDefault() string {
	if strings.TrimSpace(c.Paths.LyricsDir) != "" {
		return c.Paths.LyricsDir
	}
	return c.Paths.AudioDir
}

// CoversEnabled reports whether a cover directory is configured.
func (c *Config) CoversEnabled() bool {
	return strings.TrimSpace(c.Paths.CoverDir) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
