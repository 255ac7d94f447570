package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"lyricmux/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.AudioDir = filepath.Join(base, "music")
	cfgVal.Paths.LyricsDir = filepath.Join(base, "lyrics")
	cfgVal.Paths.CoverDir = filepath.Join(base, "covers")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "state", "history.db")

	for _, dir := range []string{cfgVal.Paths.AudioDir, cfgVal.Paths.LyricsDir, cfgVal.Paths.CoverDir, cfgVal.Paths.ScratchDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithoutCoverDir clears the cover directory so cover matching is disabled.
func WithoutCoverDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.CoverDir = ""
	}
}

// WithEncoding overrides the lyric text encoding on the test config.
func WithEncoding(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Lyrics.Encoding = name
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.AudioDir)
}
