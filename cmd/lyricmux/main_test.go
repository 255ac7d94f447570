package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"

	"lyricmux/internal/config"
	"lyricmux/internal/history"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	audioDir   string
	lyricsDir  string
	coverDir   string
	scratchDir string
	historyDB  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		audioDir:   filepath.Join(base, "music"),
		lyricsDir:  filepath.Join(base, "lyrics"),
		coverDir:   filepath.Join(base, "covers"),
		scratchDir: filepath.Join(base, "scratch"),
		historyDB:  filepath.Join(base, "state", "history.db"),
	}
	for _, dir := range []string{env.audioDir, env.lyricsDir, env.coverDir, env.scratchDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}

	binDir := filepath.Join(base, "bin")
	ffmpegPath := writeStubFFmpeg(t, binDir)
	ffprobePath := writeStubFFprobe(t, binDir)
	writeTestConfig(t, env, ffmpegPath, ffprobePath)
	return env
}

const stubProbeJSON = `{"streams":[{"index":0,"codec_type":"audio","codec_name":"mp3"}],"format":{"duration":"180.5"}}`

// writeStubFFmpeg fakes the three invocations the pipeline makes: the version
// banner, the encoder listing, and a mux that writes its final argument the
// way ffmpeg writes its output path.
func writeStubFFmpeg(t *testing.T, dir string) string {
	t.Helper()
	script := `#!/bin/sh
case "$1" in
-version)
    echo "ffmpeg version 7.1 stub"
    exit 0
    ;;
-encoders)
    echo " A....D libmp3lame          MP3 (MPEG audio layer 3)"
    exit 0
    ;;
esac
out=""
for arg in "$@"; do out="$arg"; done
printf 'muxed' > "$out"
`
	return writeStubExecutable(t, dir, "ffmpeg", script)
}

func writeStubFFprobe(t *testing.T, dir string) string {
	t.Helper()
	script := fmt.Sprintf("#!/bin/sh\ncat <<'EOF'\n%s\nEOF\n", stubProbeJSON)
	return writeStubExecutable(t, dir, "ffprobe", script)
}

func writeStubExecutable(t *testing.T, dir, name, script string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create stub bin dir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func writeTestConfig(t *testing.T, env *cliTestEnv, ffmpegPath, ffprobePath string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
audio_dir = %q
lyrics_dir = %q
cover_dir = %q
scratch_dir = %q
history_db = %q

[ffmpeg]
binary = %q
probe_binary = %q

[logging]
level = "error"
`, env.audioDir, env.lyricsDir, env.coverDir, env.scratchDir, env.historyDB, ffmpegPath, ffprobePath)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func writeTaggedMP3(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	tag, err := id3v2.Open(path, id3v2.Options{Parse: false})
	if err != nil {
		t.Fatalf("open id3v2: %v", err)
	}
	defer tag.Close()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
		Encoding: id3v2.EncodingUTF8,
		Language: "eng",
		Lyrics:   "[00:01.00]already here",
	})
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Picture:     []byte{0xFF, 0xD8, 0xFF, 0xD9},
	})
	if err := tag.Save(); err != nil {
		t.Fatalf("save id3v2: %v", err)
	}
}

func TestCLIRunEmbedsLyrics(t *testing.T) {
	env := setupCLITestEnv(t)

	audioPath := filepath.Join(env.audioDir, "01 - Track.mp3")
	if err := os.WriteFile(audioPath, []byte("mp3 bytes"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	lyricPath := filepath.Join(env.lyricsDir, "01 - Track.lrc")
	if err := os.WriteFile(lyricPath, []byte("[00:01.00]hello\n"), 0o644); err != nil {
		t.Fatalf("write lyric: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, []string{"run"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Processed 1 of 1 files")

	data, err := os.ReadFile(audioPath)
	if err != nil {
		t.Fatalf("read audio after run: %v", err)
	}
	if string(data) != "muxed" {
		t.Fatalf("expected original replaced by staged output, got %q", data)
	}
	// Lyrics in a dedicated directory form a library and stay put.
	if _, err := os.Stat(lyricPath); err != nil {
		t.Fatalf("expected lyric file to remain: %v", err)
	}
	entries, err := os.ReadDir(env.scratchDir)
	if err != nil {
		t.Fatalf("read scratch dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch directory emptied, found %d entries", len(entries))
	}
}

func TestCLIRunDryRun(t *testing.T) {
	env := setupCLITestEnv(t)

	audioPath := filepath.Join(env.audioDir, "song.mp3")
	if err := os.WriteFile(audioPath, []byte("mp3 bytes"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	lyricPath := filepath.Join(env.lyricsDir, "song.lrc")
	if err := os.WriteFile(lyricPath, []byte("[00:01.00]hello\n"), 0o644); err != nil {
		t.Fatalf("write lyric: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, []string{"run", "--dry-run"})
	if err != nil {
		t.Fatalf("run --dry-run: %v", err)
	}
	requireContains(t, out, "Dry run: planned 1 of 1 files")

	data, err := os.ReadFile(audioPath)
	if err != nil {
		t.Fatalf("read audio after dry run: %v", err)
	}
	if string(data) != "mp3 bytes" {
		t.Fatalf("dry run modified the audio file: %q", data)
	}
	if _, err := os.Stat(lyricPath); err != nil {
		t.Fatalf("dry run removed the lyric file: %v", err)
	}
}

func TestCLIHistoryListsAndShowsRuns(t *testing.T) {
	env := setupCLITestEnv(t)

	audioPath := filepath.Join(env.audioDir, "track.mp3")
	if err := os.WriteFile(audioPath, []byte("mp3 bytes"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	if err := os.WriteFile(filepath.Join(env.lyricsDir, "track.lrc"), []byte("[00:01.00]hi\n"), 0o644); err != nil {
		t.Fatalf("write lyric: %v", err)
	}

	if _, _, err := runCLI(t, env.configPath, []string{"run"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, []string{"history"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "music")

	cfg, _, _, err := config.Load(env.configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	defer store.Close()
	runs, err := store.ListRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(runs))
	}
	requireContains(t, out, runs[0].ID)

	out, _, err = runCLI(t, env.configPath, []string{"history", "show", runs[0].ID})
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "track.mp3")
	requireContains(t, out, "processed")
	requireContains(t, out, "1 processed, 0 skipped, 0 failed of 1")

	_, _, err = runCLI(t, env.configPath, []string{"history", "show", "no-such-run"})
	if err == nil {
		t.Fatal("expected error for unknown run id")
	}
	requireContains(t, err.Error(), "not found")
}

func TestCLIInspectReportsEmbeddedTags(t *testing.T) {
	env := setupCLITestEnv(t)

	path := filepath.Join(env.audioDir, "tagged.mp3")
	writeTaggedMP3(t, path)

	out, _, err := runCLI(t, "", []string{"inspect", path})
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "Format: MP3")
	requireContains(t, out, "lyrics")
	requireContains(t, out, "picture")
	requireContains(t, out, "front cover")
}

func TestCLIInspectRejectsUnsupportedFile(t *testing.T) {
	env := setupCLITestEnv(t)

	path := filepath.Join(env.baseDir, "notes.txt")
	if err := os.WriteFile(path, []byte("text"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, _, err := runCLI(t, "", []string{"inspect", path})
	if err == nil {
		t.Fatal("expected error for unsupported container")
	}
	requireContains(t, err.Error(), "unsupported container")
}

func TestCLITestNotify(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, []string{"test-notify"})
	if err != nil {
		t.Fatalf("test-notify without topic: %v", err)
	}
	requireContains(t, out, "Notifications are not configured")

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config for append: %v", err)
	}
	fmt.Fprintf(f, "\n[notifications]\nntfy_topic = %q\n", server.URL)
	if err := f.Close(); err != nil {
		t.Fatalf("close config: %v", err)
	}

	out, _, err = runCLI(t, env.configPath, []string{"test-notify"})
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if requests != 1 {
		t.Fatalf("ntfy endpoint hit %d times, want 1", requests)
	}
}

func TestCLIPreflight(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, []string{"preflight"})
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	requireContains(t, out, "All checks passed")

	missing := filepath.Join(env.baseDir, "absent")
	_, _, err = runCLI(t, env.configPath, []string{"preflight", "--dir", missing})
	if err == nil {
		t.Fatal("expected preflight failure for missing audio directory")
	}
	requireContains(t, err.Error(), "preflight checks failed")
}
