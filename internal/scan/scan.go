package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Container identifies the audio container format of a discovered file.
type Container string

const (
	ContainerMP3  Container = "mp3"
	ContainerFLAC Container = "flac"
)

// Artifact naming shared across the pipeline. Staged mux outputs carry
// TempMarker in their name, scratch lyric files start with ScratchPrefix,
// and FLAC staging directories start with StageDirPrefix. Discovery excludes
// anything matching these patterns and CleanStale sweeps them.
const (
	TempMarker     = ".temp."
	ScratchPrefix  = "lyricmux-"
	StageDirPrefix = "lyricmux-stage-"
)

// File is a processable audio file found by Discover.
type File struct {
	// Path is the absolute or caller-relative path to the file.
	Path string
	// Name is the filename including extension.
	Name string
	// Base is the filename without its final extension, used for matching
	// against lyric and cover filenames.
	Base string
	// Container is the audio container derived from the extension.
	Container Container
}

// ContainerFor maps a filename to its container, case-insensitively.
// The second return is false for unsupported extensions.
func ContainerFor(name string) (Container, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return ContainerMP3, true
	case ".flac":
		return ContainerFLAC, true
	default:
		return "", false
	}
}

// Discover lists the processable audio files directly inside dir. The scan
// is not recursive. Files whose names contain TempMarker are staged outputs
// from an interrupted run and are excluded so they are never processed as
// sources. Results follow os.ReadDir's filename ordering, so processing
// order is stable across filesystems.
func Discover(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.Contains(name, TempMarker) {
			continue
		}
		container, ok := ContainerFor(name)
		if !ok {
			continue
		}
		files = append(files, File{
			Path:      filepath.Join(dir, name),
			Name:      name,
			Base:      strings.TrimSuffix(name, filepath.Ext(name)),
			Container: container,
		})
	}
	return files, nil
}

// ListNames returns the names of regular files directly inside dir, sorted
// lexicographically. A missing directory yields an empty list rather than an
// error so optional lyric and cover directories can be probed without
// pre-checking.
func ListNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
