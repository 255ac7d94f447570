package lyrics

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"lyricmux/internal/scan"
)

// Scratch is a temporary UTF-8 lyric file handed to ffmpeg as a mux input.
type Scratch struct {
	path string
	once sync.Once
}

// AcquireScratch writes text to a fresh uniquely named file in dir and
// returns a handle for it. Each acquisition gets its own file, so concurrent
// tasks can never clobber each other's scratch lyrics. Callers defer
// Release so the file is removed on every exit path.
func AcquireScratch(dir, text string) (*Scratch, error) {
	path := filepath.Join(dir, scan.ScratchPrefix+uuid.NewString()+".lrc")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return nil, err
	}
	return &Scratch{path: path}, nil
}

// Path returns the scratch file location.
func (s *Scratch) Path() string {
	return s.path
}

// Release removes the scratch file. It is safe to call more than once.
func (s *Scratch) Release() {
	s.once.Do(func() {
		os.Remove(s.path)
	})
}
