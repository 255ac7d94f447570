package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"lyricmux/internal/config"
	"lyricmux/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
// Lyric and cover directories are never written to, so write access is not
// required.
func CheckReadableDirectory(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckCreatableDirectory verifies that the directory exists with read/write
// access, or that it could be created: a missing path passes when its nearest
// existing ancestor is a writable directory. Used for directories the run
// command creates on startup, so preflight does not fail on state that a real
// run would set up itself.
func CheckCreatableDirectory(name, path string) Result {
	probe := path
	for {
		info, err := os.Stat(probe)
		if err != nil {
			if !os.IsNotExist(err) {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat %s: %v)", path, probe, err)}
			}
			parent := filepath.Dir(probe)
			if parent == probe {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", path)}
			}
			probe = parent
			continue
		}
		if !info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, probe)}
		}
		if err := unix.Access(probe, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions on %s: %v)", path, probe, err)}
		}
		if probe == path {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created under %s)", path, probe)}
	}
}

// CheckSystemDeps evaluates the external binaries for the given config. Both
// the run command and the preflight command use this to avoid duplicating the
// requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Defaults(cfg.FFmpeg.Binary, cfg.FFmpeg.ProbeBinary))
}
