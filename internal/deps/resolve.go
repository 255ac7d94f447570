package deps

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ResolveTool reports the binary a configured tool command will execute.
// Commands containing a path separator are checked directly for an executable
// file; bare names resolve through PATH.
func ResolveTool(name, command, description string) Status {
	result := Status{
		Name:        name,
		Description: description,
	}

	command = strings.TrimSpace(command)
	if command == "" {
		result.Detail = "command not configured"
		return result
	}
	result.Command = command

	if strings.ContainsAny(command, `/\`) {
		info, err := os.Stat(command)
		if err == nil && isExecutable(info) {
			result.Available = true
			return result
		}
		result.Detail = fmt.Sprintf("binary %q not found", command)
		return result
	}

	if resolved, err := exec.LookPath(command); err == nil {
		result.Command = resolved
		result.Available = true
		return result
	}

	result.Detail = fmt.Sprintf("binary %q not found", command)
	return result
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
