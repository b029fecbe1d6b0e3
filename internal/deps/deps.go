package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Requirement names an external binary and how much imgutil depends on it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the resolved form of a Requirement. Command holds the absolute
// path when the binary was found on PATH.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries resolves each requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = Check(req)
	}
	return results
}

// Check resolves one requirement. A command containing a path separator must
// name an executable file; a bare name is looked up on PATH.
func Check(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	switch {
	case status.Command == "":
		status.Detail = "command not configured"
	case strings.ContainsRune(status.Command, filepath.Separator):
		info, err := os.Stat(status.Command)
		if err != nil || !isExecutable(info) {
			status.Detail = fmt.Sprintf("binary %q not executable", status.Command)
			break
		}
		status.Available = true
	default:
		resolved, err := exec.LookPath(status.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", status.Command)
			break
		}
		status.Command = resolved
		status.Available = true
	}
	return status
}

func isExecutable(info os.FileInfo) bool {
	if info.IsDir() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0
}
