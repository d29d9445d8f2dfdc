package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/aatumaykin/nexcrew/internal/constants"
	"github.com/aatumaykin/nexcrew/internal/fsutil"
)

// ErrAlreadyRunning is returned when another daemon owns the workspace.
var ErrAlreadyRunning = errors.New("another nexcrew daemon is running in this workspace")

// acquirePID writes the current PID into the workspace. A PID file left by
// a process that is no longer alive is taken over.
func acquirePID(workspace string) (release func(), err error) {
	path := filepath.Join(workspace, constants.PIDFile)

	if pid, err := readPID(path); err == nil && pid != os.Getpid() && isRunning(pid) {
		return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}

	self := os.Getpid()
	if err := fsutil.WriteFileAtomic(path, []byte(strconv.Itoa(self)+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("failed to write PID file: %w", err)
	}

	return func() {
		if pid, err := readPID(path); err == nil && pid == self {
			_ = os.Remove(path)
		}
	}, nil
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// isRunning sends signal 0, which checks that the process exists.
func isRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
