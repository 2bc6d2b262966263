// Package shell runs the fixed command templates the daemon uses to talk to
// the Android battery tooling. Commands are always built internally and must
// never contain untrusted input.
package shell

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// ErrSpawn is returned when the shell itself could not be started, as
// opposed to a command that ran and exited non-zero.
var ErrSpawn = errors.New("failed to spawn shell")

// SpawnFailureCode is the exit code reported together with ErrSpawn.
const SpawnFailureCode = -1

// Executor runs a single command line.
type Executor interface {
	// Run executes command and returns its combined stdout/stderr and exit
	// code. err is non-nil only when the command could not be started.
	Run(command string) (output string, exitCode int, err error)
}

// Shell executes commands through a POSIX shell.
type Shell struct {
	// Path is the shell binary, "sh" when empty.
	Path string
}

var _ Executor = &Shell{}

func (s *Shell) Run(command string) (string, int, error) {
	sh := s.Path
	if sh == "" {
		sh = "sh"
	}

	var out bytes.Buffer
	cmd := exec.Command(sh, "-c", command)
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	output := strings.TrimSpace(out.String())
	if err == nil {
		return output, 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, exitErr.ExitCode(), nil
	}

	return "", SpawnFailureCode, pkgerrors.Wrapf(ErrSpawn, "%s: %v", sh, err)
}
