// Package daemonize detaches the daemon from the shell that launched it.
//
// The Go runtime cannot fork safely, so the classic double fork is done by
// re-executing the current binary twice:
//
//   - stage 0 (launcher) starts stage 1 in a new session with its standard
//     streams on /dev/null and its working directory at /, then returns;
//   - stage 1 (session leader) ignores SIGHUP and SIGCHLD, starts stage 2
//     and exits, so stage 2 can never reacquire a controlling terminal;
//   - stage 2 resets its umask, moves to / and runs the daemon.
//
// Children only inherit stdin, stdout and stderr because the runtime opens
// every other descriptor close-on-exec.
package daemonize

import (
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// StageEnv carries the detach stage across re-executions.
const StageEnv = "BATTCAL_DETACH_STAGE"

type Stage int

const (
	// StageNone is a process that was not started by Detach.
	StageNone Stage = iota
	// StageSessionLeader is the intermediate process running in its own session.
	StageSessionLeader
	// StageDetached is the final, fully detached daemon process.
	StageDetached
)

// Current returns the stage of the running process.
func Current() Stage {
	v, err := strconv.Atoi(os.Getenv(StageEnv))
	if err != nil || v < int(StageNone) || v > int(StageDetached) {
		return StageNone
	}
	return Stage(v)
}

// Detach starts a detached copy of the current executable with args. The
// caller should exit 0 once it returns nil, and exit 1 otherwise.
func Detach(args []string) error {
	if err := spawn(StageSessionLeader, args, true); err != nil {
		return pkgerrors.Wrap(err, "failed to start session leader")
	}
	return nil
}

// Continue advances a process started by Detach. In the session leader it
// starts the final stage and reports done=true, the caller must then exit.
// In the final stage it finishes detaching and reports done=false, the
// caller should go on to run the daemon. In any other process it is a
// no-op.
func Continue(args []string) (done bool, err error) {
	switch Current() {
	case StageSessionLeader:
		signal.Ignore(syscall.SIGHUP, syscall.SIGCHLD)
		if err := spawn(StageDetached, args, false); err != nil {
			return true, pkgerrors.Wrap(err, "failed to start detached daemon")
		}
		return true, nil
	case StageDetached:
		// SIGCHLD must stay handled here: the daemon waits for its shell
		// commands and an ignored SIGCHLD makes the kernel reap them first.
		signal.Ignore(syscall.SIGHUP)
		unix.Umask(0)
		if err := os.Chdir("/"); err != nil {
			return false, pkgerrors.Wrap(err, "failed to change directory to /")
		}
		return false, nil
	default:
		return false, nil
	}
}

func spawn(stage Stage, args []string, newSession bool) error {
	exePath, err := os.Executable()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to get the path to the current executable")
	}

	cmd := exec.Command(exePath, args...)
	cmd.Env = append(withoutStage(os.Environ()), StageEnv+"="+strconv.Itoa(int(stage)))
	cmd.Dir = "/"
	// nil streams are connected to /dev/null.
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if newSession {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	}

	if err := cmd.Start(); err != nil {
		return pkgerrors.Wrapf(err, "failed to start %s", exePath)
	}

	return cmd.Process.Release()
}

func withoutStage(env []string) []string {
	prefix := StageEnv + "="
	out := make([]string, 0, len(env))
	for _, kv := range env {
		if len(kv) >= len(prefix) && kv[:len(prefix)] == prefix {
			continue
		}
		out = append(out, kv)
	}
	return out
}
