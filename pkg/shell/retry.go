package shell

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
)

// Gateway applies a state-changing system command. It is the only path
// through which the daemon changes externally visible OS state.
type Gateway interface {
	// Apply runs command, described by description in the log, and reports
	// whether it eventually succeeded.
	Apply(description, command string) bool
}

// Retrying is a Gateway that retries failed commands with a fixed backoff.
type Retrying struct {
	Executor Executor
	Attempts int
	Backoff  time.Duration
	// Sleep waits between attempts, time.Sleep when nil.
	Sleep func(time.Duration)
	Log   logrus.FieldLogger
}

var _ Gateway = &Retrying{}

// NewRetrying returns a Retrying gateway with 3 attempts and 1s backoff.
func NewRetrying(e Executor) *Retrying {
	return &Retrying{
		Executor: e,
		Attempts: DefaultAttempts,
		Backoff:  DefaultBackoff,
		Sleep:    time.Sleep,
		Log:      logrus.StandardLogger(),
	}
}

func (r *Retrying) Apply(description, command string) bool {
	log := r.Log.WithFields(logrus.Fields{
		"operation": description,
		"command":   command,
	})
	log.Info("executing")

	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		output, code, err := r.Executor.Run(command)

		entry := log.WithFields(logrus.Fields{
			"attempt":  attempt,
			"exitCode": code,
			"output":   output,
		})
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Info("command output")

		if err == nil && code == 0 {
			log.Info("succeeded")
			return true
		}

		if attempt < attempts {
			r.sleep(r.Backoff)
		}
	}

	log.WithField("attempts", attempts).Error("failed")
	return false
}

func (r *Retrying) sleep(d time.Duration) {
	if r.Sleep == nil {
		time.Sleep(d)
		return
	}
	r.Sleep(d)
}
