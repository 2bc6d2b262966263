package shell

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellRun(t *testing.T) {
	s := &Shell{}

	out, code, err := s.Run("echo hello; echo oops 1>&2")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\noops", out)

	out, code, err = s.Run("echo failing; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, "failing", out)
}

func TestShellSpawnFailure(t *testing.T) {
	s := &Shell{Path: "/nonexistent/shell"}

	_, code, err := s.Run("true")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSpawn))
	assert.Equal(t, SpawnFailureCode, code)
}

type result struct {
	code int
	err  error
}

type scriptedExecutor struct {
	results []result
	calls   []string
}

func (s *scriptedExecutor) Run(command string) (string, int, error) {
	s.calls = append(s.calls, command)
	r := s.results[len(s.calls)-1]
	return "out", r.code, r.err
}

func newTestRetrying(e Executor, sleeps *[]time.Duration) *Retrying {
	r := NewRetrying(e)
	r.Sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	r.Log = l
	return r
}

func TestRetryingSucceedsOnThirdAttempt(t *testing.T) {
	e := &scriptedExecutor{results: []result{{code: 1}, {code: SpawnFailureCode, err: ErrSpawn}, {code: 0}}}
	var sleeps []time.Duration
	r := newTestRetrying(e, &sleeps)

	assert.True(t, r.Apply("reset battery", "dumpsys battery reset"))
	assert.Len(t, e.calls, 3)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeps)
}

func TestRetryingGivesUp(t *testing.T) {
	e := &scriptedExecutor{results: []result{{code: 1}, {code: 2}, {code: 255}, {code: 0}}}
	var sleeps []time.Duration
	r := newTestRetrying(e, &sleeps)

	assert.False(t, r.Apply("set level", "dumpsys battery set level 50"))
	assert.Len(t, e.calls, 3)
	assert.Len(t, sleeps, 2)
}

func TestRetryingFirstAttempt(t *testing.T) {
	e := &scriptedExecutor{results: []result{{code: 0}}}
	var sleeps []time.Duration
	r := newTestRetrying(e, &sleeps)

	assert.True(t, r.Apply("noop", "true"))
	assert.Len(t, e.calls, 1)
	assert.Empty(t, sleeps)
}
