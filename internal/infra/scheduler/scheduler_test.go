package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type countingRunner struct {
	calls   atomic.Int32
	active  atomic.Int32
	overlap atomic.Bool
	err     error
}

func (r *countingRunner) Run(ctx context.Context) (int, error) {
	if r.active.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.active.Add(-1)
	r.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected a deadline")
	}
	return 4, r.err
}

func TestRunNowSerializesPasses(t *testing.T) {
	runner := &countingRunner{}
	s := NewRegenerationScheduler(runner, discardLogger(), "@daily")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RunNow("test")
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 8, runner.calls.Load())
	assert.False(t, runner.overlap.Load())
}

func TestRunNowSurvivesErrors(t *testing.T) {
	runner := &countingRunner{err: errors.New("upstream down")}
	s := NewRegenerationScheduler(runner, discardLogger(), "@daily")

	s.RunNow("first")
	s.RunNow("second")
	assert.EqualValues(t, 2, runner.calls.Load())
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewRegenerationScheduler(&countingRunner{}, discardLogger(), "not a spec")
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewRegenerationScheduler(&countingRunner{}, discardLogger(), "0 0 * * *")
	require.NoError(t, s.Start())
	assert.Len(t, s.cronEngine.Entries(), 1)
	s.Stop()
}
