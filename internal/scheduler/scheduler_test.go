package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name string
	runs int
	err  error
}

func (j *fakeJob) Name() string { return j.name }

func (j *fakeJob) Run() error {
	j.runs++
	return j.err
}

func newTestScheduler() *Scheduler {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	return New(logger)
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := newTestScheduler()

	err := s.AddJob("not a schedule", &fakeJob{name: "bad"})
	assert.Error(t, err)
}

func TestAddJob_ValidSchedules(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob("@every 30s", &fakeJob{name: "rescan"}))
	require.NoError(t, s.AddJob("0 5 0 * * *", &fakeJob{name: "snapshot"}))
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler()

	job := &fakeJob{name: "manual"}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, job.runs)
}

func TestRunNow_PropagatesError(t *testing.T) {
	s := newTestScheduler()

	job := &fakeJob{name: "failing", err: errors.New("boom")}
	assert.Error(t, s.RunNow(job))
	assert.Equal(t, 1, job.runs)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()

	job := &fakeJob{name: "idle"}
	require.NoError(t, s.AddJob("@every 1h", job))

	s.Start()
	s.Stop()

	assert.Zero(t, job.runs)
}
