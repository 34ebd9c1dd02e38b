package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) CleanupExpiredTokens(context.Context) (int64, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestCleanupJobRunsOnInterval(t *testing.T) {
	cleaner := &countingCleaner{}
	job := NewCleanupJob(cleaner, 10*time.Millisecond, zerolog.Nop())

	job.Start(context.Background())
	assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	job.Stop()
	stopped := cleaner.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, cleaner.calls.Load(), "no runs after Stop")
}

func TestCleanupJobStopsWithContext(t *testing.T) {
	cleaner := &countingCleaner{}
	job := NewCleanupJob(cleaner, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the context ended")
	}
	assert.Zero(t, cleaner.calls.Load())
}

func TestRunOnceSurvivesErrors(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("database is down")}
	job := NewCleanupJob(cleaner, 0, zerolog.Nop())

	assert.NotPanics(t, func() { job.RunOnce(context.Background()) })
	assert.Equal(t, int32(1), cleaner.calls.Load())
	assert.Equal(t, 24*time.Hour, job.interval)
}
