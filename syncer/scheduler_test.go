package syncer

import (
	"context"
	"testing"
	"time"
)

type countingRunner struct {
	cycles chan struct{}
}

func (c *countingRunner) SyncCycle(_ context.Context) Report {
	c.cycles <- struct{}{}
	return Report{}
}

func TestSchedulerRunsImmediately(t *testing.T) {
	runner := &countingRunner{cycles: make(chan struct{}, 10)}
	scheduler := NewScheduler(runner, time.Hour, testLogger())

	scheduler.Start()
	defer scheduler.Stop()

	select {
	case <-runner.cycles:
	case <-time.After(time.Second):
		t.Fatal("no sync cycle within a second of starting")
	}
}

func TestSchedulerTicks(t *testing.T) {
	runner := &countingRunner{cycles: make(chan struct{}, 10)}
	scheduler := NewScheduler(runner, 10*time.Millisecond, testLogger())

	scheduler.Start()
	defer scheduler.Stop()

	// the immediate cycle plus at least one tick
	for i := 0; i < 2; i++ {
		select {
		case <-runner.cycles:
		case <-time.After(time.Second):
			t.Fatalf("only %d sync cycles within a second", i)
		}
	}
}
