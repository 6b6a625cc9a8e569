// FilePath: internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	nuts "github.com/vaudience/go-nuts"
)

// Job is a unit of periodic work
type Job interface {
	Run()
}

// Scheduler runs independent fixed-interval jobs
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]cron.EntryID
}

// New creates a scheduler. With skipIfBusy a tick is dropped while the
// previous run of the same job is still in flight; otherwise runs may overlap.
func New(skipIfBusy bool) *Scheduler {
	logger := cronLogger{}
	wrappers := []cron.JobWrapper{cron.Recover(logger)}
	if skipIfBusy {
		wrappers = append(wrappers, cron.SkipIfStillRunning(logger))
	}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(wrappers...)),
		jobs: map[string]cron.EntryID{},
	}
}

// Every schedules job to run at a fixed interval. The interval is kept exactly,
// including sub-second and fractional-second values.
func (s *Scheduler) Every(name string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s for job %s", interval, name)
	}
	id := s.cron.Schedule(fixedInterval(interval), job)
	s.jobs[name] = id
	nuts.L.Infof("[Scheduler] Job %s scheduled every %s", name, interval)
	return nil
}

// fixedInterval is a cron.Schedule firing every d after the previous activation.
// cron's own "@every" rounds to whole seconds.
type fixedInterval time.Duration

func (d fixedInterval) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// cronLogger routes cron's own messages to the service logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		nuts.L.Infof("[Scheduler] Previous run still in flight, tick skipped %v", keysAndValues)
	}
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	nuts.L.Errorf("[Scheduler] %s: %v %v", msg, err, keysAndValues)
}
