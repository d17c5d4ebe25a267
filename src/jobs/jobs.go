package jobs

import (
	"context"
	"sync"
	"time"
)

// Job is a handle on some background work: the dev server, a watcher. The
// owner asks it to stop with Cancel; the work reports completion with Finish.
type Job struct {
	Name string

	ctx      context.Context
	cancel   context.CancelFunc
	finished chan struct{}
	once     sync.Once
}

func New(name string) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	return &Job{
		Name:     name,
		ctx:      ctx,
		cancel:   cancel,
		finished: make(chan struct{}),
	}
}

// Finished returns a job that is already done, for work that turned out to
// have nothing to do.
func Finished(name string) *Job {
	return New(name).Finish()
}

// Finish marks the job done. Calling it more than once is fine.
func (j *Job) Finish() *Job {
	j.once.Do(func() {
		close(j.finished)
		j.cancel()
	})
	return j
}

func (j *Job) Finished() <-chan struct{} {
	return j.finished
}

func (j *Job) Cancel() {
	j.cancel()
}

func (j *Job) Canceled() <-chan struct{} {
	return j.ctx.Done()
}

// Ctx is cancelled when the job is.
func (j *Job) Ctx() context.Context {
	return j.ctx
}

func (j *Job) IsFinished() bool {
	select {
	case <-j.finished:
		return true
	default:
		return false
	}
}

func (j *Job) String() string {
	return j.Name
}

type Jobs []*Job

// CancelAndWait cancels every job and waits up to timeout for them to finish.
// It returns the jobs that were still running at the deadline.
func (js Jobs) CancelAndWait(timeout time.Duration) []*Job {
	for _, j := range js {
		j.Cancel()
	}

	allDone := make(chan struct{})
	go func() {
		for _, j := range js {
			<-j.finished
		}
		close(allDone)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-allDone:
		return nil
	case <-timer.C:
		return js.unfinished()
	}
}

func (js Jobs) ListUnfinished() []string {
	names := []string{}
	for _, j := range js.unfinished() {
		names = append(names, j.Name)
	}
	return names
}

func (js Jobs) unfinished() []*Job {
	var result []*Job
	for _, j := range js {
		if !j.IsFinished() {
			result = append(result, j)
		}
	}
	return result
}
