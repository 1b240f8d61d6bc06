// Package jobmgr runs named interval jobs with cancellation, status
// callbacks and in-memory tracking of what is running.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(func(msg string) {
//	    log.Println("JOB:", msg)
//	})
//
//	_ = jm.StartEvery(ctx, "heartbeat", time.Minute, func(ctx context.Context) {
//	    // one tick of work
//	})
//
//	// later...
//	jm.StopAll()
//
// There is no retry logic and no persistence. Interval jobs fire every tick in
// a fresh goroutine, so a slow tick never delays the next one.
package jobmgr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Job represents a running interval job.
// Jobs are added and removed by Manager automatically.
type Job struct {
	Name   string
	Cancel context.CancelFunc
	done   chan struct{}
}

// StatusReporter receives lifecycle events for jobs.
// Example messages:
//
//	running:heartbeat
//	done:heartbeat
type StatusReporter func(string)

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	ticks    sync.WaitGroup
	Reporter StatusReporter
}

// NewManager creates a new Manager.
// The reporter callback may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// StartEvery calls tick every interval until the job is stopped or parent
// is cancelled. Each tick runs in its own goroutine; ticks may overlap when
// one takes longer than the interval.
func (m *Manager) StartEvery(parent context.Context, name string, interval time.Duration, tick func(ctx context.Context)) error {
	if interval <= 0 {
		return fmt.Errorf("job '%s': interval must be positive, got %v", name, interval)
	}
	job, ctx, err := m.add(parent, name)
	if err != nil {
		return err
	}

	go func() {
		defer m.finish(job)
		m.report("running:" + name)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				m.report("done:" + name)
				return
			case <-ticker.C:
				m.ticks.Add(1)
				go func() {
					defer m.ticks.Done()
					tick(ctx)
				}()
			}
		}
	}()
	return nil
}

// StopAll cancels every job and waits for their loops to exit. In-flight
// ticks are cancelled through their context but not waited for.
func (m *Manager) StopAll() {
	m.mu.Lock()
	jobs := make([]*Job, 0, len(m.jobs))
	for name, job := range m.jobs {
		jobs = append(jobs, job)
		delete(m.jobs, name)
	}
	m.mu.Unlock()

	for _, job := range jobs {
		job.Cancel()
	}
	for _, job := range jobs {
		<-job.done
	}
}

// Wait blocks until every tick started so far has returned.
func (m *Manager) Wait() {
	m.ticks.Wait()
}

// List returns the sorted names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active jobs.
// Example:
//
//	"Running jobs: carbonitex, cachet"
//
// If none are running: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) add(parent context.Context, name string) (*Job, context.Context, error) {
	if parent == nil {
		parent = context.Background()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[name]; exists {
		return nil, nil, fmt.Errorf("job '%s' is already running", name)
	}

	ctx, cancel := context.WithCancel(parent)
	job := &Job{Name: name, Cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = job
	return job, ctx, nil
}

func (m *Manager) finish(job *Job) {
	m.mu.Lock()
	if m.jobs[job.Name] == job {
		delete(m.jobs, job.Name)
	}
	m.mu.Unlock()
	job.Cancel()
	close(job.done)
}

// report delivers lifecycle messages to the reporter if present.
func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
