// Package jobmgr runs and tracks named background jobs: the telemetry sink,
// the cooldown sweeper, and anything else the bot keeps alive for its whole
// run. Jobs are goroutines bound to a parent context; stopping one cancels
// its context, and StopAll waits for everything on shutdown.
package jobmgr

import (
	"context"
	"fmt"
	"sync"
)

// StatusReporter receives job lifecycle messages, e.g. "running:telemetry"
// or "error:sweeper:storage closed".
type StatusReporter func(string)

type job struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager starts, stops, and tracks background jobs. Safe for concurrent
// use.
type Manager struct {
	mu       sync.Mutex
	parent   context.Context
	jobs     map[string]*job
	reporter StatusReporter
}

// NewManager creates a manager whose jobs inherit from parent; canceling
// parent cancels every job. reporter may be nil.
func NewManager(parent context.Context, reporter StatusReporter) *Manager {
	if parent == nil {
		parent = context.Background()
	}
	return &Manager{
		parent:   parent,
		jobs:     make(map[string]*job),
		reporter: reporter,
	}
}

// Start launches runner as a named goroutine. A name can only run once at a
// time; finished jobs free their name automatically.
func (m *Manager) Start(name string, runner func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(m.parent)
	j := &job{name: name, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		cancel()
		return fmt.Errorf("job %q is already running", name)
	}
	m.jobs[name] = j
	m.mu.Unlock()

	go func() {
		defer close(j.done)
		m.report("running:" + name)
		if err := runner(ctx); err != nil && ctx.Err() == nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}
		m.mu.Lock()
		delete(m.jobs, name)
		m.mu.Unlock()
	}()
	return nil
}

// Stop cancels a running job and waits for it to finish.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	j, ok := m.jobs[name]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %q not running", name)
	}
	j.cancel()
	<-j.done
	return nil
}

// StopAll cancels every job and waits for all of them.
func (m *Manager) StopAll() {
	m.mu.Lock()
	running := make([]*job, 0, len(m.jobs))
	for _, j := range m.jobs {
		running = append(running, j)
	}
	m.mu.Unlock()

	for _, j := range running {
		j.cancel()
	}
	for _, j := range running {
		<-j.done
	}
}

// List returns the names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.jobs))
	for name := range m.jobs {
		out = append(out, name)
	}
	return out
}

func (m *Manager) report(s string) {
	if m.reporter != nil {
		m.reporter(s)
	}
}
