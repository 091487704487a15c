// Package progress reports workflow execution to the user stream: per-task
// start/finish lines and a summary once the graph drains.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/chemtools/qcflow/internal/logger"
	"github.com/chemtools/qcflow/internal/workflow"
)

// Reporter is a workflow handler that narrates task execution. Attach it to
// every task whose progress the user should see.
type Reporter struct {
	mu        sync.Mutex
	startTime time.Time
	started   map[string]time.Time
	completed int
	failed    int
}

// NewReporter creates a reporter.
func NewReporter() *Reporter {
	return &Reporter{
		startTime: time.Now(),
		started:   make(map[string]time.Time),
	}
}

// OnStart records the task start and tells the user.
func (r *Reporter) OnStart(task workflow.Task) error {
	r.mu.Lock()
	r.started[task.Name()] = time.Now()
	r.mu.Unlock()

	logger.User.Startingf("Running %s", task.Name())
	return nil
}

// OnFinish records the outcome with its duration.
func (r *Reporter) OnFinish(task workflow.Task, result interface{}, err error) error {
	r.mu.Lock()
	start, ok := r.started[task.Name()]
	if err != nil {
		r.failed++
	} else {
		r.completed++
	}
	r.mu.Unlock()

	elapsed := time.Duration(0)
	if ok {
		elapsed = time.Since(start)
	}

	if err != nil {
		logger.User.Errorf("%s failed after %s: %v", task.Name(), FormatDuration(elapsed), err)
	} else {
		logger.User.Successf("%s finished in %s", task.Name(), FormatDuration(elapsed))
	}
	return nil
}

// Summary returns a one-line account of the run so far.
func (r *Reporter) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("%d task(s) completed", r.completed)
	if r.failed > 0 {
		line += fmt.Sprintf(", %d failed", r.failed)
	}
	return line + " in " + FormatDuration(time.Since(r.startTime))
}

// Completed returns the number of successful tasks.
func (r *Reporter) Completed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Failed returns the number of failed tasks.
func (r *Reporter) Failed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

// FormatDuration renders a duration at task-appropriate granularity.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
