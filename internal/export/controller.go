// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export drives CSV exports against the literature backend. The
// immediate path streams the currently loaded records into a file in one
// request. The bulk path starts a server-side task covering every record
// matching the filters, polls its progress on a fixed interval, applies
// each status update through a single state machine, and downloads the
// finished file. Cancellation is client-authoritative: once a job is
// cancelled locally, late poll responses are discarded.
// Implements: prd003-export; docs/ARCHITECTURE § Export Controller.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pdiddy/wos-client/pkg/types"
)

// ErrJobActive is returned when an export is requested while another one
// is still running. One export job per session.
var ErrJobActive = errors.New("an export job is already running")

// ErrNoItems is returned by ExportShown when there is nothing to export.
var ErrNoItems = errors.New("no loaded records to export")

// Mode distinguishes the two export paths.
type Mode string

const (
	// ModeImmediate exports only the currently loaded record list.
	ModeImmediate Mode = "immediate"

	// ModeBulk exports every record matching the filters server-side.
	ModeBulk Mode = "bulk"
)

// Backend is the slice of the API client the controller needs.
type Backend interface {
	ImmediateExport(ctx context.Context, items []types.PaperRecord, w io.Writer) (int64, error)
	StartBulkExport(ctx context.Context, clauses []types.FilterClause) (taskID string, maxLimit int, err error)
	JobStatus(ctx context.Context, taskID string) (types.JobProgress, error)
	CancelJob(ctx context.Context, taskID string) error
	DownloadFile(ctx context.Context, downloadURL string, w io.Writer) (int64, error)
}

// Job is a snapshot of the current export job. Zero value means idle.
type Job struct {
	TaskID    string
	Mode      Mode
	Status    types.JobStatus
	Processed int
	Total     int
	MaxLimit  int
	Error     string
	Warning   string
	FileName  string

	// SavedPath is where the finished CSV was written. Set exactly once,
	// when the job reaches completed.
	SavedPath string
}

// Controller owns at most one export job at a time. Safe for concurrent
// use; all mutation goes through the internal state machine.
type Controller struct {
	backend Backend
	cfg     types.ExportConfig

	// OnUpdate, when set before starting a job, is invoked with a job
	// snapshot after every accepted state change. Called from the poll
	// goroutine; keep it fast.
	OnUpdate func(Job)

	mu         sync.Mutex
	job        Job
	busy       bool
	poll       *poller
	pollCancel context.CancelFunc
	done       chan struct{}
	graceTimer *time.Timer
}

// New builds a Controller. Zero-value config fields fall back to a
// 2-second poll interval, the working directory for output, and a
// 3-second grace delay before a finished job auto-resets.
func New(backend Backend, cfg types.ExportConfig) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.GraceDelay <= 0 {
		cfg.GraceDelay = 3 * time.Second
	}
	return &Controller{backend: backend, cfg: cfg, job: Job{Status: types.StatusIdle}}
}

// Job returns a snapshot of the current job.
func (c *Controller) Job() Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.job
}

// ExportShown writes the given records to a CSV file via the one-shot
// export endpoint and returns the written path. No intermediate states
// and no retry: on any failure the partial file is removed and an error
// returned.
func (c *Controller) ExportShown(ctx context.Context, items []types.PaperRecord) (string, error) {
	if len(items) == 0 {
		return "", ErrNoItems
	}
	if err := c.acquire(ModeImmediate); err != nil {
		return "", err
	}
	defer c.release()

	path := filepath.Join(c.cfg.OutputDir, "wos_paper_detail.csv")
	if err := c.writeFile(path, func(f *os.File) error {
		_, err := c.backend.ImmediateExport(ctx, items, f)
		return err
	}); err != nil {
		return "", err
	}
	return path, nil
}

// ExportAll starts a server-side bulk export for every record matching
// clauses and begins polling its progress. It returns the task
// identifier as soon as the server accepts the task; the job then runs
// in the background until a terminal state. Track it with Job, OnUpdate,
// or Wait.
func (c *Controller) ExportAll(ctx context.Context, clauses []types.FilterClause) (string, error) {
	if err := c.acquire(ModeBulk); err != nil {
		return "", err
	}

	taskID, maxLimit, err := c.backend.StartBulkExport(ctx, clauses)
	if err != nil {
		c.release()
		return "", err
	}

	pollCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.busy = false
	c.job = Job{
		TaskID:   taskID,
		Mode:     ModeBulk,
		Status:   types.StatusStarted,
		MaxLimit: maxLimit,
	}
	c.done = make(chan struct{})
	c.pollCancel = cancel
	c.poll = startPoller(c.cfg.PollInterval, func() bool {
		return c.pollOnce(pollCtx, taskID)
	})
	c.mu.Unlock()

	c.notify()
	return taskID, nil
}

// Cancel stops the current bulk job. The local state moves to cancelled
// immediately and irrevocably; the server is notified best-effort, and
// any poll response still in flight is discarded. Idempotent: cancelling
// an already-terminal or idle job is a no-op.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	if c.job.Status == types.StatusIdle || c.job.Status.Terminal() {
		c.mu.Unlock()
		return nil
	}
	taskID := c.job.TaskID
	c.job.Status = types.StatusCancelled
	c.closeJobLocked()
	c.mu.Unlock()

	c.notify()
	if taskID != "" {
		// Advisory only; local cancellation stands either way.
		if err := c.backend.CancelJob(ctx, taskID); err != nil {
			return fmt.Errorf("cancel acknowledged locally, server notify failed: %w", err)
		}
	}
	return nil
}

// Wait blocks until the current bulk job reaches a terminal state or ctx
// expires, and returns the final job snapshot.
func (c *Controller) Wait(ctx context.Context) (Job, error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return c.Job(), nil
	}
	select {
	case <-done:
		return c.Job(), nil
	case <-ctx.Done():
		return c.Job(), ctx.Err()
	}
}

// Dismiss resets a finished job back to idle so a new export can start.
// No-op while a job is still running.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.job.Status.Terminal() {
		return
	}
	if c.graceTimer != nil {
		c.graceTimer.Stop()
		c.graceTimer = nil
	}
	c.job = Job{Status: types.StatusIdle}
}

// Close tears the controller down: stops any active poller and timers.
// The job state is left as-is for inspection.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeJobLocked()
	if c.graceTimer != nil {
		c.graceTimer.Stop()
		c.graceTimer = nil
	}
}

// acquire reserves the single job slot.
func (c *Controller) acquire(mode Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy || (c.job.Status != types.StatusIdle && !c.job.Status.Terminal()) {
		return ErrJobActive
	}
	if c.graceTimer != nil {
		c.graceTimer.Stop()
		c.graceTimer = nil
	}
	c.busy = true
	c.job = Job{Mode: mode, Status: types.StatusIdle}
	return nil
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// pollOnce fetches one status update and folds it into the job. Returns
// false when polling should stop.
func (c *Controller) pollOnce(ctx context.Context, taskID string) bool {
	progress, err := c.backend.JobStatus(ctx, taskID)
	if err != nil {
		return c.failJob("progress unavailable")
	}

	if progress.Status == types.StatusCompleted {
		return c.finishJob(ctx, progress)
	}

	changed, cont := c.applyProgress(progress)
	if changed {
		c.notify()
	}
	return cont
}

// statusRank orders the forward states of a bulk job. Poll responses
// that would move the job backwards are stale and get discarded.
func statusRank(s types.JobStatus) int {
	switch s {
	case types.StatusStarted:
		return 1
	case types.StatusQuerying:
		return 2
	case types.StatusDownloading:
		return 3
	case types.StatusProcessing:
		return 4
	case types.StatusGeneratingCSV:
		return 5
	}
	return 0
}

// applyProgress folds one non-completed poll response into the job.
// Reports whether anything changed and whether polling should continue.
func (c *Controller) applyProgress(p types.JobProgress) (changed, cont bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.job.Status.Terminal() {
		// Late response after cancel/error; never mutate.
		return false, false
	}

	switch p.Status {
	case types.StatusError:
		msg := p.Error
		if msg == "" {
			msg = "export failed"
		}
		c.job.Status = types.StatusError
		c.job.Error = msg
		c.closeJobLocked()
		return true, false

	case types.StatusNoData:
		c.job.Status = types.StatusNoData
		c.closeJobLocked()
		return true, false

	case types.StatusCancelled:
		c.job.Status = types.StatusCancelled
		c.closeJobLocked()
		return true, false
	}

	if statusRank(p.Status) < statusRank(c.job.Status) {
		return false, true
	}

	changed = p.Status != c.job.Status
	c.job.Status = p.Status
	if p.ProcessedCount > c.job.Processed {
		c.job.Processed = p.ProcessedCount
		changed = true
	}
	if p.TotalCount > c.job.Total {
		c.job.Total = p.TotalCount
		changed = true
	}
	if p.Warning != "" && p.Warning != c.job.Warning {
		c.job.Warning = p.Warning
		changed = true
	}
	if p.FileName != "" {
		c.job.FileName = p.FileName
	}
	return changed, true
}

// finishJob downloads the generated file and commits the completed
// state. The download happens before the transition so that a failed
// save surfaces as an error state and never exposes a partial file; the
// commit re-checks for cancellation so a cancel racing the download
// still wins.
func (c *Controller) finishJob(ctx context.Context, p types.JobProgress) bool {
	c.mu.Lock()
	if c.job.Status.Terminal() {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	name := p.FileName
	if name == "" {
		name = "wos_export_" + p.TaskID + ".csv"
	}
	path := filepath.Join(c.cfg.OutputDir, name)

	err := c.writeFile(path, func(f *os.File) error {
		_, derr := c.backend.DownloadFile(ctx, p.DownloadURL, f)
		return derr
	})

	c.mu.Lock()
	if c.job.Status.Terminal() {
		// Cancelled while downloading; drop the file.
		c.mu.Unlock()
		if err == nil {
			os.Remove(path)
		}
		return false
	}
	if err != nil {
		c.job.Status = types.StatusError
		c.job.Error = "saving export file: " + err.Error()
	} else {
		c.job.Status = types.StatusCompleted
		if p.ProcessedCount > c.job.Processed {
			c.job.Processed = p.ProcessedCount
		}
		if p.TotalCount > c.job.Total {
			c.job.Total = p.TotalCount
		}
		if c.job.Total < c.job.Processed {
			c.job.Total = c.job.Processed
		}
		c.job.FileName = name
		c.job.SavedPath = path
		c.graceTimer = time.AfterFunc(c.cfg.GraceDelay, c.Dismiss)
	}
	c.closeJobLocked()
	c.mu.Unlock()

	c.notify()
	return false
}

// failJob moves a running job to error with msg and stops polling.
func (c *Controller) failJob(msg string) bool {
	c.mu.Lock()
	if c.job.Status.Terminal() {
		c.mu.Unlock()
		return false
	}
	c.job.Status = types.StatusError
	c.job.Error = msg
	c.closeJobLocked()
	c.mu.Unlock()

	c.notify()
	return false
}

// closeJobLocked releases the polling resources for the current job.
// Caller holds c.mu. The poller is stopped outside the poll goroutine's
// own path too (Cancel, Close); Stop is idempotent so both paths are
// safe.
func (c *Controller) closeJobLocked() {
	if c.pollCancel != nil {
		c.pollCancel()
		c.pollCancel = nil
	}
	if c.poll != nil {
		c.poll.Stop()
		c.poll = nil
	}
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
}

func (c *Controller) notify() {
	if c.OnUpdate == nil {
		return
	}
	c.OnUpdate(c.Job())
}

// writeFile streams into path through a temp file in the same directory
// so readers never observe a partial export.
func (c *Controller) writeFile(path string, fill func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".wos-export-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := fill(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
