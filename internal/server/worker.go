package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/isdestimator/internal/estimator"
	"github.com/cwbudde/isdestimator/internal/store"
)

// traceDirer is implemented by stores that keep files on disk; progress
// traces are written next to their reports.
type traceDirer interface {
	BaseDir() string
}

// runJob executes an estimation job. A report already in reportStore under
// the job key is served without recomputation; otherwise the finished report
// is saved. reportStore may be nil.
func runJob(ctx context.Context, jm *JobManager, reportStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "family", job.Config.Family, "key", job.Key)

	if reportStore != nil {
		cached, err := reportStore.Load(job.Key)
		switch {
		case err == nil:
			slog.Info("Serving stored report", "job_id", jobID, "key", job.Key)
			completeJob(jm, jobID, &cached.Estimate, true)
			return nil
		case !errors.Is(err, store.ErrNotFound):
			slog.Warn("Failed to load stored report", "job_id", jobID, "key", job.Key, "error", err)
		}
	}

	trace := openTrace(reportStore, job.Key)
	if trace != nil {
		defer func() {
			if err := trace.Close(); err != nil {
				slog.Warn("Failed to close trace", "job_id", jobID, "error", err)
			}
		}()
	}

	start := time.Now()
	report, err := job.Config.Run(ctx, func(done, total int, entry estimator.AlgorithmReport) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Done, j.Total = done, total
		})
		jm.broadcaster.Broadcast(ProgressEvent{
			JobID:     jobID,
			State:     StateRunning,
			Done:      done,
			Total:     total,
			Algorithm: entry.Name,
			Estimate:  entry.Estimate,
			Timestamp: time.Now(),
		})
		if trace != nil {
			if err := trace.Write(store.NewTraceEntry(done, total, entry)); err != nil {
				slog.Warn("Failed to write trace entry", "job_id", jobID, "error", err)
			}
		}
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		markJobCancelled(jm, jobID)
		return err
	}
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", time.Since(start),
		"algorithms", len(report.Algorithms),
		"fastest", report.Fastest,
	)

	if reportStore != nil {
		if err := saveReport(reportStore, job, report); err != nil {
			slog.Error("Failed to save report", "job_id", jobID, "key", job.Key, "error", err)
		}
	}

	completeJob(jm, jobID, &report, false)
	return nil
}

func saveReport(reportStore store.Store, job Job, report estimator.Report) error {
	r, err := store.NewReport(job.Config.Family, job.Config, report)
	if err != nil {
		return err
	}
	if r.Key != job.Key {
		return fmt.Errorf("report key %s does not match job key %s", r.Key, job.Key)
	}
	return reportStore.Save(r)
}

func openTrace(reportStore store.Store, key string) *store.TraceWriter {
	d, ok := reportStore.(traceDirer)
	if !ok {
		return nil
	}
	tw, err := store.NewTraceWriter(d.BaseDir(), key, false)
	if err != nil {
		slog.Warn("Failed to open trace", "key", key, "error", err)
		return nil
	}
	return tw
}

func completeJob(jm *JobManager, jobID string, report *estimator.Report, cached bool) {
	endTime := time.Now()
	var done int
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Report = report
		j.Cached = cached
		j.Done = len(report.Algorithms)
		j.Total = len(report.Algorithms)
		j.EndTime = &endTime
		done = j.Done
	})

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		Done:      done,
		Total:     done,
		Timestamp: endTime,
	})
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateFailed,
		Error:     err.Error(),
		Timestamp: endTime,
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCancelled,
		Timestamp: endTime,
	})
	slog.Info("Job cancelled", "job_id", jobID)
}
