// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gammazero/deque"
	"github.com/rs/xid"
	"go.uber.org/zap"

	"likelisweep/internal/sweep"
)

// DefaultOutDir is where per-job stdout is captured.
const DefaultOutDir = ".stdout"

// Options configure one dispatch run.
type Options struct {
	Workers int    // max jobs in flight; <1 means 1
	DryRun  bool   // log argument lists without executing
	OutDir  string // stdout capture directory; "" means DefaultOutDir
	Logger  *zap.Logger
}

// Summary reports what one dispatch run did.
type Summary struct {
	Submitted int
	Succeeded int
	Failed    int
}

// result tracks one in-flight job. done is closed when the process
// (or dry-run no-op) finishes.
type result struct {
	job  sweep.Job
	out  string
	err  error
	done chan struct{}
}

// Run drains the job stream, executing each job as a child process
// with at most Workers in flight. Stdout of job N is captured to
// <OutDir>/<runID>_N.out; stderr passes through. Completion is
// reported in submission order via a pending queue, so logs stay
// deterministic even though processes finish in any order.
//
// A job failure is counted, logged, and does not stop the run. A
// generator error stops submission and is returned alongside the
// summary of whatever was already dispatched.
func Run(ctx context.Context, opts Options, jobs <-chan sweep.Job, genErr <-chan error) (Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	outDir := opts.OutDir
	if outDir == "" {
		outDir = DefaultOutDir
	}
	runID := xid.New().String()

	var sum Summary
	if !opts.DryRun {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return sum, err
		}
	}

	var pending deque.Deque[*result]
	reap := func(r *result) {
		<-r.done
		if r.err != nil {
			sum.Failed++
			logger.Warn("job failed",
				zap.Int("seq", r.job.Seq),
				zap.String("argv", strings.Join(r.job.Args, " ")),
				zap.Error(r.err))
			return
		}
		sum.Succeeded++
		logger.Info("job done",
			zap.Int("seq", r.job.Seq),
			zap.String("stdout", r.out))
	}

	logger.Info("dispatch start",
		zap.String("run", runID),
		zap.Int("workers", workers),
		zap.Bool("dry_run", opts.DryRun))

	for job := range jobs {
		if ctx.Err() != nil {
			break
		}
		for pending.Len() >= workers {
			reap(pending.PopFront())
		}
		pending.PushBack(start(ctx, opts.DryRun, logger, outDir, runID, job))
		sum.Submitted++
	}
	for pending.Len() > 0 {
		reap(pending.PopFront())
	}

	var err error
	if genErr != nil {
		err = <-genErr
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	logger.Info("dispatch end",
		zap.String("run", runID),
		zap.Int("submitted", sum.Submitted),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed))
	return sum, err
}

func start(ctx context.Context, dryRun bool, logger *zap.Logger, outDir, runID string, job sweep.Job) *result {
	r := &result{job: job, done: make(chan struct{})}
	if dryRun {
		logger.Info("dry-run", zap.Int("seq", job.Seq),
			zap.String("argv", strings.Join(job.Args, " ")))
		close(r.done)
		return r
	}
	r.out = filepath.Join(outDir, fmt.Sprintf("%s_%05d.out", runID, job.Seq))
	go func() {
		defer close(r.done)
		fh, err := os.Create(r.out)
		if err != nil {
			r.err = err
			return
		}
		defer func() { _ = fh.Close() }()
		cmd := exec.CommandContext(ctx, job.Args[0], job.Args[1:]...)
		cmd.Stdout = fh
		cmd.Stderr = os.Stderr
		r.err = cmd.Run()
	}()
	return r
}
