// internal/app/app.go
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"likelisweep/internal/cli"
	"likelisweep/internal/dispatch"
	"likelisweep/internal/sweep"
	"likelisweep/internal/version"
)

const name = "likelisweep"

// RunContext parses argv, generates the job stream, and dispatches it.
// Returns the process exit code: 0 ok, 2 usage error, 1 runtime error.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := cli.NewFlagSet(name)
	fs.SetOutput(io.Discard)

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(stdout)
			fs.Usage()
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(stderr)
		fs.Usage()
		return 2
	}
	if opts.Version {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", name, version.Version)
		return 0
	}

	// .env may override the external tool name, e.g. to point at a
	// locally built binary.
	_ = godotenv.Load()
	program := opts.Program
	if env := os.Getenv("LIKELISWEEP_PROGRAM"); env != "" && program == "likeligrid" {
		program = env
	}

	logger := newLogger(stderr, opts.Quiet)
	defer func() { _ = logger.Sync() }()

	cfg := sweep.Config{
		Program:     program,
		Jobs:        opts.Jobs,
		Passthrough: opts.Passthrough,
		Infiles:     opts.Infiles,
		Range:       sweep.Range{Begin: opts.Begin, End: opts.End},
		Mode:        mode(opts),
		Format:      opts.Format,
	}
	if opts.DryRun {
		if total, err := sweep.Count(cfg); err == nil {
			logger.Info("sweep planned",
				zap.Int("jobs", total),
				zap.Int("files", len(cfg.Infiles)),
				zap.Int("begin", cfg.Range.Begin),
				zap.Int("end", cfg.Range.End))
		}
	}

	jobs, errc := sweep.Stream(parent, cfg)
	// The external tool is itself parallel (-j), so the driver runs
	// one process at a time.
	sum, err := dispatch.Run(parent, dispatch.Options{
		Workers: 1,
		DryRun:  opts.DryRun,
		OutDir:  opts.OutDir,
		Logger:  logger,
	}, jobs, errc)
	if err != nil {
		logger.Error("sweep aborted", zap.Error(err),
			zap.Int("dispatched", sum.Submitted))
		return 1
	}
	if sum.Failed > 0 {
		logger.Warn("some jobs failed", zap.Int("failed", sum.Failed))
	}
	_, _ = fmt.Fprintf(stdout, "End of %s\n", name)
	return 0
}

// Run is RunContext with a background context.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func mode(opts cli.Options) sweep.Mode {
	switch {
	case opts.Epistasis:
		return sweep.ModeEpistasis
	case opts.TP53:
		return sweep.ModeTP53
	default:
		return sweep.ModeNone
	}
}

func newLogger(w io.Writer, quiet bool) *zap.Logger {
	lvl := zapcore.InfoLevel
	if quiet {
		lvl = zapcore.WarnLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl))
}
