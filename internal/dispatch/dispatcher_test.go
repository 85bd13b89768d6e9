package dispatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"likelisweep/internal/sweep"
)

func feed(jobs ...sweep.Job) (<-chan sweep.Job, <-chan error) {
	jc := make(chan sweep.Job, len(jobs))
	for _, j := range jobs {
		jc <- j
	}
	close(jc)
	ec := make(chan error, 1)
	close(ec)
	return jc, ec
}

func TestRunDryRun(t *testing.T) {
	chk := require.New(t)
	outDir := filepath.Join(t.TempDir(), ".stdout")
	jc, ec := feed(
		sweep.Job{Seq: 0, Args: []string{"likeligrid", "-j1", "-s2", "a.json.gz"}},
		sweep.Job{Seq: 1, Args: []string{"likeligrid", "-j1", "-s3", "a.json.gz"}},
	)
	sum, err := Run(context.Background(), Options{
		DryRun: true,
		OutDir: outDir,
		Logger: zaptest.NewLogger(t),
	}, jc, ec)
	chk.NoError(err)
	chk.Equal(Summary{Submitted: 2, Succeeded: 2}, sum)

	_, statErr := os.Stat(outDir)
	chk.True(os.IsNotExist(statErr), "dry run must not create the capture dir")
}

func TestRunCapturesStdout(t *testing.T) {
	chk := require.New(t)
	outDir := filepath.Join(t.TempDir(), ".stdout")
	jc, ec := feed(sweep.Job{Seq: 0, Args: []string{"echo", "hello"}})

	sum, err := Run(context.Background(), Options{
		Workers: 2,
		OutDir:  outDir,
		Logger:  zaptest.NewLogger(t),
	}, jc, ec)
	chk.NoError(err)
	chk.Equal(Summary{Submitted: 1, Succeeded: 1}, sum)

	entries, err := os.ReadDir(outDir)
	chk.NoError(err)
	chk.Len(entries, 1)
	data, err := os.ReadFile(filepath.Join(outDir, entries[0].Name()))
	chk.NoError(err)
	chk.Equal("hello\n", string(data))
}

func TestRunCountsFailures(t *testing.T) {
	chk := require.New(t)
	jc, ec := feed(
		sweep.Job{Seq: 0, Args: []string{"false"}},
		sweep.Job{Seq: 1, Args: []string{"true"}},
	)
	sum, err := Run(context.Background(), Options{
		OutDir: filepath.Join(t.TempDir(), ".stdout"),
		Logger: zaptest.NewLogger(t),
	}, jc, ec)
	// A job failure is counted, not returned: later jobs still ran.
	chk.NoError(err)
	chk.Equal(Summary{Submitted: 2, Succeeded: 1, Failed: 1}, sum)
}

func TestRunReturnsGeneratorError(t *testing.T) {
	boom := errors.New("bad header")
	jc := make(chan sweep.Job)
	close(jc)
	ec := make(chan error, 1)
	ec <- boom
	close(ec)

	sum, err := Run(context.Background(), Options{
		DryRun: true,
		Logger: zaptest.NewLogger(t),
	}, jc, ec)
	require.ErrorIs(t, err, boom)
	require.Zero(t, sum.Submitted)
}
