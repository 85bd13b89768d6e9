// internal/sweep/generator.go
package sweep

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"likelisweep/internal/genotype"
	"likelisweep/internal/pairs"
)

// The pleiotropic pair tested in tp53 mode.
const (
	cyclePathway  = "Cycle"
	damagePathway = "Damage"
)

// Mode selects the pairing policy applied to each input file.
type Mode int

const (
	// ModeNone emits one job per (sweep value, file) with no pair flag.
	ModeNone Mode = iota
	// ModeEpistasis tests every pathway pair in each file.
	ModeEpistasis
	// ModeTP53 tests the fixed Cycle/Damage pair in each file.
	ModeTP53
)

// Range is a half-open integer interval [Begin, End) over the swept
// axis. An empty or inverted range yields no jobs and is not an error.
type Range struct {
	Begin, End int
}

// Len returns the number of values in the range.
func (r Range) Len() int {
	if r.End <= r.Begin {
		return 0
	}
	return r.End - r.Begin
}

// Config describes one full sweep.
type Config struct {
	Program     string   // external tool, argv[0] of every job
	Jobs        int      // value of the tool's -j flag
	Passthrough []string // forwarded verbatim to every job
	Infiles     []string // input files, in given order
	Range       Range    // swept axis s
	Mode        Mode
	Format      genotype.Format // pathway source for ModeEpistasis
}

// Job is one fully-formed invocation of the external tool. Seq is the
// zero-based position in the generated stream.
type Job struct {
	Seq  int
	Args []string
}

// ForEachJob produces the full job stream for cfg, calling visit once
// per job, lazily and in deterministic order: ascending sweep value,
// then input file in given order, then pair in policy order. The first
// error (from visit, a pathway read, or ctx) aborts the stream.
//
// Pathway lookups are cached per file, so a file swept over k values
// is read once.
func ForEachJob(ctx context.Context, cfg Config, visit func(Job) error) error {
	prefix := make([]string, 0, 2+len(cfg.Passthrough))
	prefix = append(prefix, cfg.Program, fmt.Sprintf("-j%d", cfg.Jobs))
	prefix = append(prefix, cfg.Passthrough...)

	cache := newFileCache(len(cfg.Infiles))
	seq := 0
	emit := func(pairToken, sweptFlag, infile string) error {
		args := make([]string, 0, len(prefix)+3)
		args = append(args, prefix...)
		if pairToken != "" {
			args = append(args, pairToken)
		}
		args = append(args, sweptFlag, infile)
		j := Job{Seq: seq, Args: args}
		seq++
		return visit(j)
	}

	for s := cfg.Range.Begin; s < cfg.Range.End; s++ {
		sweptFlag := fmt.Sprintf("-s%d", s)
		for _, f := range cfg.Infiles {
			if err := ctx.Err(); err != nil {
				return err
			}
			switch cfg.Mode {
			case ModeEpistasis:
				n, err := cache.count(cfg.Format, f)
				if err != nil {
					return err
				}
				for _, p := range pairs.Combinations(n) {
					if err := emit(p.Token(), sweptFlag, f); err != nil {
						return err
					}
				}
			case ModeTP53:
				p, err := cache.pleiotropicPair(f)
				if err != nil {
					return err
				}
				if err := emit(p.Token(), sweptFlag, f); err != nil {
					return err
				}
			default:
				if err := emit("", sweptFlag, f); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Stream runs ForEachJob in a goroutine and returns the jobs plus a
// one-shot error channel, closed when generation ends.
func Stream(ctx context.Context, cfg Config) (<-chan Job, <-chan error) {
	out := make(chan Job, 8)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		err := ForEachJob(ctx, cfg, func(j Job) error {
			select {
			case out <- j:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errc <- err
		}
	}()
	return out, errc
}

// Count returns the total number of jobs cfg will generate without
// building argument lists. It reads each input file at most once.
func Count(cfg Config) (int, error) {
	cache := newFileCache(len(cfg.Infiles))
	perSweep := 0
	for _, f := range cfg.Infiles {
		switch cfg.Mode {
		case ModeEpistasis:
			n, err := cache.count(cfg.Format, f)
			if err != nil {
				return 0, err
			}
			perSweep += n * (n - 1) / 2
		case ModeTP53:
			if _, err := cache.pleiotropicPair(f); err != nil {
				return 0, err
			}
			perSweep++
		default:
			perSweep++
		}
	}
	return cfg.Range.Len() * perSweep, nil
}

// fileCache memoizes per-file pathway lookups for one generation run.
type fileCache struct {
	counts *lru.Cache[string, int]
	prs    *lru.Cache[string, pairs.Pair]
}

func newFileCache(nfiles int) *fileCache {
	size := nfiles
	if size < 16 {
		size = 16
	}
	counts, _ := lru.New[string, int](size)
	prs, _ := lru.New[string, pairs.Pair](size)
	return &fileCache{counts: counts, prs: prs}
}

func (c *fileCache) count(f genotype.Format, path string) (int, error) {
	if n, ok := c.counts.Get(path); ok {
		return n, nil
	}
	n, err := genotype.Count(f, path)
	if err != nil {
		return 0, err
	}
	c.counts.Add(path, n)
	return n, nil
}

func (c *fileCache) pleiotropicPair(path string) (pairs.Pair, error) {
	if p, ok := c.prs.Get(path); ok {
		return p, nil
	}
	names, err := genotype.Pathways(path)
	if err != nil {
		return pairs.Pair{}, err
	}
	p, err := pairs.Named(names, cyclePathway, damagePathway)
	if err != nil {
		return pairs.Pair{}, fmt.Errorf("%s: %w", path, err)
	}
	c.prs.Add(path, p)
	return p, nil
}
