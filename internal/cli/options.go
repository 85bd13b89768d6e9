// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"runtime"
	"strings"

	"likelisweep/internal/genotype"
	"likelisweep/internal/version"
)

// Options holds all CLI flags and arguments for the sweep driver.
type Options struct {
	DryRun    bool
	Jobs      int // -j value handed to the external tool; 0 = all CPUs
	Begin     int // sweep range [Begin, End)
	End       int
	Epistasis bool
	TP53      bool
	Program   string
	OutDir    string
	Quiet     bool
	Version   bool

	Format      genotype.Format // resolved once, from --format or passthrough
	Infiles     []string
	Passthrough []string // forwarded verbatim to every job
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: parameter-sweep driver for likeligrid

Version: %s

Usage: %s [options] infile... [-- passthrough...]

Unrecognized flags and anything after "--" are forwarded verbatim to
every likeligrid invocation.

`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
// Bare arguments are input files; unknown flag-like arguments and
// everything after "--" become the passthrough list.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool
	var format string

	fs.BoolVar(&opt.DryRun, "n", false, "print jobs without executing (shorthand) [false]")
	fs.BoolVar(&opt.DryRun, "dry-run", false, "print jobs without executing [false]")
	fs.IntVar(&opt.Jobs, "j", 0, "threads per likeligrid job (0 = all CPUs) (shorthand) [0]")
	fs.IntVar(&opt.Jobs, "jobs", 0, "threads per likeligrid job (0 = all CPUs) [0]")
	fs.IntVar(&opt.Begin, "begin", 2, "first value of the swept axis s [2]")
	fs.IntVar(&opt.End, "end", 6, "one past the last value of the swept axis s [6]")
	fs.BoolVar(&opt.Epistasis, "e", false, "test every pathway pair (shorthand) [false]")
	fs.BoolVar(&opt.Epistasis, "epistasis", false, "test every pathway pair [false]")
	fs.BoolVar(&opt.TP53, "tp53", false, "test the Cycle/Damage pleiotropic pair [false]")
	fs.StringVar(&format, "format", "auto", "pathway source format: auto | tsv | json [auto]")
	fs.StringVar(&opt.Program, "program", "likeligrid", "external analysis tool to invoke [likeligrid]")
	fs.StringVar(&opt.OutDir, "outdir", ".stdout", "per-job stdout capture directory [.stdout]")
	fs.BoolVar(&opt.Quiet, "q", false, "log warnings only (shorthand) [false]")
	fs.BoolVar(&opt.Quiet, "quiet", false, "log warnings only [false]")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	flagArgs, infiles, passthrough := splitKnown(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	opt.Infiles = infiles
	opt.Passthrough = passthrough

	// Validation
	if len(opt.Infiles) == 0 {
		return opt, errors.New("at least one infile is required")
	}
	if opt.Epistasis && opt.TP53 {
		return opt, errors.New("--epistasis conflicts with --tp53")
	}
	if opt.Jobs < 0 {
		return opt, errors.New("--jobs must be ≥ 0")
	}
	if opt.Jobs == 0 {
		opt.Jobs = runtime.NumCPU()
	}
	if format == "auto" {
		opt.Format = genotype.DetectFormat(opt.Passthrough)
	} else {
		f, err := genotype.ParseFormat(format)
		if err != nil {
			return opt, err
		}
		opt.Format = f
	}
	return opt, nil
}

// splitKnown separates argv into args for fs.Parse, bare positionals
// (input files), and unrecognized flag-like args to forward. "--" ends
// driver parsing; everything after it is forwarded. Preserves '-',
// '--x=y', and value-consuming semantics for known non-bool flags.
func splitKnown(fs *flag.FlagSet, argv []string) (flagArgs, infiles, passthrough []string) {
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" {
			passthrough = append(passthrough, argv[i+1:]...)
			break
		}
		if len(arg) > 1 && arg[0] == '-' {
			name := strings.TrimLeft(arg, "-")
			if eq := strings.IndexByte(name, '='); eq >= 0 {
				name = name[:eq]
			}
			f := fs.Lookup(name)
			if f == nil {
				passthrough = append(passthrough, arg)
				continue
			}
			flagArgs = append(flagArgs, arg)
			if !strings.Contains(arg, "=") && !isBoolFlag(f) && i+1 < len(argv) {
				flagArgs = append(flagArgs, argv[i+1])
				i++
			}
			continue
		}
		infiles = append(infiles, arg)
	}
	return
}

func isBoolFlag(f *flag.Flag) bool {
	bf, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && bf.IsBoolFlag()
}
