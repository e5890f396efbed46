package cli

import (
	"flag"

	"github.com/finwell/planmatch/internal/application/automatch"
	"github.com/finwell/planmatch/internal/domain/plan"
)

// MatchFlags are the flags for the automatch command.
type MatchFlags struct {
	UserID        string
	From          string
	To            string
	Max           int
	DryRun        bool
	ScanTransfers bool
	Verbose       bool
}

// ParseMatchFlags parses command line flags for the automatch command.
func ParseMatchFlags() *MatchFlags {
	flags := &MatchFlags{}
	flag.StringVar(&flags.UserID, "user", "", "User ID to match for (required)")
	flag.StringVar(&flags.From, "from", "", "Window start (YYYY-MM-DD, default lookback)")
	flag.StringVar(&flags.To, "to", "", "Window end (YYYY-MM-DD, default today)")
	flag.IntVar(&flags.Max, "max", 0, "Maximum transactions to process (0 = all)")
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Score without writing matches")
	flag.BoolVar(&flags.ScanTransfers, "transfers", false, "Also scan for transfer pairs")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// ToOptions converts the flags to batch options.
func (f *MatchFlags) ToOptions() (automatch.Options, error) {
	opts := automatch.Options{
		MaxTransactions: f.Max,
		DryRun:          f.DryRun,
	}
	var err error
	if f.From != "" {
		if opts.From, err = plan.ParseDate(f.From); err != nil {
			return opts, err
		}
	}
	if f.To != "" {
		if opts.To, err = plan.ParseDate(f.To); err != nil {
			return opts, err
		}
	}
	return opts, nil
}
