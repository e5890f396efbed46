package main

import (
	"fmt"
	"os"

	"github.com/finwell/planmatch/internal/application/transfers"
	"github.com/finwell/planmatch/internal/cli"
	"github.com/finwell/planmatch/internal/infrastructure/config"
	"github.com/finwell/planmatch/internal/infrastructure/logging"
)

func main() {
	flags := cli.ParseMatchFlags()
	if flags.UserID == "" {
		fmt.Fprintln(os.Stderr, "usage: automatch -user <id> [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-max N] [-dry-run] [-transfers]")
		os.Exit(2)
	}

	cfg := config.LoadOrEnv()

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "automatch")

	services, err := cli.BuildServices(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = services.Repo.Close() }()

	opts, err := flags.ToOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid date flag: %v\n", err)
		os.Exit(2)
	}

	cli.PrintHeader(flags.UserID, flags.DryRun)

	summary, err := services.Orchestrator.Run(flags.UserID, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "match run failed: %v\n", err)
		os.Exit(1)
	}

	cli.PrintMatchSummary(summary, flags.DryRun)

	if flags.ScanTransfers {
		candidates, err := services.Transfers.Scan(flags.UserID, transfers.ScanOptions{
			From: opts.From,
			To:   opts.To,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "transfer scan failed: %v\n", err)
			os.Exit(1)
		}
		cli.PrintTransferCandidates(candidates)
	}
}
