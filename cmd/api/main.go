package main

import (
	"fmt"
	"os"

	"github.com/finwell/planmatch/internal/cli"
	"github.com/finwell/planmatch/internal/infrastructure/config"
)

func main() {
	flags := cli.ParseServeFlags()

	cfg := config.LoadOrEnv()

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
