package cli

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finwell/planmatch/internal/api"
	"github.com/finwell/planmatch/internal/infrastructure/config"
	"github.com/finwell/planmatch/internal/infrastructure/logging"
)

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port    int
	Verbose bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (overrides config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// RunServe runs the API server until interrupted.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	services, err := BuildServices(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = services.Repo.Close() }()

	serverCfg := cfg.Server
	if flags.Port != 0 {
		serverCfg.Port = flags.Port
	}

	server := api.NewServer(serverCfg, api.Dependencies{
		Repo:         services.Repo,
		Orchestrator: services.Orchestrator,
		Templates:    services.Templates,
		Transfers:    services.Transfers,
		Budget:       services.Budget,
		RuleCache:    services.RuleCache,
		Logger:       logger,
	})

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
