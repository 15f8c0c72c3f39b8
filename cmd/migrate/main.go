package main

import (
	"context" // Cancellation for schema work
	"flag"    // Command line parsing
	"fmt"     // Console output
	"os"      // Exit codes

	"wallet_balance/internal/config"  // Custom import path (Config)
	"wallet_balance/internal/db"      // Custom import path (Database)
	"wallet_balance/internal/logging" // Logger setup

	"github.com/sirupsen/logrus" // Structured logging
)

const usage = `usage: migrate <command> [target]

commands:
  upgrade [target]    apply revisions up to target (default head)
  downgrade [target]  revert revisions down to target (default -1)
  current             print the applied revision
  history             list revisions oldest first
`

// Main entry point for migration
func main() {
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logCloser := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()

	if err := run(context.Background(), cfg, flag.Args()); err != nil {
		logrus.WithError(err).Error("Migration failed")
		logCloser.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string) error {
	command, target := "upgrade", ""
	if len(args) > 0 {
		command = args[0]
	}
	if len(args) > 1 {
		target = args[1]
	}
	if len(args) > 2 {
		return fmt.Errorf("too many arguments\n%s", usage)
	}
	switch command {
	case "upgrade", "downgrade", "current", "history":
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	if command == "history" {
		for _, rev := range db.Revisions {
			down := rev.DownRevision
			if down == "" {
				down = "<base>"
			}
			fmt.Printf("%s -> %s, %s\n", down, rev.ID, rev.Message)
		}
		return nil
	}

	if cfg.DBDriver == config.DriverMemory {
		return fmt.Errorf("driver %s has no schema to migrate", cfg.DBDriver)
	}
	if command == "upgrade" {
		if err := db.EnsureDatabase(ctx, cfg); err != nil {
			return err
		}
	}

	gdb, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	runner, err := db.NewRunner(gdb, db.Revisions)
	if err != nil {
		return err
	}

	switch command {
	case "upgrade":
		if target == "" {
			target = db.TargetHead
		}
		applied, err := runner.Upgrade(ctx, target)
		if err != nil {
			return err
		}
		logrus.WithField("applied", applied).Info("Upgrade complete")
	case "downgrade":
		if target == "" {
			target = db.TargetPrevious
		}
		reverted, err := runner.Downgrade(ctx, target)
		if err != nil {
			return err
		}
		logrus.WithField("reverted", reverted).Info("Downgrade complete")
	case "current":
		current, err := runner.Current(ctx)
		if err != nil {
			return err
		}
		if current == "" {
			current = "<base>"
		}
		fmt.Println(current)
	}
	return nil
}
