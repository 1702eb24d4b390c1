// cmd/ebb/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	stlog "log" // Use standard log for FATAL errors before logger is ready
	"os"
	"os/signal"

	"github.com/bethropolis/ebb/internal/app"
	"github.com/bethropolis/ebb/internal/config"
	"github.com/bethropolis/ebb/internal/logger"
)

func main() {
	// --- Argument & Flag Parsing ---
	fs := flag.NewFlagSet(config.AppName, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] [script]\n\nReads editing commands from script, or from stdin when omitted.\n\n", config.AppName)
		fs.PrintDefaults()
	}
	flags := config.NewFlags(fs)
	args, err := flags.Parse(os.Args[1:])
	if err != nil {
		stlog.Fatalf("Failed to parse flags: %v", err)
	}

	if *flags.Version {
		fmt.Printf("%s %s\n", config.AppName, config.Version)
		os.Exit(0)
	}

	cfg, warnings, err := config.LoadConfig(*flags.ConfigFilePath, flags)
	if err != nil {
		stlog.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Logger Initialization ---
	logOutput, closeLog, err := logger.OpenOutput(cfg.Logger.LogFilePath)
	if err != nil {
		stlog.Fatalf("%v", err)
	}
	defer closeLog()
	logger.Init(cfg.Logger, logOutput)
	logger.SetFilterDebug(*flags.DebugLog)
	for _, w := range warnings {
		logger.Warnf("%s", w)
	}

	logger.Infof("Starting %s %s", config.AppName, config.Version)

	// --- Command Source ---
	input := os.Stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			logger.Errorf("Cannot open script: %v", err)
			fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
			os.Exit(1)
		}
		defer f.Close()
		input = f
		logger.Debugf("Reading commands from %s", args[0])
	} else {
		logger.Debugf("Reading commands from stdin")
	}

	// --- Create and Run App ---
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ebbApp := app.New(cfg, os.Stdout)
	defer ebbApp.Close()
	if err := ebbApp.Run(ctx, input, *flags.Strict); err != nil {
		logger.Errorf("Application exited with error: %v", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		ebbApp.Close()
		stop()
		closeLog()
		os.Exit(1)
	}

	logger.Infof("%s finished.", config.AppName)
}
