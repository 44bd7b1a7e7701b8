package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/batchrename/internal/history"
	"git.home.luguber.info/inful/batchrename/internal/pipeline"
	"git.home.luguber.info/inful/batchrename/internal/rename"
	"git.home.luguber.info/inful/batchrename/internal/steps"
	"git.home.luguber.info/inful/batchrename/internal/watch"
)

var CLI struct {
	Verbose   bool   `short:"v" help:"Enable verbose logging"`
	HistoryDB string `help:"Path to the rename history database" default:"batchrename-history.db"`
	NoHistory bool   `help:"Do not record this run in the history database"`

	Preview struct {
		Job string `arg:"" help:"YAML job specification file"`
	} `cmd:"" help:"Compute and show proposed renames without touching files"`

	Apply struct {
		Job string `arg:"" help:"YAML job specification file"`
	} `cmd:"" help:"Apply the renames described by the job file"`

	Watch struct {
		Job string `arg:"" help:"YAML job specification file"`
	} `cmd:"" help:"Continuously preview the job as the input folder changes"`

	History struct {
		Limit int    `short:"n" help:"Number of runs to show" default:"10"`
		Run   string `help:"Show the itemized entries of one run"`
	} `cmd:"" help:"Show recorded rename runs"`

	ValidateFn struct {
		Source   string `arg:"" help:"Go source file containing the function"`
		Function string `arg:"" help:"Function name"`
		Kind     string `arg:"" enum:"extractor,converter,filter,template,allinone" help:"Step kind to validate against"`
	} `cmd:"" name:"validate-fn" help:"Check a custom function's signature for a step kind"`
}

func main() {
	// A .env next to the binary may carry BATCHRENAME_* overrides.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	var err error
	switch ctx.Command() {
	case "preview <job>":
		err = runJob(CLI.Preview.Job, true)
	case "apply <job>":
		err = runJob(CLI.Apply.Job, false)
	case "watch <job>":
		err = runWatch(CLI.Watch.Job)
	case "history":
		err = runHistory(CLI.History.Limit, CLI.History.Run)
	case "validate-fn <source> <function> <kind>":
		err = runValidateFn(CLI.ValidateFn.Source, CLI.ValidateFn.Function, CLI.ValidateFn.Kind)
	default:
		err = fmt.Errorf("unknown command %s", ctx.Command())
	}
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func runJob(jobPath string, preview bool) error {
	cfg, err := rename.LoadJob(jobPath)
	if err != nil {
		return err
	}
	cfg.Preview = preview

	result, err := pipeline.NewDefault().Process(cfg)
	if err != nil {
		return err
	}
	printResult(cfg, result)
	recordRun(cfg, result)
	return nil
}

func runWatch(jobPath string) error {
	cfg, err := rename.LoadJob(jobPath)
	if err != nil {
		return err
	}

	watcher, err := watch.New(cfg, pipeline.NewDefault())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watcher.Run(ctx)
}

func runHistory(limit int, runID string) error {
	store, err := history.Open(CLI.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if runID != "" {
		entries, err := store.Entries(ctx, runID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%-10s %s -> %s  %s\n", e.Status, e.OldName, e.NewName, e.Detail)
		}
		return nil
	}

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		mode := "apply"
		if run.Preview {
			mode = "preview"
		}
		fmt.Printf("%s  %s  %-7s  found=%d renamed=%d collisions=%d errors=%d (%s)\n",
			run.ID, run.Started.Format("2006-01-02 15:04:05"), mode,
			run.FilesFound, run.FilesRenamed, run.Collisions, run.Errors, run.Duration)
	}
	return nil
}

func runValidateFn(source, function, kind string) error {
	factory := steps.NewFactory(steps.NewRegistries())
	result, err := factory.ValidateCustom(steps.Kind(kind), source, function)
	if err != nil {
		return err
	}
	status := "OK"
	if !result.Valid {
		status = "WARNING"
	}
	fmt.Printf("%s: %s\n", status, result.Message)
	return nil
}

func printResult(cfg *rename.Config, result *rename.Result) {
	for _, pair := range result.PreviewData {
		fmt.Printf("  %s -> %s\n", pair.OldName, pair.NewName)
	}
	for _, col := range result.InternalCollisions {
		fmt.Printf("  COLLISION: %v -> %s (duplicate target within batch)\n", col.OldNames, col.NewName)
	}
	for _, col := range result.ExistingCollisions {
		fmt.Printf("  COLLISION: %s -> %s (target already exists)\n", col.OldName, col.NewName)
	}
	for _, detail := range result.ErrorDetails {
		fmt.Printf("  ERROR: %s: %s\n", detail.File, detail.Message)
	}

	mode, count := "renamed", result.FilesRenamed
	if cfg.Preview {
		mode, count = "would rename", result.FilesToRename
	}
	fmt.Printf("%d files found, %d filtered out, %s %d, %d collisions, %d errors (%s)\n",
		result.FilesFound, result.FilesFilteredOut, mode, count,
		result.Collisions, result.Errors, result.ProcessingTime)
}

func recordRun(cfg *rename.Config, result *rename.Result) {
	if CLI.NoHistory {
		return
	}
	store, err := history.Open(CLI.HistoryDB)
	if err != nil {
		slog.Warn("history unavailable", "error", err)
		return
	}
	defer store.Close()

	if _, err := store.Record(context.Background(), cfg, result); err != nil {
		slog.Warn("failed to record run", "error", err)
	}
}
