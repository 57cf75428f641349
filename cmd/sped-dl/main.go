package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/sped-tables/internal/config"
	"github.com/handiism/sped-tables/internal/download"
	ioutils "github.com/handiism/sped-tables/internal/io"
	"github.com/handiism/sped-tables/internal/model"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the exit code, so deferred cleanup such
// as closing the output bucket happens before the process exits.
func run(args []string) int {
	fs := flag.NewFlagSet("sped-dl", flag.ContinueOnError)

	// Command line flags
	var (
		configFlag   = fs.String("config", "", "Path to config file")
		variantsFlag = fs.String("variants", "", "SPED variants to fetch (comma-separated, overrides config)")
		outputFlag   = fs.String("output", "", "Output directory or bucket URL (overrides config)")
		templateFlag = fs.String("template", "", "Path to the SOAP request template (overrides config)")
		serviceFlag  = fs.String("service-url", "", "Table listing service URL (overrides config)")
		workersFlag  = fs.Int("workers", 0, "Concurrent downloads per variant (overrides config)")
		timeoutFlag  = fs.Float64("timeout", 0, "Per-request timeout in seconds (overrides config)")
		abortFlag    = fs.Bool("abort-on-error", false, "Stop at the first failed variant or download")
		verboseFlag  = fs.Bool("verbose", false, "Show verbose output")
		dryRunFlag   = fs.Bool("dry-run", false, "List tables without downloading")
	)

	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return 1
		}
	}

	// Apply flags
	if *variantsFlag != "" {
		settings.Variants = nil
		for _, v := range model.ParseVariants(*variantsFlag) {
			settings.Variants = append(settings.Variants, v.String())
		}
	}
	if *outputFlag != "" {
		settings.OutputURL = *outputFlag
	}
	if *templateFlag != "" {
		settings.RequestTemplatePath = *templateFlag
	}
	if *serviceFlag != "" {
		settings.ServiceURL = *serviceFlag
	}
	if *workersFlag > 0 {
		settings.MaxConcurrentDownloads = *workersFlag
	}
	if *timeoutFlag > 0 {
		settings.RequestTimeout = *timeoutFlag
	}
	if *abortFlag {
		settings.AbortOnError = true
	}

	variants := settings.VariantList()
	if len(variants) == 0 {
		fmt.Fprintln(os.Stderr, "No variants to fetch")
		return 1
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\nInterrupted, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	store, err := ioutils.OpenStore(ctx, settings.OutputURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening output: %v\n", err)
		return 1
	}
	defer store.Close()

	manager, err := download.NewManager(ctx, settings, store, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "❌ "
		case download.LevelWarning:
			prefix = "⚠️  "
		case download.LevelSuccess:
			prefix = "✅ "
		case download.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return 1
	}

	fmt.Println("📑 SPED Tables Downloader")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	if *dryRunFlag {
		return dryRun(ctx, manager, variants)
	}

	summaries, err := manager.Run(ctx, variants)
	code := report(summaries)

	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			return 130
		}
		fmt.Fprintf(os.Stderr, "Error during download: %v\n", err)
		return 1
	}
	return code
}

func dryRun(ctx context.Context, manager *download.Manager, variants []model.Variant) int {
	fmt.Println("[Dry run - not downloading]")
	code := 0
	for _, variant := range variants {
		downloads, err := manager.Plan(ctx, variant)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			code = 1
			if ctx.Err() != nil {
				return 130
			}
			continue
		}
		for _, d := range downloads {
			fmt.Printf("   %s  %s\n", d.FileName, d.RequestURL())
		}
	}
	return code
}

func report(summaries []*download.Summary) int {
	code := 0
	var completed, total int

	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	for _, s := range summaries {
		completed += s.Completed
		total += s.Total

		if s.OK() {
			fmt.Printf("✅ %s: %d/%d tables\n", s.Variant, s.Completed, s.Total)
			continue
		}

		code = 1
		var serr *download.StageError
		if errors.As(s.Err, &serr) && serr.Stage != download.StageDownload {
			fmt.Printf("❌ %s: %s failed: %v\n", s.Variant, serr.Stage, serr.Err)
			continue
		}
		fmt.Printf("⚠️  %s: %d/%d tables, %d failed, %d skipped\n", s.Variant, s.Completed, s.Total, len(s.Failures), s.Skipped)
		for _, f := range s.Failures {
			fmt.Printf("     %s: %v\n", f.Download.FileName, f.Err)
		}
	}
	fmt.Printf("✨ Complete! Downloaded %d/%d tables\n", completed, total)

	return code
}
