// Package download provides the orchestration logic for fetching SPED
// reference tables.
//
// # Manager
//
// The Manager coordinates the whole run:
//
//  1. Fetch the table listing of a variant
//  2. Parse the envelope and its embedded manifest
//  3. Build one download per table with a deterministic file name
//  4. Download and store the tables concurrently
//  5. Move on to the next variant
//
// # Basic Usage
//
//	manager, err := download.NewManager(ctx, settings, store, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summaries, err := manager.Run(ctx, settings.VariantList())
//
// # Concurrency
//
// Variants run sequentially. Each variant's downloads run on a Downloader,
// an errgroup-bounded pool of settings.MaxConcurrentDownloads workers.
//
// # Failures
//
// Fetch and parse errors are fatal for their variant and are reported as
// *StageError naming the variant and stage. Download failures are collected
// per table in the variant's Summary while the other tables complete. Set
// settings.AbortOnError to stop at the first failure instead.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
package download
