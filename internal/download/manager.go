package download

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/handiism/sped-tables/internal/config"
	"github.com/handiism/sped-tables/internal/http"
	ioutils "github.com/handiism/sped-tables/internal/io"
	"github.com/handiism/sped-tables/internal/model"
	"github.com/handiism/sped-tables/internal/sped"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Stage names the step of a variant run that failed.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageParse    Stage = "parse"
	StageDownload Stage = "download"
)

// StageError identifies the variant and stage a fatal error happened in.
type StageError struct {
	Variant model.Variant
	Stage   Stage
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Variant, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Summary reports the outcome of one variant.
type Summary struct {
	Variant model.Variant

	// Total is the number of tables listed in the manifest.
	Total int

	Completed int
	Skipped   int
	Failures  []Failure

	// Err is set when the variant could not be fetched or parsed, or when
	// its downloads were aborted.
	Err error
}

// OK reports whether every listed table was downloaded.
func (s *Summary) OK() bool {
	return s.Err == nil && len(s.Failures) == 0 && s.Completed == s.Total
}

// Manager runs the fetch, parse and download cycle for each variant.
//
// Variants run one after another. Within a variant, downloads run on a
// worker pool of settings.MaxConcurrentDownloads.
type Manager struct {
	settings *config.Settings
	client   *http.Client
	fetcher  *sped.Fetcher
	store    Storage

	totalFiles      atomic.Int32
	downloadedFiles atomic.Int32
	failedFiles     atomic.Int32
	variant         model.Variant

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewManager creates a new Manager writing tables to store.
//
// The request template is read from settings.RequestTemplatePath, or the
// built-in template is used when the path is empty.
func NewManager(ctx context.Context, settings *config.Settings, store Storage, onProgress func(ProgressEvent)) (*Manager, error) {
	template := sped.DefaultTemplate()
	if settings.RequestTemplatePath != "" {
		var err error
		template, err = ioutils.ReadFile(ctx, settings.RequestTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("load request template: %w", err)
		}
	}

	client := http.NewClient(settings.ToHTTPOptions())

	return &Manager{
		settings:   settings,
		client:     client,
		fetcher:    sped.NewFetcher(client, settings.ServiceURL, template),
		store:      store,
		onProgress: onProgress,
	}, nil
}

// Plan fetches and parses the manifest of variant and builds its downloads
// without downloading anything.
func (m *Manager) Plan(ctx context.Context, variant model.Variant) ([]*model.Download, error) {
	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching table listing for %s", variant), Level: LevelVerbose})

	body, err := m.fetcher.Fetch(ctx, variant)
	if err != nil {
		return nil, &StageError{Variant: variant, Stage: StageFetch, Err: err}
	}

	baseURL, listings, err := sped.Parse(body)
	if err != nil {
		return nil, &StageError{Variant: variant, Stage: StageParse, Err: err}
	}

	var downloads []*model.Download
	for listing := range listings {
		d := model.NewDownload(baseURL, listing, variant)
		downloads = append(downloads, d)
		if desc := listing.Record.Description; desc != "" {
			m.progress(ProgressEvent{Message: fmt.Sprintf("%s: %s", d.FileName, desc), Level: LevelVerbose})
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d tables for %s", len(downloads), variant), Level: LevelInfo})
	return downloads, nil
}

// Run processes variants in order and returns one Summary per variant
// started.
//
// A variant that fails to fetch or parse is reported in its Summary and the
// run moves on to the next one. With settings.AbortOnError, the first fatal
// error or failed download stops the run and is returned. Cancellation of
// ctx stops the run and returns ctx.Err().
func (m *Manager) Run(ctx context.Context, variants []model.Variant) ([]*Summary, error) {
	var summaries []*Summary

	for _, variant := range variants {
		summary := m.runVariant(ctx, variant)
		summaries = append(summaries, summary)

		if ctx.Err() != nil {
			return summaries, ctx.Err()
		}
		if summary.Err != nil && m.settings.AbortOnError {
			return summaries, summary.Err
		}
	}

	return summaries, nil
}

func (m *Manager) runVariant(ctx context.Context, variant model.Variant) *Summary {
	m.mu.Lock()
	m.variant = variant
	m.mu.Unlock()

	summary := &Summary{Variant: variant}

	downloads, err := m.Plan(ctx, variant)
	if err != nil {
		m.progress(ProgressEvent{Message: err.Error(), Level: LevelError})
		summary.Err = err
		return summary
	}
	summary.Total = len(downloads)
	m.totalFiles.Add(int32(len(downloads)))

	dl := NewDownloader(m.client, m.store, m.settings.Parallelism(), m.settings.AbortOnError)
	dl.OnDone = func(d *model.Download, err error) {
		if err != nil {
			m.failedFiles.Add(1)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", d.FileName, err), Level: LevelError})
			return
		}
		m.downloadedFiles.Add(1)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", d.FileName), Level: LevelVerbose})
	}

	result, err := dl.DownloadAll(ctx, slices.Values(downloads))
	summary.Completed = result.Completed
	summary.Skipped = result.Skipped
	summary.Failures = result.Failures
	if err != nil {
		summary.Err = &StageError{Variant: variant, Stage: StageDownload, Err: err}
	}

	switch {
	case summary.OK():
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded %s: %d tables", variant, summary.Completed), Level: LevelSuccess})
	case errors.Is(err, context.Canceled):
		m.progress(ProgressEvent{Message: fmt.Sprintf("Cancelled %s after %d/%d tables", variant, summary.Completed, summary.Total), Level: LevelWarning})
	default:
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, %d/%d tables, %d failed", variant, summary.Completed, summary.Total, len(summary.Failures)), Level: LevelWarning})
	}

	return summary
}

// GetProgress returns download counters across all variants run so far.
func (m *Manager) GetProgress() (downloaded, failed, total int32) {
	return m.downloadedFiles.Load(), m.failedFiles.Load(), m.totalFiles.Load()
}

// CurrentVariant returns the variant being processed.
func (m *Manager) CurrentVariant() model.Variant {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.variant
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
