package download

import (
	"context"
	"errors"
	"iter"
	"sync"
	"sync/atomic"

	ioutils "github.com/handiism/sped-tables/internal/io"
	"github.com/handiism/sped-tables/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism is the worker pool size used when none is given.
const DefaultParallelism = 10

// Getter fetches the body of a URL.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Storage persists decoded table text under a name, replacing any
// existing entry with the same name.
type Storage interface {
	WriteText(ctx context.Context, name, text string) error
}

// Failure records a download that did not complete.
type Failure struct {
	Download *model.Download
	Err      error
}

// Result is the outcome of one DownloadAll call.
type Result struct {
	// Completed counts downloads fetched and stored without error.
	Completed int

	// Failures lists downloads that failed, in completion order.
	Failures []Failure

	// Skipped counts downloads not started, or cut short, because the pool
	// was cancelled.
	Skipped int
}

// Downloader runs downloads on a bounded worker pool.
//
// By default every download is attempted and failures are collected in the
// Result. With AbortOnError set, the first failure cancels the pool: queued
// downloads are skipped, in-flight requests see a cancelled context, and
// DownloadAll returns that first error.
type Downloader struct {
	client       Getter
	store        Storage
	parallelism  int
	abortOnError bool

	// OnDone is called from worker goroutines after each download with its
	// error, nil on success. It must be safe for concurrent use.
	OnDone func(d *model.Download, err error)
}

// NewDownloader creates a Downloader with the given pool size. A size below
// 1 uses DefaultParallelism.
func NewDownloader(client Getter, store Storage, parallelism int, abortOnError bool) *Downloader {
	if parallelism < 1 {
		parallelism = DefaultParallelism
	}
	return &Downloader{
		client:       client,
		store:        store,
		parallelism:  parallelism,
		abortOnError: abortOnError,
	}
}

// DownloadAll fetches and stores every download in downloads.
//
// Each download is started at most once. Downloads may finish in any order.
// The returned error is non-nil only when the pool was aborted, either by
// ctx or, with AbortOnError, by the first failed download.
func (dl *Downloader) DownloadAll(ctx context.Context, downloads iter.Seq[*model.Download]) (Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dl.parallelism)

	var (
		completed atomic.Int32
		skipped   atomic.Int32
		mu        sync.Mutex
		failures  []Failure
	)

	for d := range downloads {
		if gctx.Err() != nil {
			skipped.Add(1)
			continue
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				skipped.Add(1)
				return nil
			}

			err := dl.downloadOne(gctx, d)
			if err != nil && gctx.Err() != nil && errors.Is(err, gctx.Err()) {
				// Cut short by the pool being cancelled, not failed on its own.
				skipped.Add(1)
				return nil
			}
			if dl.OnDone != nil {
				dl.OnDone(d, err)
			}
			if err != nil {
				mu.Lock()
				failures = append(failures, Failure{Download: d, Err: err})
				mu.Unlock()
				if dl.abortOnError {
					return err
				}
				return nil
			}

			completed.Add(1)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	return Result{
		Completed: int(completed.Load()),
		Failures:  failures,
		Skipped:   int(skipped.Load()),
	}, err
}

func (dl *Downloader) downloadOne(ctx context.Context, d *model.Download) error {
	data, err := dl.client.Get(ctx, d.RequestURL())
	if err != nil {
		return err
	}

	text, err := ioutils.DecodeLatin1(data)
	if err != nil {
		return err
	}

	return dl.store.WriteText(ctx, d.FileName, text)
}
