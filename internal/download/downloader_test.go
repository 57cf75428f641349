package download

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	ioutils "github.com/handiism/sped-tables/internal/io"
	"github.com/handiism/sped-tables/internal/model"
)

type fakeGetter struct {
	mu      sync.Mutex
	bodies  map[string][]byte
	fail    map[string]error
	block   map[string]bool
	calls   map[string]int
	active  int
	maxSeen int
	delay   time.Duration
}

func newFakeGetter() *fakeGetter {
	return &fakeGetter{
		bodies: make(map[string][]byte),
		fail:   make(map[string]error),
		block:  make(map[string]bool),
		calls:  make(map[string]int),
	}
}

func (f *fakeGetter) Get(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls[url]++
	f.active++
	if f.active > f.maxSeen {
		f.maxSeen = f.active
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.block[url] {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := f.fail[url]; err != nil {
		return nil, err
	}
	return f.bodies[url], nil
}

func memStore(t *testing.T) *ioutils.Store {
	t.Helper()
	store, err := ioutils.OpenStore(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func makeDownloads(n int) []*model.Download {
	downloads := make([]*model.Download, n)
	for i := range downloads {
		downloads[i] = model.NewDownload("http://x/dl", model.TableListing{
			PackageCode: "P1",
			Record:      model.TableRecord{ID: fmt.Sprint(i + 1), Version: "1", Type: "T"},
		}, model.VariantFiscal)
	}
	return downloads
}

func TestDownloadAll_AllSucceed(t *testing.T) {
	ctx := context.Background()
	getter := newFakeGetter()
	downloads := makeDownloads(3)
	for _, d := range downloads {
		// "Tabela ç" in ISO-8859-1
		getter.bodies[d.RequestURL()] = []byte("Tabela " + d.Record.ID + " \xe7")
	}
	store := memStore(t)

	dl := NewDownloader(getter, store, 2, false)
	result, err := dl.DownloadAll(ctx, slices.Values(downloads))
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	if result.Completed != 3 {
		t.Errorf("Completed = %d, want 3", result.Completed)
	}
	if len(result.Failures) != 0 {
		t.Errorf("Failures = %v, want none", result.Failures)
	}

	for _, d := range downloads {
		got, err := store.ReadText(ctx, d.FileName)
		if err != nil {
			t.Fatalf("%s not stored: %v", d.FileName, err)
		}
		want := "Tabela " + d.Record.ID + " ç"
		if got != want {
			t.Errorf("%s = %q, want %q", d.FileName, got, want)
		}
	}
}

func TestDownloadAll_EachOnceWithinLimit(t *testing.T) {
	getter := newFakeGetter()
	getter.delay = 10 * time.Millisecond
	downloads := makeDownloads(12)

	dl := NewDownloader(getter, memStore(t), 3, false)
	result, err := dl.DownloadAll(context.Background(), slices.Values(downloads))
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	if result.Completed != 12 {
		t.Errorf("Completed = %d, want 12", result.Completed)
	}
	if len(getter.calls) != 12 {
		t.Errorf("distinct URLs fetched = %d, want 12", len(getter.calls))
	}
	for url, n := range getter.calls {
		if n != 1 {
			t.Errorf("%s fetched %d times, want 1", url, n)
		}
	}
	if getter.maxSeen > 3 {
		t.Errorf("max concurrent fetches = %d, want <= 3", getter.maxSeen)
	}
}

func TestDownloadAll_CollectsFailures(t *testing.T) {
	ctx := context.Background()
	getter := newFakeGetter()
	downloads := makeDownloads(3)
	boom := errors.New("connection reset")
	getter.fail[downloads[1].RequestURL()] = boom
	store := memStore(t)

	var doneMu sync.Mutex
	var done []string
	dl := NewDownloader(getter, store, 2, false)
	dl.OnDone = func(d *model.Download, err error) {
		doneMu.Lock()
		defer doneMu.Unlock()
		done = append(done, d.FileName)
	}

	result, err := dl.DownloadAll(ctx, slices.Values(downloads))
	if err != nil {
		t.Fatalf("DownloadAll returned %v, want nil when collecting failures", err)
	}

	if result.Completed != 2 {
		t.Errorf("Completed = %d, want 2", result.Completed)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("Failures = %d, want 1", len(result.Failures))
	}
	if result.Failures[0].Download != downloads[1] || !errors.Is(result.Failures[0].Err, boom) {
		t.Errorf("Failure = %+v", result.Failures[0])
	}
	if len(done) != 3 {
		t.Errorf("OnDone called %d times, want 3", len(done))
	}

	for _, i := range []int{0, 2} {
		if ok, _ := store.Exists(ctx, downloads[i].FileName); !ok {
			t.Errorf("%s missing", downloads[i].FileName)
		}
	}
	if ok, _ := store.Exists(ctx, downloads[1].FileName); ok {
		t.Errorf("%s should not be stored", downloads[1].FileName)
	}
}

func TestDownloadAll_AbortOnError(t *testing.T) {
	getter := newFakeGetter()
	downloads := makeDownloads(3)
	boom := errors.New("connection reset")
	getter.fail[downloads[0].RequestURL()] = boom

	dl := NewDownloader(getter, memStore(t), 1, true)
	result, err := dl.DownloadAll(context.Background(), slices.Values(downloads))

	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if result.Completed != 0 {
		t.Errorf("Completed = %d, want 0", result.Completed)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}
	if len(getter.calls) != 1 {
		t.Errorf("fetched %d URLs after abort, want 1", len(getter.calls))
	}
}

func TestDownloadAll_AbortCancelsInFlight(t *testing.T) {
	getter := newFakeGetter()
	downloads := makeDownloads(3)
	boom := errors.New("connection reset")
	getter.fail[downloads[0].RequestURL()] = boom
	getter.block[downloads[1].RequestURL()] = true

	var doneMu sync.Mutex
	var done []error
	dl := NewDownloader(getter, memStore(t), 2, true)
	dl.OnDone = func(d *model.Download, err error) {
		doneMu.Lock()
		defer doneMu.Unlock()
		done = append(done, err)
	}

	result, err := dl.DownloadAll(context.Background(), slices.Values(downloads))

	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(result.Failures) != 1 || !errors.Is(result.Failures[0].Err, boom) {
		t.Errorf("Failures = %+v, want only the download that failed", result.Failures)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}
	if len(done) != 1 || !errors.Is(done[0], boom) {
		t.Errorf("OnDone errors = %v, want only %v", done, boom)
	}
}

func TestDownloadAll_PersistenceError(t *testing.T) {
	getter := newFakeGetter()
	downloads := makeDownloads(1)
	store := memStore(t)
	store.Close()

	dl := NewDownloader(getter, store, 1, false)
	result, err := dl.DownloadAll(context.Background(), slices.Values(downloads))
	if err != nil {
		t.Fatalf("DownloadAll failed: %v", err)
	}

	var perr *ioutils.PersistenceError
	if len(result.Failures) != 1 || !errors.As(result.Failures[0].Err, &perr) {
		t.Fatalf("Failures = %+v, want one *PersistenceError", result.Failures)
	}
}

func TestDownloadAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dl := NewDownloader(newFakeGetter(), memStore(t), 2, false)
	result, err := dl.DownloadAll(ctx, slices.Values(makeDownloads(4)))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if result.Completed != 0 {
		t.Errorf("Completed = %d, want 0", result.Completed)
	}
	if result.Skipped != 4 {
		t.Errorf("Skipped = %d, want 4", result.Skipped)
	}
}

func TestNewDownloader_DefaultParallelism(t *testing.T) {
	dl := NewDownloader(newFakeGetter(), nil, 0, false)
	if dl.parallelism != DefaultParallelism {
		t.Errorf("parallelism = %d, want %d", dl.parallelism, DefaultParallelism)
	}
}
