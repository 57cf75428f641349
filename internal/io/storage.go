package ioutils

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// PersistenceError reports a failure to store a file.
type PersistenceError struct {
	Name string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Name, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store persists downloaded tables as named objects in a bucket.
//
// Store accepts either a plain directory path or a bucket URL:
//
//	store, _ := OpenStore(ctx, "./tables")         // local directory
//	store, _ := OpenStore(ctx, "s3://bucket?region=sa-east-1")
//	store, _ := OpenStore(ctx, "mem://")           // in memory, for tests
//
// Writing a name that already exists overwrites it. Store is safe for
// concurrent use by multiple goroutines.
type Store struct {
	bucket *blob.Bucket
}

// NewStore wraps an already opened bucket. The Store takes ownership of it.
func NewStore(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

// OpenStore opens the bucket at location.
//
// A location without a URL scheme, or with the file scheme, is treated as a
// local directory that is created if missing. No attribute sidecar files are
// written next to the tables.
func OpenStore(ctx context.Context, location string) (*Store, error) {
	if dir, ok := localDir(location); ok {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		bucket, err := fileblob.OpenBucket(abs, &fileblob.Options{
			CreateDir: true,
			NoTempDir: true,
			Metadata:  fileblob.MetadataDontWrite,
		})
		if err != nil {
			return nil, fmt.Errorf("open directory %s: %w", abs, err)
		}
		return NewStore(bucket), nil
	}

	bucket, err := blob.OpenBucket(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", location, err)
	}
	return NewStore(bucket), nil
}

// WriteText stores text under name, replacing any existing object.
func (s *Store) WriteText(ctx context.Context, name, text string) error {
	opts := &blob.WriterOptions{ContentType: "text/csv; charset=utf-8"}
	if err := s.bucket.WriteAll(ctx, name, []byte(text), opts); err != nil {
		return &PersistenceError{Name: name, Err: err}
	}
	return nil
}

// ReadText returns the text stored under name.
func (s *Store) ReadText(ctx context.Context, name string) (string, error) {
	data, err := s.bucket.ReadAll(ctx, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Exists reports whether an object named name is stored.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	return s.bucket.Exists(ctx, name)
}

// Close releases the underlying bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

func localDir(location string) (string, bool) {
	if location == "" {
		return ".", true
	}
	if !strings.Contains(location, "://") {
		return location, true
	}
	u, err := url.Parse(location)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	return u.Path, true
}
