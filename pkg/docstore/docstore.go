/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package docstore reads and writes the changelog document, either on the
// local filesystem or in a gocloud.dev blob bucket.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/prchangelog/pkg/changelog"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Add gcsblob support that we need to support gs:// prefixes
	_ "gocloud.dev/blob/gcsblob"
	// file:// and mem:// are handy for local runs and tests.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// Open returns the Store for location. Plain paths are files; anything
// with a URL scheme, like gs://bucket/CHANGELOG.md, is a blob in a bucket.
func Open(ctx context.Context, location string) (changelog.Store, error) {
	if location == "" {
		return nil, errors.New("empty changelog location")
	}

	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) < 2 {
		// Not a URL, or a Windows drive letter.
		return &fileStore{path: location}, nil
	}

	var key string
	if u.Scheme == "file" {
		// fileblob roots the bucket at the URL path.
		key = path.Base(u.Path)
		u.Path = path.Dir(u.Path)
		if u.Path == "." {
			u.Path = ""
		}
	} else {
		// Other drivers name the bucket by host; the path is the object key.
		key = strings.TrimPrefix(u.Path, "/")
		u.Path = ""
	}
	if key == "." || key == "/" || key == "" || strings.HasSuffix(key, "/") {
		return nil, fmt.Errorf("no object name in %q", location)
	}

	bucket, err := blob.OpenBucket(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("opening bucket for %q: %w", location, err)
	}
	clog.FromContext(ctx).With("bucket", u.String(), "key", key).Debug("Opened changelog bucket")
	return &blobStore{bucket: bucket, key: key}, nil
}

type fileStore struct {
	path string
}

func (s *fileStore) Read(_ context.Context) (string, bool, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

// Write replaces the file in one step by renaming a fully written sibling.
func (s *fileStore) Write(_ context.Context, content string) error {
	mode := fs.FileMode(0o644)
	if fi, err := os.Stat(s.path); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

type blobStore struct {
	bucket *blob.Bucket
	key    string
}

func (s *blobStore) Read(ctx context.Context) (string, bool, error) {
	b, err := s.bucket.ReadAll(ctx, s.key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func (s *blobStore) Write(ctx context.Context, content string) error {
	return s.bucket.WriteAll(ctx, s.key, []byte(content), &blob.WriterOptions{
		ContentType: "text/markdown; charset=utf-8",
	})
}

// Close releases the bucket.
func (s *blobStore) Close() error {
	return s.bucket.Close()
}

// Close releases whatever s holds open, if anything.
func Close(s changelog.Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

