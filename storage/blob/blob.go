// Copyright 2026 crossfold Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package blob

import (
	"context"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/crossfold/crossfold/config"
	"github.com/juju/errors"
)

const (
	S3Prefix    = "s3://"
	GCSPrefix   = "gs://"
	AzurePrefix = "azblob://"
)

// ErrAborted is the error an aborted upload sees on its reader.
var ErrAborted = errors.New("write aborted")

// Writer is an object being written. Close commits the object; Abort discards
// everything written so far and leaves any previous object untouched.
type Writer interface {
	io.WriteCloser
	Abort() error
}

// Store reads and writes whole objects by name.
type Store interface {
	// Open an object for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Create an object for writing. The object is complete once Close returns nil; an
	// upload failure is reported by Close.
	Create(ctx context.Context, name string) (Writer, error)
	// List names of objects starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Remove an object.
	Remove(ctx context.Context, name string) error
}

// Router maps paths to stores. Plain paths go to the local file system, s3://, gs://
// and azblob:// URLs to the store of their bucket or container. Clients are created on
// first use and reused.
type Router struct {
	cfg    config.StorageConfig
	mu     sync.Mutex
	stores map[string]Store
}

func NewRouter(cfg config.StorageConfig) *Router {
	return &Router{cfg: cfg, stores: make(map[string]Store)}
}

// Register binds a store to a scheme and bucket, replacing any client the router
// would create. It is used to inject preconfigured clients.
func (r *Router) Register(scheme, bucket string, store Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[scheme+"://"+bucket] = store
}

// Resolve returns the store serving path and the object name inside that store.
func (r *Router) Resolve(ctx context.Context, path string) (Store, string, error) {
	if !IsRemote(path) {
		return NewPOSIX(""), filepath.Clean(path), nil
	}
	u, err := url.Parse(path)
	if err != nil {
		return nil, "", errors.Trace(err)
	}
	bucket, name := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || name == "" {
		return nil, "", errors.NotValidf("blob path %q", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := u.Scheme + "://" + bucket
	if store, ok := r.stores[key]; ok {
		return store, name, nil
	}
	var store Store
	switch u.Scheme {
	case "s3":
		store, err = NewS3(r.cfg.S3, bucket)
	case "gs":
		store, err = NewGCS(ctx, r.cfg.GCS, bucket)
	case "azblob":
		store, err = NewAzureBlob(r.cfg.Azure, bucket)
	}
	if err != nil {
		return nil, "", errors.Trace(err)
	}
	r.stores[key] = store
	return store, name, nil
}

// IsRemote reports whether path names an object in a cloud store.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, S3Prefix) ||
		strings.HasPrefix(path, GCSPrefix) ||
		strings.HasPrefix(path, AzurePrefix)
}

// pipeWriter streams writes into an upload running on another goroutine. Close waits
// for the upload and returns its error.
type pipeWriter struct {
	*io.PipeWriter
	done chan error
}

func newPipeWriter(upload func(r io.Reader) error) *pipeWriter {
	pr, pw := io.Pipe()
	w := &pipeWriter{PipeWriter: pw, done: make(chan error, 1)}
	go func() {
		err := upload(pr)
		// unblock the writer if the upload gave up early
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w
}

func (w *pipeWriter) Close() error {
	if err := w.PipeWriter.Close(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(<-w.done)
}

// Abort fails the upload with ErrAborted and waits for it to give up.
func (w *pipeWriter) Abort() error {
	_ = w.PipeWriter.CloseWithError(ErrAborted)
	<-w.done
	return nil
}
