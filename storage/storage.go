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

package storage

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/crossfold/crossfold/common/log"
	"github.com/crossfold/crossfold/config"
	"github.com/crossfold/crossfold/dataset"
	"github.com/crossfold/crossfold/storage/blob"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

var (
	// ErrLoad is returned when a dataset cannot be read or parsed.
	ErrLoad = errors.New("failed to load dataset")
	// ErrPersist is returned when a dataset or result cannot be written.
	ErrPersist = errors.New("failed to persist")
)

const (
	FormatARFF = "arff"
	FormatCSV  = "csv"
)

// Storage loads and saves datasets on any store known to the blob router.
type Storage struct {
	router *blob.Router
}

func New(cfg config.StorageConfig) *Storage {
	return &Storage{router: blob.NewRouter(cfg)}
}

// NewWithRouter creates a storage on top of an existing router.
func NewWithRouter(router *blob.Router) *Storage {
	return &Storage{router: router}
}

// Format returns the codec name for a path from its extension.
func Format(p string) (string, error) {
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".arff":
		return FormatARFF, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", errors.NotSupportedf("dataset extension %q", ext)
	}
}

// Load reads a dataset. The class attribute is the last attribute.
func (s *Storage) Load(ctx context.Context, p string) (*dataset.Dataset, error) {
	format, err := Format(p)
	if err != nil {
		return nil, errors.Annotate(ErrLoad, err.Error())
	}
	data, err := s.ReadFile(ctx, p)
	if err != nil {
		return nil, errors.Annotate(ErrLoad, err.Error())
	}
	var ds *dataset.Dataset
	switch format {
	case FormatARFF:
		ds, err = dataset.ReadARFF(bytes.NewReader(data))
	case FormatCSV:
		ds, err = dataset.ReadCSV(bytes.NewReader(data), strings.TrimSuffix(path.Base(p), path.Ext(p)))
	}
	if err != nil {
		return nil, errors.Annotatef(ErrLoad, "%s: %v", p, err)
	}
	log.Logger().Debug("load dataset", append(ds.ZapFields(), zap.String("path", p))...)
	return ds, nil
}

// Save writes a dataset, replacing any existing file.
func (s *Storage) Save(ctx context.Context, ds *dataset.Dataset, p string) error {
	format, err := Format(p)
	if err != nil {
		return errors.Annotate(ErrPersist, err.Error())
	}
	var buf bytes.Buffer
	switch format {
	case FormatARFF:
		err = dataset.WriteARFF(&buf, ds)
	case FormatCSV:
		err = dataset.WriteCSV(&buf, ds)
	}
	if err != nil {
		return errors.Annotatef(ErrPersist, "%s: %v", p, err)
	}
	if err = s.WriteFile(ctx, p, buf.Bytes()); err != nil {
		return err
	}
	log.Logger().Debug("save dataset", append(ds.ZapFields(), zap.String("path", p))...)
	return nil
}

func (s *Storage) ReadFile(ctx context.Context, p string) ([]byte, error) {
	store, name, err := s.router.Resolve(ctx, p)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r, err := store.Open(ctx, name)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	return data, errors.Trace(err)
}

// WriteFile writes data to a path. Failures are reported as ErrPersist.
func (s *Storage) WriteFile(ctx context.Context, p string, data []byte) error {
	store, name, err := s.router.Resolve(ctx, p)
	if err != nil {
		return errors.Annotatef(ErrPersist, "%s: %v", p, err)
	}
	w, err := store.Create(ctx, name)
	if err != nil {
		return errors.Annotatef(ErrPersist, "%s: %v", p, err)
	}
	if _, err = w.Write(data); err != nil {
		if abortErr := w.Abort(); abortErr != nil {
			log.Logger().Warn("failed to abort write", zap.String("path", p), zap.Error(abortErr))
		}
		return errors.Annotatef(ErrPersist, "%s: %v", p, err)
	}
	if err = w.Close(); err != nil {
		return errors.Annotatef(ErrPersist, "%s: %v", p, err)
	}
	return nil
}

// List returns the paths starting with prefix, spelled the way prefix is.
func (s *Storage) List(ctx context.Context, prefix string) ([]string, error) {
	store, name, err := s.router.Resolve(ctx, prefix)
	if err != nil {
		return nil, errors.Trace(err)
	}
	names, err := store.List(ctx, name)
	if err != nil {
		return nil, errors.Trace(err)
	}
	paths := make([]string, 0, len(names))
	for _, n := range names {
		if strings.HasPrefix(n, name) {
			paths = append(paths, prefix+strings.TrimPrefix(n, name))
		}
	}
	return paths, nil
}

func (s *Storage) Remove(ctx context.Context, p string) error {
	store, name, err := s.router.Resolve(ctx, p)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(store.Remove(ctx, name))
}
