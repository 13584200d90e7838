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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
)

// POSIX stores objects as files below a directory. An empty directory resolves names
// against the working directory.
type POSIX struct {
	dir string
}

func NewPOSIX(dir string) *POSIX {
	return &POSIX{dir: dir}
}

// Open a file for reading.
func (p *POSIX) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(p.dir, name))
}

// Create a file for writing. Missing parent directories are created. Data goes to a
// temporary file that replaces the target on Close, so readers never see a partial file.
func (p *POSIX) Create(_ context.Context, name string) (Writer, error) {
	fullPath := filepath.Join(p.dir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return nil, errors.Trace(err)
	}
	file, err := os.CreateTemp(filepath.Dir(fullPath), "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &posixWriter{File: file, target: fullPath}, nil
}

type posixWriter struct {
	*os.File
	target string
}

func (w *posixWriter) Close() error {
	if err := w.File.Close(); err != nil {
		_ = os.Remove(w.File.Name())
		return errors.Trace(err)
	}
	if err := os.Rename(w.File.Name(), w.target); err != nil {
		_ = os.Remove(w.File.Name())
		return errors.Trace(err)
	}
	return nil
}

// Abort removes the temporary file. The target is left as it was.
func (w *posixWriter) Abort() error {
	_ = w.File.Close()
	return errors.Trace(os.Remove(w.File.Name()))
}

// List files whose path relative to the directory starts with prefix. Only the
// directories a matching path could live in are visited.
func (p *POSIX) List(_ context.Context, prefix string) ([]string, error) {
	root := filepath.Join(p.dir, prefix)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		root = filepath.Dir(root)
	}
	var names []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		name := path
		if p.dir != "" {
			if name, err = filepath.Rel(p.dir, path); err != nil {
				return err
			}
		}
		name = filepath.ToSlash(name)
		if d.IsDir() {
			if path != root && !strings.HasPrefix(name+"/", prefix) && !strings.HasPrefix(prefix, name+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, prefix) && !strings.HasPrefix(d.Name(), ".") {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return names, nil
}

func (p *POSIX) Remove(_ context.Context, name string) error {
	return os.Remove(filepath.Join(p.dir, name))
}
