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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPOSIX(t *testing.T) {
	testStore(t, NewPOSIX(filepath.Join(t.TempDir(), "blob")))
}

func TestPOSIXWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	store := NewPOSIX("")
	w, err := store.Create(context.Background(), "out/fold_1.arff")
	require.NoError(t, err)
	_, err = w.Write([]byte("@relation r"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "out", "fold_1.arff"))
	assert.NoError(t, err)
	assert.Equal(t, "@relation r", string(data))
	// no temporary file is left behind
	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPOSIXAbortNewFile(t *testing.T) {
	dir := t.TempDir()
	store := NewPOSIX(dir)
	w, err := store.Create(context.Background(), "fold_0.arff")
	require.NoError(t, err)
	_, err = w.Write([]byte("@relation partial"))
	assert.NoError(t, err)
	assert.NoError(t, w.Abort())
	assert.NoFileExists(t, filepath.Join(dir, "fold_0.arff"))
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPOSIXListPrefix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out_fold_0.arff", "out_fold_1.arff", "other.arff", "out_dir/out_fold_2.arff", "sub/x.arff"} {
		require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), os.ModePerm))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	ctx := context.Background()

	// relative to the store directory
	names, err := NewPOSIX(dir).List(ctx, "out_")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"out_fold_0.arff", "out_fold_1.arff", "out_dir/out_fold_2.arff"}, names)

	// absolute paths with the working directory store
	names, err = NewPOSIX("").List(ctx, filepath.ToSlash(filepath.Join(dir, "out_fold_")))
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.ToSlash(filepath.Join(dir, "out_fold_0.arff")),
		filepath.ToSlash(filepath.Join(dir, "out_fold_1.arff")),
	}, names)

	// relative to the working directory
	t.Chdir(dir)
	names, err = NewPOSIX("").List(ctx, "sub/")
	assert.NoError(t, err)
	assert.Equal(t, []string{"sub/x.arff"}, names)

	// a missing directory holds nothing
	names, err = NewPOSIX("").List(ctx, "missing/out_")
	assert.NoError(t, err)
	assert.Empty(t, names)
}
