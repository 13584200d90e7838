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

package cv

import (
	"context"
	"fmt"
	"time"

	"github.com/crossfold/crossfold/storage"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Result is the outcome of one fold. Stats are meaningful only when State is
// StateCompleted; Err is set only when State is StateFailed.
type Result struct {
	Fold    int
	State   State
	Stats   ConfusionStats
	Err     error
	Elapsed time.Duration
	Path    string
}

func (r Result) ZapFields() []zap.Field {
	fields := []zap.Field{
		zap.Int("fold", r.Fold),
		zap.String("state", string(r.State)),
		zap.Duration("elapsed", r.Elapsed),
	}
	if r.State == StateCompleted {
		fields = append(fields, r.Stats.ZapFields()...)
	}
	if r.Path != "" {
		fields = append(fields, zap.String("path", r.Path))
	}
	if r.Err != nil {
		fields = append(fields, zap.Error(r.Err))
	}
	return fields
}

// ResultWriter persists the stats of a completed fold and returns where they went.
// Implementations are called concurrently for distinct folds.
type ResultWriter interface {
	Write(ctx context.Context, fold int, stats ConfusionStats) (string, error)
}

// ResultPath returns <prefix>_<fold>.txt.
func ResultPath(prefix string, fold int) string {
	return fmt.Sprintf("%s_%d.txt", prefix, fold)
}

// FileResultWriter writes stats as text files named by ResultPath.
type FileResultWriter struct {
	Storage *storage.Storage
	Prefix  string
}

func (w *FileResultWriter) Write(ctx context.Context, fold int, stats ConfusionStats) (string, error) {
	text, err := stats.MarshalText()
	if err != nil {
		return "", errors.Annotate(ErrPersist, err.Error())
	}
	path := ResultPath(w.Prefix, fold)
	if err = w.Storage.WriteFile(ctx, path, text); err != nil {
		return "", err
	}
	return path, nil
}

// ReadResult reads stats written by FileResultWriter.
func ReadResult(ctx context.Context, s *storage.Storage, path string) (ConfusionStats, error) {
	var stats ConfusionStats
	text, err := s.ReadFile(ctx, path)
	if err != nil {
		return stats, errors.Trace(err)
	}
	if err = stats.UnmarshalText(text); err != nil {
		return stats, errors.Annotatef(err, "read %s", path)
	}
	return stats, nil
}
