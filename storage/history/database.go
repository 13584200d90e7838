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

package history

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/juju/errors"
	"github.com/samber/lo"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.uber.org/zap"
)

const SQLitePrefix = "sqlite://"

// Run is one cross-validation run.
type Run struct {
	ID        string
	Dataset   string
	NumFolds  int
	Params    string
	StartTime time.Time
	EndTime   time.Time
	Succeeded int
	Failed    int
}

func (r *Run) ZapFields() []zap.Field {
	return []zap.Field{
		zap.String("run_id", r.ID),
		zap.String("dataset", r.Dataset),
		zap.Int("n_folds", r.NumFolds),
		zap.Int("succeeded", r.Succeeded),
		zap.Int("failed", r.Failed),
	}
}

// Fold is the outcome of one fold of a run.
type Fold struct {
	RunID         string
	Fold          int
	State         string
	TruePositive  int
	FalsePositive int
	TrueNegative  int
	FalseNegative int
	Error         string
	Elapsed       time.Duration
}

type Database interface {
	Close() error
	Init(ctx context.Context) error
	// SaveRun stores a run together with its folds. Saving a run twice replaces it.
	SaveRun(ctx context.Context, run *Run, folds []*Fold) error
	// ListRuns returns runs, most recent first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	// GetRun returns a run or an error satisfying errors.Is(err, errors.NotFound).
	GetRun(ctx context.Context, id string) (*Run, error)
	// ListFolds returns the folds of a run ordered by fold index.
	ListFolds(ctx context.Context, runID string) ([]*Fold, error)
}

// Open a connection to the history database. Both sqlite://<file> and a plain file
// path are accepted.
func Open(path string) (Database, error) {
	dataSourceName := strings.TrimPrefix(path, SQLitePrefix)
	if dataSourceName == "" {
		return nil, errors.NotValidf("history path %q", path)
	}
	dataSourceName, err := appendURLParams(dataSourceName, []lo.Tuple2[string, string]{
		{A: "_pragma", B: "busy_timeout(10000)"},
		{A: "_pragma", B: "journal_mode(wal)"},
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	database := new(SQLite)
	if database.db, err = otelsql.Open("sqlite", dataSourceName,
		otelsql.WithAttributes(semconv.DBSystemSqlite),
		otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
	); err != nil {
		return nil, errors.Trace(err)
	}
	return database, nil
}

func appendURLParams(rawURL string, params []lo.Tuple2[string, string]) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Trace(err)
	}
	q := parsed.Query()
	for _, tuple := range params {
		q.Add(tuple.A, tuple.B)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
