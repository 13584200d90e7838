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
	"database/sql"
	"time"

	"github.com/juju/errors"
	_ "modernc.org/sqlite"
)

type SQLite struct {
	db *sql.DB
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	dataset TEXT,
	num_folds INTEGER,
	params TEXT,
	start_time DATETIME,
	end_time DATETIME,
	succeeded INTEGER,
	failed INTEGER
);`); err != nil {
		return errors.Trace(err)
	}
	if _, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS folds (
	run_id TEXT,
	fold INTEGER,
	state TEXT,
	tp INTEGER,
	fp INTEGER,
	tn INTEGER,
	fn INTEGER,
	error TEXT,
	elapsed_ms INTEGER,
	PRIMARY KEY (run_id, fold)
);`); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (s *SQLite) SaveRun(ctx context.Context, run *Run, folds []*Fold) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if _, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, dataset, num_folds, params, start_time, end_time, succeeded, failed)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	dataset = excluded.dataset,
	num_folds = excluded.num_folds,
	params = excluded.params,
	start_time = excluded.start_time,
	end_time = excluded.end_time,
	succeeded = excluded.succeeded,
	failed = excluded.failed
`, run.ID, run.Dataset, run.NumFolds, run.Params, run.StartTime.UTC(), run.EndTime.UTC(), run.Succeeded, run.Failed); err != nil {
		return errors.Trace(err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM folds WHERE run_id = ?`, run.ID); err != nil {
		return errors.Trace(err)
	}
	for _, fold := range folds {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO folds (run_id, fold, state, tp, fp, tn, fn, error, elapsed_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, run.ID, fold.Fold, fold.State, fold.TruePositive, fold.FalsePositive, fold.TrueNegative, fold.FalseNegative,
			fold.Error, fold.Elapsed.Milliseconds()); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(tx.Commit())
}

func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	rs, err := s.db.QueryContext(ctx, `
SELECT id, dataset, num_folds, params, start_time, end_time, succeeded, failed FROM runs
ORDER BY start_time DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rs.Close()
	var runs []*Run
	for rs.Next() {
		var run Run
		if err = rs.Scan(&run.ID, &run.Dataset, &run.NumFolds, &run.Params, &run.StartTime, &run.EndTime,
			&run.Succeeded, &run.Failed); err != nil {
			return nil, errors.Trace(err)
		}
		runs = append(runs, &run)
	}
	return runs, errors.Trace(rs.Err())
}

func (s *SQLite) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
SELECT id, dataset, num_folds, params, start_time, end_time, succeeded, failed FROM runs WHERE id = ?
`, id).Scan(&run.ID, &run.Dataset, &run.NumFolds, &run.Params, &run.StartTime, &run.EndTime, &run.Succeeded, &run.Failed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("run %s", id)
		}
		return nil, errors.Trace(err)
	}
	return &run, nil
}

func (s *SQLite) ListFolds(ctx context.Context, runID string) ([]*Fold, error) {
	rs, err := s.db.QueryContext(ctx, `
SELECT run_id, fold, state, tp, fp, tn, fn, error, elapsed_ms FROM folds WHERE run_id = ? ORDER BY fold
`, runID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rs.Close()
	var folds []*Fold
	for rs.Next() {
		var (
			fold    Fold
			elapsed int64
		)
		if err = rs.Scan(&fold.RunID, &fold.Fold, &fold.State, &fold.TruePositive, &fold.FalsePositive,
			&fold.TrueNegative, &fold.FalseNegative, &fold.Error, &elapsed); err != nil {
			return nil, errors.Trace(err)
		}
		fold.Elapsed = time.Duration(elapsed) * time.Millisecond
		folds = append(folds, &fold)
	}
	return folds, errors.Trace(rs.Err())
}
