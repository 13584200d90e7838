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

package split

import (
	"github.com/juju/errors"
	"github.com/samber/lo"
)

var (
	// ErrInvalidFoldCount is returned when the number of folds is below 1 or exceeds the
	// number of instances.
	ErrInvalidFoldCount = errors.New("invalid fold count")
	// ErrAllocationExhausted is returned when an instance finds no fold with remaining
	// capacity for its class. It indicates an internal inconsistency.
	ErrAllocationExhausted = errors.New("fold allocation exhausted")
)

// QuotaTable holds the number of instances of each class every fold must receive.
type QuotaTable struct {
	quotas   [][]int
	numFolds int
}

// NewQuotaTable spreads each class count over numFolds folds. Every fold gets
// count/numFolds instances of the class and the remaining count%numFolds instances go to
// the lowest indexed folds, one each.
func NewQuotaTable(classCounts []int, numFolds int) (QuotaTable, error) {
	if numFolds < 1 {
		return QuotaTable{}, errors.Annotatef(ErrInvalidFoldCount, "%d folds", numFolds)
	}
	quotas := make([][]int, len(classCounts))
	for c, count := range classCounts {
		if count < 0 {
			return QuotaTable{}, errors.Errorf("negative count %d of class %d", count, c)
		}
		quotas[c] = make([]int, numFolds)
		base, remainder := count/numFolds, count%numFolds
		for f := range quotas[c] {
			quotas[c][f] = base
			if f < remainder {
				quotas[c][f]++
			}
		}
	}
	return QuotaTable{quotas: quotas, numFolds: numFolds}, nil
}

func (q QuotaTable) NumFolds() int {
	return q.numFolds
}

func (q QuotaTable) NumClasses() int {
	return len(q.quotas)
}

// Quota returns the number of instances of class c assigned to fold f.
func (q QuotaTable) Quota(c, f int) int {
	return q.quotas[c][f]
}

// FoldSize returns the total number of instances assigned to fold f.
func (q QuotaTable) FoldSize(f int) int {
	return lo.SumBy(q.quotas, func(row []int) int { return row[f] })
}

// ClassCount returns the number of instances of class c over all folds.
func (q QuotaTable) ClassCount(c int) int {
	return lo.Sum(q.quotas[c])
}

// fitnessTable tracks the capacity left per class and fold during one split.
type fitnessTable [][]int

func (q QuotaTable) fitness() fitnessTable {
	return lo.Map(q.quotas, func(row []int, _ int) []int {
		return append([]int(nil), row...)
	})
}

// pick selects the fold for an instance of class c given a uniform draw r in [0, 1).
// Folds are weighted by remaining capacity; the smallest fold whose cumulative
// probability reaches r wins, falling back to the last fold with capacity left.
func (t fitnessTable) pick(c int, r float64) (int, error) {
	row := t[c]
	total := lo.Sum(row)
	if total <= 0 {
		return 0, errors.Annotatef(ErrAllocationExhausted, "class %d", c)
	}
	var (
		cumulative float64
		last       = -1
	)
	for f, fitness := range row {
		if fitness <= 0 {
			continue
		}
		last = f
		cumulative += float64(fitness) / float64(total)
		if cumulative >= r {
			return f, nil
		}
	}
	// rounding left the cumulative sum below r
	return last, nil
}

func (t fitnessTable) take(c, f int) {
	t[c][f]--
}
