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
	"fmt"
	"slices"
	"testing"

	"github.com/crossfold/crossfold/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLabeled creates a dataset with an id attribute and a nominal class attribute.
// The i-th instance has id i and class labels[i] (-1 for missing).
func newLabeled(t *testing.T, classes []string, labels []int) *dataset.Dataset {
	ds := dataset.New("labeled", []*dataset.Attribute{
		dataset.NewNumericAttribute("id"),
		dataset.NewNominalAttribute("class", classes...),
	})
	for i, label := range labels {
		c := float64(label)
		if label < 0 {
			c = dataset.Missing()
		}
		require.NoError(t, ds.Add(dataset.Instance{float64(i), c}))
	}
	require.NoError(t, ds.SetClassIndex(1))
	return ds
}

func repeatLabels(counts ...int) []int {
	var labels []int
	for c, n := range counts {
		labels = append(labels, lo.Times(n, func(int) int { return c })...)
	}
	return labels
}

func ids(ds *dataset.Dataset) []int {
	return lo.Map(ds.Instances(), func(inst dataset.Instance, _ int) int { return int(inst[0]) })
}

func foldClassCounts(t *testing.T, fold *dataset.Dataset) []int {
	counts, err := fold.ClassCounts()
	require.NoError(t, err)
	return counts
}

func TestQuotaTable(t *testing.T) {
	quotas, err := NewQuotaTable([]int{7, 3}, 5)
	assert.NoError(t, err)
	assert.Equal(t, 5, quotas.NumFolds())
	assert.Equal(t, 2, quotas.NumClasses())
	for f, expected := range []int{2, 2, 1, 1, 1} {
		assert.Equal(t, expected, quotas.Quota(0, f))
	}
	for f, expected := range []int{1, 1, 1, 0, 0} {
		assert.Equal(t, expected, quotas.Quota(1, f))
	}
	for f, expected := range []int{3, 3, 2, 1, 1} {
		assert.Equal(t, expected, quotas.FoldSize(f))
	}
	assert.Equal(t, 7, quotas.ClassCount(0))

	_, err = NewQuotaTable([]int{7, 3}, 0)
	assert.True(t, errors.Is(err, ErrInvalidFoldCount))
	_, err = NewQuotaTable([]int{-1}, 2)
	assert.Error(t, err)
}

func TestQuotaTableBalance(t *testing.T) {
	for _, numFolds := range []int{1, 2, 3, 7, 10} {
		counts := []int{0, 1, 9, 10, 23}
		quotas, err := NewQuotaTable(counts, numFolds)
		require.NoError(t, err)
		for c, count := range counts {
			row := lo.Times(numFolds, func(f int) int { return quotas.Quota(c, f) })
			assert.Equal(t, count, lo.Sum(row))
			assert.LessOrEqual(t, lo.Max(row)-lo.Min(row), 1)
			// larger quotas come first
			assert.True(t, slices.IsSortedFunc(row, func(a, b int) int { return b - a }))
		}
	}
}

func TestFitnessPick(t *testing.T) {
	table := fitnessTable{{0, 2, 0, 2}}
	f, err := table.pick(0, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, f)
	f, err = table.pick(0, 0.5)
	assert.NoError(t, err)
	assert.Equal(t, 1, f)
	f, err = table.pick(0, 0.75)
	assert.NoError(t, err)
	assert.Equal(t, 3, f)
	// a draw above the cumulative sum falls back to the last fold with capacity
	f, err = table.pick(0, 1.5)
	assert.NoError(t, err)
	assert.Equal(t, 3, f)

	_, err = fitnessTable{{0, 0}}.pick(0, 0.1)
	assert.True(t, errors.Is(err, ErrAllocationExhausted))
}

func TestSplitExample(t *testing.T) {
	// 7 instances of A and 3 of B into 5 folds
	source := newLabeled(t, []string{"A", "B"}, repeatLabels(7, 3))
	for seed := int64(0); seed < 20; seed++ {
		folds, err := NewSplitter(WithSeed(seed)).Split(source, 5)
		require.NoError(t, err)
		require.Len(t, folds, 5)
		expectedA := []int{2, 2, 1, 1, 1}
		expectedB := []int{1, 1, 1, 0, 0}
		for f, fold := range folds {
			assert.Equal(t, []int{expectedA[f], expectedB[f]}, foldClassCounts(t, fold), "seed %d fold %d", seed, f)
			assert.Equal(t, expectedA[f]+expectedB[f], fold.NumInstances())
		}
	}
}

func TestSplitPartition(t *testing.T) {
	source := newLabeled(t, []string{"x", "y", "z"}, repeatLabels(13, 8, 21))
	for _, shuffle := range []bool{false, true} {
		for _, numFolds := range []int{1, 2, 5, 10, 42} {
			splitter := NewSplitter(WithSeed(int64(numFolds)), WithShuffle(shuffle))
			folds, err := splitter.Split(source, numFolds)
			require.NoError(t, err)
			require.Len(t, folds, numFolds)
			quotas, err := splitter.Quotas(source, numFolds)
			require.NoError(t, err)

			var all []int
			for f, fold := range folds {
				assert.True(t, fold.SameSchema(source))
				counts := foldClassCounts(t, fold)
				for c := range counts {
					assert.Equal(t, quotas.Quota(c, f), counts[c], "shuffle %v folds %d", shuffle, numFolds)
				}
				all = append(all, ids(fold)...)
			}
			// every instance lands in exactly one fold
			slices.Sort(all)
			assert.Equal(t, lo.Range(source.NumInstances()), all)
		}
	}
}

func TestSplitSingleFold(t *testing.T) {
	source := newLabeled(t, []string{"a", "b"}, []int{1, 0, 1, 1, 0})
	folds, err := NewSplitter(WithSeed(3)).Split(source, 1)
	require.NoError(t, err)
	require.Len(t, folds, 1)
	// a single fold keeps the source order
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ids(folds[0]))
	// folds hold copies
	folds[0].Instance(0)[0] = 100
	assert.Equal(t, 0.0, source.Instance(0)[0])
}

func TestSplitLeaveOneOut(t *testing.T) {
	source := newLabeled(t, []string{"a", "b"}, repeatLabels(6, 0))
	folds, err := NewSplitter(WithSeed(5)).Split(source, source.NumInstances())
	require.NoError(t, err)
	require.Len(t, folds, 6)
	var all []int
	for _, fold := range folds {
		assert.Equal(t, 1, fold.NumInstances())
		all = append(all, ids(fold)...)
	}
	slices.Sort(all)
	assert.Equal(t, lo.Range(6), all)

	// remainders of every class go to the lowest folds, so with several classes the
	// low folds take one instance per class
	source = newLabeled(t, []string{"a", "b"}, repeatLabels(4, 3))
	folds, err = NewSplitter().Split(source, source.NumInstances())
	require.NoError(t, err)
	sizes := lo.Map(folds, func(fold *dataset.Dataset, _ int) int { return fold.NumInstances() })
	assert.Equal(t, []int{2, 2, 2, 1, 0, 0, 0}, sizes)
}

func TestSplitSeedIndependentQuotas(t *testing.T) {
	source := newLabeled(t, []string{"a", "b", "c"}, repeatLabels(11, 5, 17))
	var memberships [][]int
	for seed := int64(1); seed <= 5; seed++ {
		folds, err := NewSplitter(WithSeed(seed)).Split(source, 4)
		require.NoError(t, err)
		sizes := lo.Map(folds, func(fold *dataset.Dataset, _ int) int { return fold.NumInstances() })
		assert.Equal(t, []int{10, 8, 8, 7}, sizes)
		for f, fold := range folds {
			counts := foldClassCounts(t, fold)
			assert.Equal(t, []int{[]int{3, 3, 3, 2}[f], []int{2, 1, 1, 1}[f], []int{5, 4, 4, 4}[f]}, counts)
		}
		memberships = append(memberships, ids(folds[0]))
	}
	// the same seed reproduces the same folds
	folds, err := NewSplitter(WithSeed(1)).Split(source, 4)
	require.NoError(t, err)
	assert.Equal(t, memberships[0], ids(folds[0]))
}

func TestSplitMissingClass(t *testing.T) {
	source := newLabeled(t, []string{"a", "b"}, []int{0, -1, 1, -1, 0, -1, 1, 0})
	folds, err := NewSplitter(WithSeed(7)).Split(source, 3)
	require.NoError(t, err)
	missing := lo.Map(folds, func(fold *dataset.Dataset, _ int) int {
		return lo.CountBy(lo.Range(fold.NumInstances()), func(i int) bool {
			_, ok := fold.ClassValue(i)
			return !ok
		})
	})
	assert.Equal(t, []int{1, 1, 1}, missing)
	assert.Equal(t, 8, lo.SumBy(folds, (*dataset.Dataset).NumInstances))
}

func TestSplitErrors(t *testing.T) {
	source := newLabeled(t, []string{"a", "b"}, []int{0, 1, 0})
	splitter := NewSplitter()

	_, err := splitter.Split(source, 0)
	assert.True(t, errors.Is(err, ErrInvalidFoldCount))
	_, err = splitter.Split(source, 4)
	assert.True(t, errors.Is(err, ErrInvalidFoldCount))

	noClass := source.Copy()
	require.NoError(t, noClass.SetClassIndex(-1))
	_, err = splitter.Split(noClass, 2)
	assert.True(t, errors.Is(err, dataset.ErrMissingClassAttribute))

	numericClass := source.Copy()
	require.NoError(t, numericClass.SetClassIndex(0))
	_, err = splitter.Split(numericClass, 2)
	assert.True(t, errors.Is(err, dataset.ErrNonNominalClass))
}

func TestSplitConcurrentCalls(t *testing.T) {
	source := newLabeled(t, []string{"a", "b"}, repeatLabels(50, 30))
	splitter := NewSplitter(WithSeed(42), WithShuffle(true))
	expected, err := splitter.Split(source, 8)
	require.NoError(t, err)
	results := make([][]*dataset.Dataset, 4)
	done := make(chan struct{})
	for i := range results {
		go func() {
			defer func() { done <- struct{}{} }()
			results[i], _ = splitter.Split(source, 8)
		}()
	}
	for range results {
		<-done
	}
	for i, folds := range results {
		require.Len(t, folds, 8, fmt.Sprint(i))
		for f := range folds {
			assert.Equal(t, ids(expected[f]), ids(folds[f]))
		}
	}
}
