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

package reduct

import (
	"context"
	"testing"

	"github.com/crossfold/crossfold/cv"
	"github.com/crossfold/crossfold/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, rows [][]float64) *dataset.Dataset {
	ds := dataset.New("table", []*dataset.Attribute{
		dataset.NewNominalAttribute("a", "0", "1"),
		dataset.NewNominalAttribute("b", "0", "1"),
		dataset.NewNominalAttribute("c", "0", "1"),
		dataset.NewNominalAttribute("d", "no", "yes"),
	})
	for _, row := range rows {
		require.NoError(t, ds.Add(dataset.Instance(row)))
	}
	require.NoError(t, ds.SetClassIndex(3))
	return ds
}

func TestCompute(t *testing.T) {
	// d = a or b, c duplicates a
	ds := newTable(t, [][]float64{
		{0, 0, 0, 0},
		{0, 1, 0, 1},
		{1, 0, 1, 1},
		{1, 1, 1, 1},
		{1, 1, 1, dataset.Missing()},
	})
	for _, mode := range []Mode{ModeAll, ModeDec} {
		mask, err := Compute(ds, mode)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, mask.Indices(), mode.String())
		assert.Equal(t, 2, mask.Len())
		assert.Equal(t, "{0,1}", mask.String())
	}
}

func TestComputeGeneralizedDecision(t *testing.T) {
	// both condition classes hold both decisions
	ds := newTable(t, [][]float64{
		{0, 0, 0, 0},
		{0, 0, 0, 1},
		{1, 0, 0, 0},
		{1, 0, 0, 1},
	})
	mask, err := Compute(ds, ModeAll)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, mask.Indices())
	mask, err = Compute(ds, ModeDec)
	require.NoError(t, err)
	assert.Empty(t, mask.Indices())
}

func TestComputeRemovesRedundantAttributes(t *testing.T) {
	// c alone discerns every pair, a and b are needed only together
	ds := newTable(t, [][]float64{
		{0, 0, 0, 0},
		{1, 0, 1, 1},
		{0, 1, 1, 1},
		{1, 1, 1, 1},
	})
	mask, err := Compute(ds, ModeAll)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, mask.Indices())
}

func TestComputeErrors(t *testing.T) {
	numeric := dataset.New("numeric", []*dataset.Attribute{
		dataset.NewNumericAttribute("x"),
		dataset.NewNominalAttribute("d", "no", "yes"),
	})
	require.NoError(t, numeric.SetClassIndex(1))
	_, err := Compute(numeric, ModeAll)
	assert.True(t, errors.Is(err, ErrNotDiscretized))

	ds := newTable(t, nil)
	_, err = Compute(ds, ModeNone)
	assert.True(t, errors.Is(err, errors.NotValid))
	require.NoError(t, ds.SetClassIndex(-1))
	_, err = Compute(ds, ModeAll)
	assert.True(t, errors.Is(err, dataset.ErrMissingClassAttribute))
}

func TestApply(t *testing.T) {
	ds := newTable(t, [][]float64{{0, 1, 0, 1}, {1, 0, 1, 0}})
	reduced, err := Apply(NewMask(4, 2), ds)
	require.NoError(t, err)
	assert.Equal(t, 2, reduced.NumAttributes())
	assert.Equal(t, "c", reduced.Attribute(0).Name())
	assert.Equal(t, 1, reduced.ClassIndex())
	assert.Equal(t, dataset.Instance{1, 0}, reduced.Instance(1))

	// an empty reduct keeps only the class
	reduced, err = Apply(NewMask(4), ds)
	require.NoError(t, err)
	assert.Equal(t, 1, reduced.NumAttributes())
	assert.Equal(t, 0, reduced.ClassIndex())

	_, err = Apply(NewMask(3, 0), ds)
	assert.True(t, errors.Is(err, dataset.ErrSchemaMismatch))
}

func TestParseMode(t *testing.T) {
	for s, expected := range map[string]Mode{
		"1": ModeAll, "all": ModeAll, "2": ModeDec, " DEC ": ModeDec, "none": ModeNone,
	} {
		mode, err := ParseMode(s)
		assert.NoError(t, err)
		assert.Equal(t, expected, mode)
	}
	_, err := ParseMode("3")
	assert.True(t, errors.Is(err, errors.NotValid))
}

type firstValueModel struct{}

func (firstValueModel) Predict(inst dataset.Instance) int {
	return int(inst[0])
}

func TestTrainer(t *testing.T) {
	train := dataset.New("transactions", []*dataset.Attribute{
		dataset.NewNumericAttribute("amount"),
		dataset.NewNumericAttribute("fee"),
		dataset.NewNominalAttribute("channel", "web", "pos"),
		dataset.NewNominalAttribute("fraud", "no", "yes"),
	})
	for r := 0; r < 2; r++ {
		for v := 1; v <= 10; v++ {
			class := 0.0
			if v > 5 {
				class = 1
			}
			require.NoError(t, train.Add(dataset.Instance{float64(v), 2.5, float64(v % 2), class}))
		}
	}
	require.NoError(t, train.SetClassIndex(3))

	var seen *dataset.Dataset
	inner := cv.TrainerFunc(func(_ context.Context, reduced *dataset.Dataset, _ cv.Params) (cv.Model, error) {
		seen = reduced
		return firstValueModel{}, nil
	})
	trainer := &Trainer{Inner: inner, Mode: ModeAll}
	model, err := trainer.Train(context.Background(), train, cv.DefaultParams())
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, 2, seen.NumAttributes())
	assert.Equal(t, "amount", seen.Attribute(0).Name())
	assert.True(t, seen.Attribute(0).IsNominal())
	assert.Equal(t, 1, seen.ClassIndex())
	assert.Equal(t, []int{0}, model.(*Model).Mask().Indices())

	// predictions go through discretization and projection
	assert.Equal(t, 1, model.Predict(dataset.Instance{100, 2.5, 0, dataset.Missing()}))
	assert.Equal(t, 0, model.Predict(dataset.Instance{2, 2.5, 1, dataset.Missing()}))

	// no reduction
	trainer.Mode = ModeNone
	_, err = trainer.Train(context.Background(), train, cv.DefaultParams())
	require.NoError(t, err)
	assert.Same(t, train, seen)

	// inner failures are returned as is
	failing := &Trainer{Mode: ModeDec, Inner: cv.TrainerFunc(func(context.Context, *dataset.Dataset, cv.Params) (cv.Model, error) {
		return nil, errors.New("diverged")
	})}
	_, err = failing.Train(context.Background(), train, cv.DefaultParams())
	assert.EqualError(t, err, "diverged")
}
