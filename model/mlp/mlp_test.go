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

package mlp

import (
	"context"
	"testing"

	"github.com/crossfold/crossfold/cv"
	"github.com/crossfold/crossfold/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newClusters creates two separable clusters: x in [0, 3] is "low" and x in [7, 10]
// is "high". Colors are uninformative.
func newClusters(t *testing.T) *dataset.Dataset {
	ds := dataset.New("clusters", []*dataset.Attribute{
		dataset.NewNumericAttribute("x"),
		dataset.NewNominalAttribute("color", "red", "blue"),
		dataset.NewNominalAttribute("class", "low", "high"),
	})
	for i := 0; i < 4; i++ {
		require.NoError(t, ds.Add(dataset.Instance{float64(i), float64(i % 2), 0}))
		require.NoError(t, ds.Add(dataset.Instance{float64(7 + i), float64(i % 2), 1}))
	}
	require.NoError(t, ds.SetClassIndex(2))
	return ds
}

func trainParams() cv.Params {
	params := cv.DefaultParams()
	params.Epochs = 1000
	params.HiddenLayers = []int{4}
	params.Seed = 42
	return params
}

func TestTrainSeparable(t *testing.T) {
	train := newClusters(t)
	network, err := Train(context.Background(), train, trainParams())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 2}, network.Layers())
	for i, inst := range train.Instances() {
		class, _ := train.ClassValue(i)
		assert.Equal(t, class, network.Predict(inst), "instance %v", inst)
	}
	// values outside the training range are clamped
	assert.Equal(t, 0, network.Predict(dataset.Instance{-100, 0, dataset.Missing()}))
	assert.Equal(t, 1, network.Predict(dataset.Instance{100, 1, dataset.Missing()}))
}

func TestTrainDeterministic(t *testing.T) {
	train := newClusters(t)
	params := trainParams()
	params.Epochs = 5
	a, err := Train(context.Background(), train, params)
	require.NoError(t, err)
	b, err := Train(context.Background(), train, params)
	require.NoError(t, err)
	assert.Equal(t, a.weights, b.weights)

	params.Seed = 7
	c, err := Train(context.Background(), train, params)
	require.NoError(t, err)
	assert.NotEqual(t, a.weights, c.weights)
}

func TestDefaultHiddenLayer(t *testing.T) {
	params := cv.DefaultParams()
	params.Epochs = 1
	network, err := Train(context.Background(), newClusters(t), params)
	require.NoError(t, err)
	// 3 inputs and 2 classes
	assert.Equal(t, []int{3, 2, 2}, network.Layers())
	assert.Equal(t, 3, network.NumInputs())
}

func TestTrainMissingValues(t *testing.T) {
	train := newClusters(t)
	require.NoError(t, train.Add(dataset.Instance{dataset.Missing(), dataset.Missing(), 0}))
	require.NoError(t, train.Add(dataset.Instance{5, 0, dataset.Missing()}))
	_, err := Train(context.Background(), train, trainParams())
	assert.NoError(t, err)
}

func TestTrainErrors(t *testing.T) {
	ctx := context.Background()
	train := newClusters(t)

	// invalid params
	params := trainParams()
	params.LearningRate = 2
	_, err := Train(ctx, train, params)
	assert.Error(t, err)

	// no labeled instances
	_, err = Train(ctx, train.EmptyCopy(), trainParams())
	assert.True(t, errors.Is(err, ErrEmptyTrainingSet))

	// no class
	unlabeled := train.Copy()
	require.NoError(t, unlabeled.SetClassIndex(-1))
	_, err = Train(ctx, unlabeled, trainParams())
	assert.True(t, errors.Is(err, dataset.ErrMissingClassAttribute))

	// canceled
	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Train(canceled, train, trainParams())
	assert.True(t, errors.Is(err, context.Canceled))

	// trainer adapter keeps a nil model on failure
	model, err := Trainer{}.Train(ctx, train.EmptyCopy(), trainParams())
	assert.Error(t, err)
	assert.Nil(t, model)
}

type thresholdModel float64

func (m thresholdModel) Predict(inst dataset.Instance) int {
	if inst[0] > float64(m) {
		return 1
	}
	return 0
}

func TestEvaluator(t *testing.T) {
	ctx := context.Background()
	test := newClusters(t)
	require.NoError(t, test.Add(dataset.Instance{5, 0, dataset.Missing()}))

	// "high" is the default positive class
	evaluator := &Evaluator{Jobs: 4}
	stats, err := evaluator.Evaluate(ctx, thresholdModel(8), test)
	assert.NoError(t, err)
	// 9 and 10 are positive hits, 7 and 8 are misses
	assert.Equal(t, cv.ConfusionStats{TruePositive: 2, FalseNegative: 2, TrueNegative: 4}, stats)

	evaluator = &Evaluator{PositiveClass: "low"}
	stats, err = evaluator.Evaluate(ctx, thresholdModel(1), test)
	assert.NoError(t, err)
	assert.Equal(t, cv.ConfusionStats{TruePositive: 2, FalsePositive: 0, TrueNegative: 4, FalseNegative: 2}, stats)

	evaluator = &Evaluator{PositiveClass: "medium"}
	_, err = evaluator.Evaluate(ctx, thresholdModel(1), test)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestPositiveIndex(t *testing.T) {
	i, err := PositiveIndex(dataset.NewNominalAttribute("class", "no", "yes", "maybe"), "")
	assert.NoError(t, err)
	assert.Equal(t, 1, i)
	i, err = PositiveIndex(dataset.NewNominalAttribute("class", "only"), "")
	assert.NoError(t, err)
	assert.Equal(t, 0, i)
	i, err = PositiveIndex(dataset.NewNominalAttribute("class", "no", "yes", "maybe"), "maybe")
	assert.NoError(t, err)
	assert.Equal(t, 2, i)
}

func TestCrossValidation(t *testing.T) {
	source := newClusters(t)
	for i := 0; i < 4; i++ {
		require.NoError(t, source.Add(dataset.Instance{float64(i) + 0.5, 0, 0}))
		require.NoError(t, source.Add(dataset.Instance{float64(7+i) + 0.5, 1, 1}))
	}
	folds := make([]*dataset.Dataset, 4)
	for f := range folds {
		folds[f] = source.EmptyCopy()
	}
	for i, inst := range source.Instances() {
		require.NoError(t, folds[i%4].Add(inst.Copy()))
	}
	results, err := cv.NewOrchestrator(Trainer{}, &Evaluator{Jobs: 2}).Run(context.Background(), folds, trainParams())
	require.NoError(t, err)
	overall, err := cv.Aggregate(results)
	require.NoError(t, err)
	assert.Equal(t, 4, overall.Succeeded)
	assert.Equal(t, 16, overall.Stats.Total())
	assert.Greater(t, overall.Accuracy, 0.8)
}
