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

	"github.com/crossfold/crossfold/common/parallel"
	"github.com/crossfold/crossfold/cv"
	"github.com/crossfold/crossfold/dataset"
	"github.com/juju/errors"
)

// Evaluator counts predictions against one positive class value.
type Evaluator struct {
	// PositiveClass names the positive class value. Empty selects the second declared
	// value, or the first one for a single valued class.
	PositiveClass string
	// Jobs bounds the number of goroutines predicting test instances.
	Jobs int
}

// PositiveIndex resolves the positive class value of a class attribute.
func PositiveIndex(classAttr *dataset.Attribute, name string) (int, error) {
	if name != "" {
		i, ok := classAttr.IndexOf(name)
		if !ok {
			return 0, errors.NotFoundf("class value %q of attribute %q", name, classAttr.Name())
		}
		return i, nil
	}
	if classAttr.NumValues() >= 2 {
		return 1, nil
	}
	return 0, nil
}

// Evaluate predicts every test instance with a class value and counts the outcomes.
func (e *Evaluator) Evaluate(ctx context.Context, model cv.Model, test *dataset.Dataset) (cv.ConfusionStats, error) {
	var stats cv.ConfusionStats
	classAttr, err := test.ClassAttribute()
	if err != nil {
		return stats, errors.Trace(err)
	}
	positive, err := PositiveIndex(classAttr, e.PositiveClass)
	if err != nil {
		return stats, errors.Trace(err)
	}
	predictions := make([]int, test.NumInstances())
	if err = parallel.For(ctx, test.NumInstances(), max(1, e.Jobs), func(i int) {
		if _, ok := test.ClassValue(i); ok {
			predictions[i] = model.Predict(test.Instance(i))
		}
	}); err != nil {
		return stats, errors.Trace(err)
	}
	for i, predicted := range predictions {
		actual, ok := test.ClassValue(i)
		if !ok {
			continue
		}
		switch {
		case predicted == positive && actual == positive:
			stats.TruePositive++
		case predicted == positive:
			stats.FalsePositive++
		case actual == positive:
			stats.FalseNegative++
		default:
			stats.TrueNegative++
		}
	}
	return stats, nil
}
