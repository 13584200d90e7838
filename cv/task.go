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
	"github.com/crossfold/crossfold/dataset"
	"github.com/juju/errors"
)

// Task is the unit of work of one fold: train on every other fold, test on this one.
type Task struct {
	Fold   int
	Train  *dataset.Dataset
	Test   *dataset.Dataset
	Params Params
}

// BuildTasks pairs every fold with the concatenation of the remaining folds. The
// training set of fold i holds folds 0..i-1, i+1..N-1 in that order. Each task owns
// copies of its instances.
func BuildTasks(folds []*dataset.Dataset, params Params) ([]Task, error) {
	if len(folds) == 0 {
		return nil, errors.New("no folds")
	}
	tasks := make([]Task, len(folds))
	for i := range folds {
		train, err := TrainingSet(folds, i)
		if err != nil {
			return nil, errors.Trace(err)
		}
		tasks[i] = Task{
			Fold:   i,
			Train:  train,
			Test:   folds[i].Copy(),
			Params: params,
		}
	}
	return tasks, nil
}

// TrainingSet concatenates all folds except the excluded one, in ascending order.
func TrainingSet(folds []*dataset.Dataset, exclude int) (*dataset.Dataset, error) {
	parts := make([]*dataset.Dataset, 0, len(folds))
	for j, fold := range folds {
		if j != exclude {
			parts = append(parts, fold)
		}
	}
	if len(parts) == 0 {
		// a single fold trains on nothing
		return folds[exclude].EmptyCopy(), nil
	}
	return dataset.Concat(parts...)
}
