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

	"github.com/crossfold/crossfold/dataset"
)

// Model is a trained classifier.
type Model interface {
	// Predict returns the index of the predicted class value for an instance laid out
	// in the schema the model was trained on.
	Predict(inst dataset.Instance) int
}

// Trainer fits a model on a training set. Implementations are called from one
// goroutine per fold and must not share mutable state between calls.
type Trainer interface {
	Train(ctx context.Context, train *dataset.Dataset, params Params) (Model, error)
}

// Evaluator scores a model on a test set.
type Evaluator interface {
	Evaluate(ctx context.Context, model Model, test *dataset.Dataset) (ConfusionStats, error)
}

// TrainerFunc adapts a function to the Trainer interface.
type TrainerFunc func(ctx context.Context, train *dataset.Dataset, params Params) (Model, error)

func (f TrainerFunc) Train(ctx context.Context, train *dataset.Dataset, params Params) (Model, error) {
	return f(ctx, train, params)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, model Model, test *dataset.Dataset) (ConfusionStats, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, model Model, test *dataset.Dataset) (ConfusionStats, error) {
	return f(ctx, model, test)
}
