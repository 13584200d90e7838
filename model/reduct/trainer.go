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

	"github.com/crossfold/crossfold/common/log"
	"github.com/crossfold/crossfold/cv"
	"github.com/crossfold/crossfold/dataset"
	"github.com/crossfold/crossfold/model/discretize"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Trainer discretizes the training set, reduces it to a reduct and trains Inner on
// the result. ModeNone trains Inner on the raw training set.
type Trainer struct {
	Inner cv.Trainer
	Mode  Mode
}

func (t *Trainer) Train(ctx context.Context, train *dataset.Dataset, params cv.Params) (cv.Model, error) {
	if t.Mode == ModeNone {
		return t.Inner.Train(ctx, train, params)
	}
	discretizer, err := discretize.Learn(train)
	if err != nil {
		return nil, errors.Trace(err)
	}
	discretized, err := discretizer.Apply(train)
	if err != nil {
		return nil, errors.Trace(err)
	}
	mask, err := Compute(discretized, t.Mode)
	if err != nil {
		return nil, errors.Trace(err)
	}
	reduced, err := Apply(mask, discretized)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("reduce training set",
		zap.String("relation", train.Relation()),
		zap.Stringer("mode", t.Mode),
		zap.Stringer("reduct", mask),
		zap.Strings("attributes", reducedNames(reduced)))
	inner, err := t.Inner.Train(ctx, reduced, params)
	if err != nil {
		return nil, err
	}
	return &Model{
		discretizer: discretizer,
		mask:        mask,
		indices:     selection(mask, train.ClassIndex()),
		inner:       inner,
	}, nil
}

func reducedNames(ds *dataset.Dataset) []string {
	names := make([]string, 0, ds.NumAttributes())
	for _, attr := range ds.Attributes() {
		names = append(names, attr.Name())
	}
	return names
}

// Model predicts instances of the original schema with a model trained on the
// reduced schema.
type Model struct {
	discretizer *discretize.Discretizer
	mask        Mask
	indices     []int
	inner       cv.Model
}

func (m *Model) Mask() Mask {
	return m.mask
}

func (m *Model) Predict(inst dataset.Instance) int {
	return m.inner.Predict(dataset.Project(m.discretizer.Transform(inst), m.indices))
}
