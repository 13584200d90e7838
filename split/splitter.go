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
	"math/rand"

	"github.com/crossfold/crossfold/common/log"
	"github.com/crossfold/crossfold/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Splitter partitions a dataset into class balanced folds. A Splitter holds only its
// configuration and may be used from several goroutines.
type Splitter struct {
	seed    int64
	shuffle bool
}

type Option func(*Splitter)

// WithSeed sets the seed of the random source created by each Split call.
func WithSeed(seed int64) Option {
	return func(s *Splitter) {
		s.seed = seed
	}
}

// WithShuffle visits instances in a seeded random order instead of source order.
func WithShuffle(shuffle bool) Option {
	return func(s *Splitter) {
		s.shuffle = shuffle
	}
}

func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quotas validates the request and computes the per class, per fold quotas. Instances
// with a missing class value form one extra class after the declared values.
func (s *Splitter) Quotas(source *dataset.Dataset, numFolds int) (QuotaTable, error) {
	if _, err := source.ClassAttribute(); err != nil {
		return QuotaTable{}, err
	}
	if numFolds < 1 || numFolds > source.NumInstances() {
		return QuotaTable{}, errors.Annotatef(ErrInvalidFoldCount, "%d folds for %d instances", numFolds, source.NumInstances())
	}
	return NewQuotaTable(classCounts(source), numFolds)
}

// Split assigns every instance of source to exactly one of numFolds folds. Each fold
// receives exactly its quota of every class; which instances land in which fold depends
// on the seed. Folds hold copies of the source instances and share its schema.
func (s *Splitter) Split(source *dataset.Dataset, numFolds int) ([]*dataset.Dataset, error) {
	quotas, err := s.Quotas(source, numFolds)
	if err != nil {
		return nil, err
	}
	fitness := quotas.fitness()
	rng := rand.New(rand.NewSource(s.seed))

	order := make([]int, source.NumInstances())
	for i := range order {
		order[i] = i
	}
	if s.shuffle {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	folds := make([]*dataset.Dataset, numFolds)
	for f := range folds {
		folds[f] = source.EmptyCopy()
	}
	missing := quotas.NumClasses() - 1
	for _, i := range order {
		c, ok := source.ClassValue(i)
		if !ok {
			c = missing
		}
		f, err := fitness.pick(c, rng.Float64())
		if err != nil {
			return nil, errors.Annotatef(err, "instance %d", i)
		}
		if err = folds[f].Add(source.Instance(i).Copy()); err != nil {
			return nil, errors.Trace(err)
		}
		fitness.take(c, f)
	}

	log.Logger().Debug("split dataset into folds",
		zap.String("relation", source.Relation()),
		zap.Int("n_instances", source.NumInstances()),
		zap.Int("n_folds", numFolds),
		zap.Int64("seed", s.seed),
		zap.Bool("shuffle", s.shuffle))
	return folds, nil
}

// classCounts counts instances per class value plus one trailing bucket for
// instances whose class value is missing.
func classCounts(source *dataset.Dataset) []int {
	attr := source.Attribute(source.ClassIndex())
	counts := make([]int, attr.NumValues()+1)
	for i := 0; i < source.NumInstances(); i++ {
		if c, ok := source.ClassValue(i); ok {
			counts[c]++
		} else {
			counts[attr.NumValues()]++
		}
	}
	return counts
}
