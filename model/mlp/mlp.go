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

// Package mlp implements a multilayer perceptron trained by online backpropagation
// with momentum. It is the default trainer and evaluator of cross-validation runs.
package mlp

import (
	"context"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/crossfold/crossfold/common/log"
	"github.com/crossfold/crossfold/cv"
	"github.com/crossfold/crossfold/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// ErrEmptyTrainingSet is returned when no training instance has a class value.
var ErrEmptyTrainingSet = errors.New("no labeled training instances")

const initScale = 0.05

// Network is a trained perceptron. It is safe for concurrent prediction.
type Network struct {
	encoder *encoder
	// weights[l][j] holds the input weights of unit j in layer l followed by its bias.
	weights [][][]float32
	sizes   []int
}

// NumInputs returns the width of the input layer.
func (n *Network) NumInputs() int {
	return n.sizes[0]
}

// Layers returns the number of units of every layer, input layer first.
func (n *Network) Layers() []int {
	return append([]int(nil), n.sizes...)
}

// Predict returns the class value index with the highest output.
func (n *Network) Predict(inst dataset.Instance) int {
	activations := n.newActivations()
	n.encoder.encode(inst, activations[0])
	n.forward(activations)
	out := activations[len(activations)-1]
	best := 0
	for k := 1; k < len(out); k++ {
		if out[k] > out[best] {
			best = k
		}
	}
	return best
}

func (n *Network) newActivations() [][]float32 {
	activations := make([][]float32, len(n.sizes))
	for l, size := range n.sizes {
		activations[l] = make([]float32, size)
	}
	return activations
}

func (n *Network) forward(activations [][]float32) {
	for l, layer := range n.weights {
		in, out := activations[l], activations[l+1]
		for j, w := range layer {
			sum := w[len(in)]
			for i, x := range in {
				sum += w[i] * x
			}
			out[j] = sigmoid(sum)
		}
	}
}

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// Trainer fits a Network with the learning rate, momentum, epochs, hidden layers and
// seed taken from cv.Params.
type Trainer struct{}

func (Trainer) Train(ctx context.Context, train *dataset.Dataset, params cv.Params) (cv.Model, error) {
	n, err := Train(ctx, train, params)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Train fits a network on train. An empty HiddenLayers gives one hidden layer of
// (inputs + classes) / 2 units.
func Train(ctx context.Context, train *dataset.Dataset, params cv.Params) (*Network, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	classAttr, err := train.ClassAttribute()
	if err != nil {
		return nil, errors.Trace(err)
	}
	var labeled []int
	for i := 0; i < train.NumInstances(); i++ {
		if _, ok := train.ClassValue(i); ok {
			labeled = append(labeled, i)
		}
	}
	if len(labeled) == 0 {
		return nil, errors.Annotatef(ErrEmptyTrainingSet, "relation %q", train.Relation())
	}

	enc := newEncoder(train)
	numClasses := classAttr.NumValues()
	sizes := []int{enc.numInputs}
	if len(params.HiddenLayers) == 0 {
		sizes = append(sizes, max(1, (enc.numInputs+numClasses)/2))
	} else {
		sizes = append(sizes, params.HiddenLayers...)
	}
	sizes = append(sizes, numClasses)

	rng := newRandomGenerator(params.Seed)
	n := &Network{encoder: enc, sizes: sizes, weights: make([][][]float32, len(sizes)-1)}
	deltas := make([][][]float32, len(sizes)-1)
	for l := range n.weights {
		n.weights[l] = rng.UniformMatrix(sizes[l+1], sizes[l]+1, -initScale, initScale)
		deltas[l] = zeroMatrix(sizes[l+1], sizes[l]+1)
	}

	var (
		lr          = float32(params.LearningRate)
		momentum    = float32(params.Momentum)
		activations = n.newActivations()
		errs        = n.newActivations()
		target      = make([]float32, numClasses)
	)
	for epoch := 0; epoch < params.Epochs; epoch++ {
		if err = ctx.Err(); err != nil {
			return nil, errors.Trace(err)
		}
		var loss float32
		for _, i := range labeled {
			class, _ := train.ClassValue(i)
			for k := range target {
				target[k] = 0
			}
			target[class] = 1
			enc.encode(train.Instance(i), activations[0])
			n.forward(activations)
			loss += n.backward(activations, errs, deltas, target, lr, momentum)
		}
		if epoch == 0 || epoch == params.Epochs-1 {
			log.Logger().Debug("fit perceptron",
				zap.String("relation", train.Relation()),
				zap.Int("epoch", epoch+1),
				zap.Float32("loss", loss/float32(len(labeled))))
		}
	}
	return n, nil
}

// backward propagates the error of one instance and updates the weights in place. It
// returns the squared error before the update.
func (n *Network) backward(activations, errs [][]float32, deltas [][][]float32, target []float32, lr, momentum float32) float32 {
	var loss float32
	last := len(activations) - 1
	for k, o := range activations[last] {
		diff := target[k] - o
		loss += diff * diff
		errs[last][k] = o * (1 - o) * diff
	}
	for l := last - 1; l > 0; l-- {
		for i, h := range activations[l] {
			var sum float32
			for j, w := range n.weights[l] {
				sum += w[i] * errs[l+1][j]
			}
			errs[l][i] = h * (1 - h) * sum
		}
	}
	for l, layer := range n.weights {
		in := activations[l]
		for j, w := range layer {
			e := errs[l+1][j]
			d := deltas[l][j]
			for i, x := range in {
				d[i] = lr*e*x + momentum*d[i]
				w[i] += d[i]
			}
			d[len(in)] = lr*e + momentum*d[len(in)]
			w[len(in)] += d[len(in)]
		}
	}
	return loss / 2
}

func zeroMatrix(row, col int) [][]float32 {
	ret := make([][]float32, row)
	for i := range ret {
		ret[i] = make([]float32, col)
	}
	return ret
}

// randomGenerator draws the initial weights.
type randomGenerator struct {
	*rand.Rand
}

func newRandomGenerator(seed int64) randomGenerator {
	return randomGenerator{rand.New(rand.NewSource(seed))}
}

// UniformVector makes a vec filled with uniform random floats.
func (rng randomGenerator) UniformVector(size int, low, high float32) []float32 {
	ret := make([]float32, size)
	scale := high - low
	for i := 0; i < len(ret); i++ {
		ret[i] = rng.Float32()*scale + low
	}
	return ret
}

// UniformMatrix makes a matrix filled with uniform random floats.
func (rng randomGenerator) UniformMatrix(row, col int, low, high float32) [][]float32 {
	ret := make([][]float32, row)
	for i := range ret {
		ret[i] = rng.UniformVector(col, low, high)
	}
	return ret
}
