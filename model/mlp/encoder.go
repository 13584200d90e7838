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
	"github.com/crossfold/crossfold/dataset"
)

// encoder maps instances to network inputs. Numeric attributes are scaled to [-1, 1]
// using the range seen in the training set; nominal attributes are one-hot encoded.
// Missing values encode as zeros.
type encoder struct {
	numAttributes int
	columns       []column
	numInputs     int
}

type column struct {
	index   int
	offset  int
	nominal bool
	width   int
	min     float64
	max     float64
}

func newEncoder(train *dataset.Dataset) *encoder {
	e := &encoder{numAttributes: train.NumAttributes()}
	for j := 0; j < train.NumAttributes(); j++ {
		if j == train.ClassIndex() {
			continue
		}
		attr := train.Attribute(j)
		c := column{index: j, offset: e.numInputs}
		if attr.IsNominal() {
			c.nominal = true
			c.width = attr.NumValues()
		} else {
			c.width = 1
			c.min, c.max = valueRange(train, j)
		}
		e.columns = append(e.columns, c)
		e.numInputs += c.width
	}
	return e
}

func valueRange(ds *dataset.Dataset, j int) (lo, hi float64) {
	first := true
	for _, inst := range ds.Instances() {
		v := inst[j]
		if dataset.IsMissing(v) {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return
}

// encode writes the inputs of inst into x, which must have numInputs elements.
func (e *encoder) encode(inst dataset.Instance, x []float32) {
	clear(x)
	for _, c := range e.columns {
		v := inst[c.index]
		if dataset.IsMissing(v) {
			continue
		}
		if c.nominal {
			if k := int(v); k >= 0 && k < c.width {
				x[c.offset+k] = 1
			}
			continue
		}
		if c.max > c.min {
			scaled := 2*(v-c.min)/(c.max-c.min) - 1
			// unseen test values may fall outside the training range
			x[c.offset] = float32(max(-1, min(1, scaled)))
		}
	}
}
