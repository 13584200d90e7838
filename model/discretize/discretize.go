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

// Package discretize learns supervised cut points for numeric attributes with the
// entropy based minimum description length criterion of Fayyad and Irani and turns
// numeric attributes into nominal ranges.
package discretize

import (
	"math"
	"sort"
	"strconv"

	"github.com/crossfold/crossfold/common/log"
	"github.com/crossfold/crossfold/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"modernc.org/sortutil"
)

// AllLabel names the single range of an attribute without cut points.
const AllLabel = "All"

// Discretizer holds the cut points learned from a training set.
type Discretizer struct {
	source     []*dataset.Attribute
	classIndex int
	// cuts[j] is nil for attributes left unchanged.
	cuts       [][]float64
	attributes []*dataset.Attribute
}

// Learn computes cut points for every numeric attribute of train. The class attribute
// must be nominal.
func Learn(train *dataset.Dataset) (*Discretizer, error) {
	classAttr, err := train.ClassAttribute()
	if err != nil {
		return nil, errors.Trace(err)
	}
	d := &Discretizer{
		source:     train.Attributes(),
		classIndex: train.ClassIndex(),
		cuts:       make([][]float64, train.NumAttributes()),
		attributes: train.Attributes(),
	}
	for j, attr := range d.source {
		if j == d.classIndex || !attr.IsNumeric() {
			continue
		}
		d.cuts[j] = cutPoints(train, j, classAttr.NumValues())
		d.attributes[j] = dataset.NewNominalAttribute(attr.Name(), labels(d.cuts[j])...)
		log.Logger().Debug("discretize attribute",
			zap.String("attribute", attr.Name()),
			zap.Float64s("cuts", d.cuts[j]))
	}
	return d, nil
}

// Cuts returns the cut points of the j-th attribute, nil for attributes that are not
// discretized.
func (d *Discretizer) Cuts(j int) []float64 {
	return d.cuts[j]
}

// Attributes returns the schema of discretized datasets.
func (d *Discretizer) Attributes() []*dataset.Attribute {
	return append([]*dataset.Attribute(nil), d.attributes...)
}

// Apply returns a discretized copy of ds, which must share the training schema.
func (d *Discretizer) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if ds.ClassIndex() != d.classIndex || ds.NumAttributes() != len(d.source) {
		return nil, errors.Annotatef(dataset.ErrSchemaMismatch, "relation %q", ds.Relation())
	}
	for j, attr := range d.source {
		if !attr.Equal(ds.Attribute(j)) {
			return nil, errors.Annotatef(dataset.ErrSchemaMismatch, "attribute %q", ds.Attribute(j).Name())
		}
	}
	result := dataset.New(ds.Relation(), d.attributes)
	for _, inst := range ds.Instances() {
		if err := result.Add(d.Transform(inst)); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if err := result.SetClassIndex(d.classIndex); err != nil {
		return nil, errors.Trace(err)
	}
	return result, nil
}

// Transform discretizes one instance laid out in the training schema.
func (d *Discretizer) Transform(inst dataset.Instance) dataset.Instance {
	out := inst.Copy()
	for j, cuts := range d.cuts {
		if d.source[j].IsNumeric() && j != d.classIndex && !dataset.IsMissing(out[j]) {
			out[j] = float64(bin(cuts, out[j]))
		}
	}
	return out
}

// bin returns the index of the range holding v. Ranges are closed on the right.
func bin(cuts []float64, v float64) int {
	return sort.Search(len(cuts), func(i int) bool { return v <= cuts[i] })
}

func labels(cuts []float64) []string {
	if len(cuts) == 0 {
		return []string{AllLabel}
	}
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	labels := make([]string, 0, len(cuts)+1)
	labels = append(labels, "(-inf-"+format(cuts[0])+"]")
	for i := 1; i < len(cuts); i++ {
		labels = append(labels, "("+format(cuts[i-1])+"-"+format(cuts[i])+"]")
	}
	labels = append(labels, "("+format(cuts[len(cuts)-1])+"-inf)")
	return labels
}

// cutPoints learns the cut points of attribute j.
func cutPoints(ds *dataset.Dataset, j, numClasses int) []float64 {
	var values []float64
	for i, inst := range ds.Instances() {
		if _, ok := ds.ClassValue(i); ok && !dataset.IsMissing(inst[j]) {
			values = append(values, inst[j])
		}
	}
	if len(values) == 0 {
		return nil
	}
	// Dedupe sorts values before collapsing equal neighbours
	distinct := values[:sortutil.Dedupe(sort.Float64Slice(values))]

	// counts[k][c] is the number of instances with the k-th distinct value and class c
	counts := make([][]float64, len(distinct))
	for k := range counts {
		counts[k] = make([]float64, numClasses)
	}
	for i, inst := range ds.Instances() {
		c, ok := ds.ClassValue(i)
		if !ok || dataset.IsMissing(inst[j]) {
			continue
		}
		k := sort.SearchFloat64s(distinct, inst[j])
		counts[k][c]++
	}
	var cuts []float64
	split(distinct, counts, &cuts)
	return cuts
}

// split recursively adds the accepted cut points of the value range to cuts in
// ascending order.
func split(values []float64, counts [][]float64, cuts *[]float64) {
	if len(values) < 2 {
		return
	}
	numClasses := len(counts[0])
	total := make([]float64, numClasses)
	for _, row := range counts {
		for c, n := range row {
			total[c] += n
		}
	}
	n := sum(total)

	left := make([]float64, numClasses)
	right := make([]float64, numClasses)
	best, bestEntropy := -1, math.Inf(1)
	var bestLeft, bestRight []float64
	for k := 1; k < len(values); k++ {
		for c := range left {
			left[c] += counts[k-1][c]
			right[c] = total[c] - left[c]
		}
		nl, nr := sum(left), sum(right)
		e := (nl*entropy(left) + nr*entropy(right)) / n
		if e < bestEntropy {
			best, bestEntropy = k, e
			bestLeft, bestRight = append(bestLeft[:0], left...), append(bestRight[:0], right...)
		}
	}
	if best < 0 || !accept(total, bestLeft, bestRight, bestEntropy) {
		return
	}
	split(values[:best], counts[:best], cuts)
	*cuts = append(*cuts, (values[best-1]+values[best])/2)
	split(values[best:], counts[best:], cuts)
}

// accept applies the minimum description length stopping criterion.
func accept(total, left, right []float64, splitEntropy float64) bool {
	n := sum(total)
	gain := entropy(total) - splitEntropy
	k, k1, k2 := nonZero(total), nonZero(left), nonZero(right)
	delta := math.Log2(math.Pow(3, k)-2) - (k*entropy(total) - k1*entropy(left) - k2*entropy(right))
	return gain > (math.Log2(n-1)+delta)/n
}

// entropy in bits of a class distribution.
func entropy(counts []float64) float64 {
	n := sum(counts)
	if n == 0 {
		return 0
	}
	var e float64
	for _, c := range counts {
		if c > 0 {
			p := c / n
			e -= p * math.Log2(p)
		}
	}
	return e
}

func sum(a []float64) float64 {
	var s float64
	for _, v := range a {
		s += v
	}
	return s
}

func nonZero(a []float64) float64 {
	var k float64
	for _, v := range a {
		if v > 0 {
			k++
		}
	}
	return k
}
