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

// Package reduct selects a minimal subset of conditional attributes that preserves
// the discernibility of a discretized decision table.
package reduct

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/crossfold/crossfold/common/log"
	"github.com/crossfold/crossfold/dataset"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrNotDiscretized is returned when a conditional attribute is numeric.
var ErrNotDiscretized = errors.New("conditional attributes are not discretized")

type Mode int

const (
	// ModeNone skips attribute reduction.
	ModeNone Mode = iota
	// ModeAll discerns every pair of objects with different decisions.
	ModeAll
	// ModeDec discerns pairs of objects with different generalized decisions.
	ModeDec
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeAll:
		return "all"
	case ModeDec:
		return "dec"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "none", "all", "dec" and the numeric forms "1" (all) and "2" (dec).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "0":
		return ModeNone, nil
	case "all", "1":
		return ModeAll, nil
	case "dec", "2":
		return ModeDec, nil
	default:
		return ModeNone, errors.NotValidf("reduct mode %q", s)
	}
}

// Mask marks the selected conditional attributes of a dataset.
type Mask struct {
	set           *bitset.BitSet
	numAttributes int
}

func NewMask(numAttributes int, indices ...int) Mask {
	set := bitset.New(uint(numAttributes))
	for _, j := range indices {
		set.Set(uint(j))
	}
	return Mask{set: set, numAttributes: numAttributes}
}

func (m Mask) Contains(j int) bool {
	return m.set != nil && m.set.Test(uint(j))
}

// Len returns the number of selected attributes.
func (m Mask) Len() int {
	if m.set == nil {
		return 0
	}
	return int(m.set.Count())
}

// Indices returns the selected attribute indices in ascending order.
func (m Mask) Indices() []int {
	var indices []int
	if m.set == nil {
		return indices
	}
	for j, ok := m.set.NextSet(0); ok; j, ok = m.set.NextSet(j + 1) {
		indices = append(indices, int(j))
	}
	return indices
}

func (m Mask) String() string {
	return "{" + strings.Join(lo.Map(m.Indices(), func(j int, _ int) string { return strconv.Itoa(j) }), ",") + "}"
}

// Compute finds a reduct of a discretized dataset: a set of conditional attributes
// that discerns every pair the mode requires, with no redundant attribute. Pairs are
// covered greedily by the attribute discerning most uncovered pairs.
func Compute(ds *dataset.Dataset, mode Mode) (Mask, error) {
	if _, err := ds.ClassAttribute(); err != nil {
		return Mask{}, errors.Trace(err)
	}
	if mode != ModeAll && mode != ModeDec {
		return Mask{}, errors.NotValidf("reduct mode %v", mode)
	}
	var conditions []int
	for j, attr := range ds.Attributes() {
		if j == ds.ClassIndex() {
			continue
		}
		if !attr.IsNominal() {
			return Mask{}, errors.Annotatef(ErrNotDiscretized, "attribute %q is %v", attr.Name(), attr.Type())
		}
		conditions = append(conditions, j)
	}

	entries := discernibility(ds, conditions, mode)
	mask := NewMask(ds.NumAttributes())
	uncovered := entries
	for len(uncovered) > 0 {
		best, bestCount := -1, 0
		for _, j := range conditions {
			count := lo.CountBy(uncovered, func(e *bitset.BitSet) bool { return e.Test(uint(j)) })
			if count > bestCount {
				best, bestCount = j, count
			}
		}
		mask.set.Set(uint(best))
		uncovered = lo.Filter(uncovered, func(e *bitset.BitSet, _ int) bool { return !e.Test(uint(best)) })
	}
	// drop attributes whose pairs are covered by the others
	for _, j := range slices.Backward(mask.Indices()) {
		mask.set.Clear(uint(j))
		if !covers(mask.set, entries) {
			mask.set.Set(uint(j))
		}
	}
	log.Logger().Debug("compute reduct",
		zap.String("relation", ds.Relation()),
		zap.Stringer("mode", mode),
		zap.Int("n_entries", len(entries)),
		zap.Stringer("reduct", mask))
	return mask, nil
}

func covers(set *bitset.BitSet, entries []*bitset.BitSet) bool {
	return lo.EveryBy(entries, func(e *bitset.BitSet) bool { return set.IntersectionCardinality(e) > 0 })
}

// discernibility returns the distinct non-empty entries of the discernibility matrix.
// Missing values compare as an ordinary value.
func discernibility(ds *dataset.Dataset, conditions []int, mode Mode) []*bitset.BitSet {
	var objects []int
	for i := 0; i < ds.NumInstances(); i++ {
		if _, ok := ds.ClassValue(i); ok {
			objects = append(objects, i)
		}
	}
	discern := func(a, b int) bool {
		ca, _ := ds.ClassValue(a)
		cb, _ := ds.ClassValue(b)
		return ca != cb
	}
	if mode == ModeDec {
		decisions := generalizedDecisions(ds, conditions, objects)
		discern = func(a, b int) bool {
			return !decisions[a].Equal(decisions[b])
		}
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	var entries []*bitset.BitSet
	for x, a := range objects {
		for _, b := range objects[x+1:] {
			if !discern(a, b) {
				continue
			}
			entry := bitset.New(uint(ds.NumAttributes()))
			for _, j := range conditions {
				if !sameValue(ds.Instance(a)[j], ds.Instance(b)[j]) {
					entry.Set(uint(j))
				}
			}
			if entry.None() {
				// inconsistent pair
				continue
			}
			if seen.Add(entry.String()) {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

// generalizedDecisions maps every object to the set of decisions of the objects
// sharing its conditional values.
func generalizedDecisions(ds *dataset.Dataset, conditions []int, objects []int) map[int]mapset.Set[int] {
	classes := make(map[string]mapset.Set[int])
	keys := make(map[int]string, len(objects))
	for _, i := range objects {
		key := conditionKey(ds.Instance(i), conditions)
		keys[i] = key
		if _, ok := classes[key]; !ok {
			classes[key] = mapset.NewThreadUnsafeSet[int]()
		}
		c, _ := ds.ClassValue(i)
		classes[key].Add(c)
	}
	decisions := make(map[int]mapset.Set[int], len(objects))
	for _, i := range objects {
		decisions[i] = classes[keys[i]]
	}
	return decisions
}

func conditionKey(inst dataset.Instance, conditions []int) string {
	var builder strings.Builder
	for _, j := range conditions {
		if dataset.IsMissing(inst[j]) {
			builder.WriteString(dataset.MissingToken)
		} else {
			builder.WriteString(strconv.Itoa(int(inst[j])))
		}
		builder.WriteByte(',')
	}
	return builder.String()
}

func sameValue(a, b float64) bool {
	if dataset.IsMissing(a) || dataset.IsMissing(b) {
		return dataset.IsMissing(a) && dataset.IsMissing(b)
	}
	return a == b
}

// Apply keeps the attributes selected by mask plus the class attribute.
func Apply(mask Mask, ds *dataset.Dataset) (*dataset.Dataset, error) {
	if mask.numAttributes != ds.NumAttributes() {
		return nil, errors.Annotatef(dataset.ErrSchemaMismatch, "mask of %d attributes for relation %q with %d",
			mask.numAttributes, ds.Relation(), ds.NumAttributes())
	}
	return ds.Select(selection(mask, ds.ClassIndex()))
}

// selection returns the mask indices plus the class index in ascending order.
func selection(mask Mask, classIndex int) []int {
	indices := mask.Indices()
	if classIndex >= 0 && !mask.Contains(classIndex) {
		indices = append(indices, classIndex)
		slices.Sort(indices)
	}
	return indices
}
