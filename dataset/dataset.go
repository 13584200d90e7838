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

package dataset

import (
	"math"
	"slices"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// MissingToken is the textual form of a missing value.
const MissingToken = "?"

// Missing returns the stored form of a missing value.
func Missing() float64 {
	return math.NaN()
}

func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Instance holds one value per attribute. Nominal values are stored as value indices
// and missing values as NaN.
type Instance []float64

func (inst Instance) Copy() Instance {
	return slices.Clone(inst)
}

// Dataset is a relation: an ordered schema, ordered instances and an optional class
// attribute. A class index of -1 means unset.
type Dataset struct {
	relation   string
	attributes []*Attribute
	instances  []Instance
	classIndex int
}

// New creates an empty dataset with the given schema and no class attribute.
func New(relation string, attributes []*Attribute) *Dataset {
	return &Dataset{
		relation:   relation,
		attributes: slices.Clone(attributes),
		classIndex: -1,
	}
}

func (d *Dataset) Relation() string {
	return d.relation
}

func (d *Dataset) SetRelation(relation string) {
	d.relation = relation
}

func (d *Dataset) NumAttributes() int {
	return len(d.attributes)
}

func (d *Dataset) Attribute(i int) *Attribute {
	return d.attributes[i]
}

func (d *Dataset) Attributes() []*Attribute {
	return slices.Clone(d.attributes)
}

func (d *Dataset) NumInstances() int {
	return len(d.instances)
}

func (d *Dataset) Instance(i int) Instance {
	return d.instances[i]
}

func (d *Dataset) Instances() []Instance {
	return d.instances
}

// Add appends an instance after checking it against the schema. The dataset takes
// ownership of inst.
func (d *Dataset) Add(inst Instance) error {
	if len(inst) != len(d.attributes) {
		return errors.Annotatef(ErrSchemaMismatch, "instance has %d values but relation %q has %d attributes",
			len(inst), d.relation, len(d.attributes))
	}
	for i, v := range inst {
		if !d.attributes[i].valid(v) {
			return errors.Annotatef(ErrMalformed, "value %v out of range for attribute %q", v, d.attributes[i].Name())
		}
	}
	d.instances = append(d.instances, inst)
	return nil
}

func (d *Dataset) ClassIndex() int {
	return d.classIndex
}

// SetClassIndex selects the class attribute. Use -1 to unset it.
func (d *Dataset) SetClassIndex(i int) error {
	if i < -1 || i >= len(d.attributes) {
		return errors.Errorf("class index %d out of range [-1, %d)", i, len(d.attributes))
	}
	d.classIndex = i
	return nil
}

// ClassAttribute returns the class attribute and checks that it is nominal.
func (d *Dataset) ClassAttribute() (*Attribute, error) {
	if d.classIndex < 0 {
		return nil, errors.Trace(ErrMissingClassAttribute)
	}
	attr := d.attributes[d.classIndex]
	if !attr.IsNominal() {
		return nil, errors.Annotatef(ErrNonNominalClass, "attribute %q is %v", attr.Name(), attr.Type())
	}
	return attr, nil
}

// ClassValue returns the class value index of the i-th instance. The second result is
// false when the class value is missing.
func (d *Dataset) ClassValue(i int) (int, bool) {
	v := d.instances[i][d.classIndex]
	if IsMissing(v) {
		return 0, false
	}
	return int(v), true
}

// ClassCounts counts instances per declared class value. Instances with a missing
// class value are not counted.
func (d *Dataset) ClassCounts() ([]int, error) {
	attr, err := d.ClassAttribute()
	if err != nil {
		return nil, err
	}
	counts := make([]int, attr.NumValues())
	for i := range d.instances {
		if c, ok := d.ClassValue(i); ok {
			counts[c]++
		}
	}
	return counts, nil
}

// SameSchema reports whether both datasets have equal attributes and class index.
func (d *Dataset) SameSchema(other *Dataset) bool {
	return d.classIndex == other.classIndex &&
		slices.EqualFunc(d.attributes, other.attributes, (*Attribute).Equal)
}

// EmptyCopy returns a dataset with the same relation, schema and class index but
// without instances.
func (d *Dataset) EmptyCopy() *Dataset {
	return &Dataset{
		relation:   d.relation,
		attributes: slices.Clone(d.attributes),
		classIndex: d.classIndex,
	}
}

// Copy returns a dataset whose instances are independent copies.
func (d *Dataset) Copy() *Dataset {
	c := d.EmptyCopy()
	c.instances = lo.Map(d.instances, func(inst Instance, _ int) Instance {
		return inst.Copy()
	})
	return c
}

// Concat appends copies of the instances of every part, in argument order, to an empty
// copy of the first part. All parts must share the schema of the first one.
func Concat(parts ...*Dataset) (*Dataset, error) {
	if len(parts) == 0 {
		return nil, errors.New("no dataset to concatenate")
	}
	result := parts[0].EmptyCopy()
	result.instances = make([]Instance, 0, lo.SumBy(parts, (*Dataset).NumInstances))
	for i, part := range parts {
		if !result.SameSchema(part) {
			return nil, errors.Annotatef(ErrSchemaMismatch, "part %d of relation %q", i, part.relation)
		}
		for _, inst := range part.instances {
			result.instances = append(result.instances, inst.Copy())
		}
	}
	return result, nil
}

// Select projects the dataset onto the given attribute indices in the given order. The
// class attribute follows its column; if it is not selected the result has no class.
func (d *Dataset) Select(indices []int) (*Dataset, error) {
	attrs := make([]*Attribute, len(indices))
	classIndex := -1
	for i, j := range indices {
		if j < 0 || j >= len(d.attributes) {
			return nil, errors.Errorf("attribute index %d out of range [0, %d)", j, len(d.attributes))
		}
		attrs[i] = d.attributes[j]
		if j == d.classIndex {
			classIndex = i
		}
	}
	result := &Dataset{
		relation:   d.relation,
		attributes: attrs,
		classIndex: classIndex,
		instances:  make([]Instance, len(d.instances)),
	}
	for i, inst := range d.instances {
		result.instances[i] = Project(inst, indices)
	}
	return result, nil
}

// Project returns a new instance holding the values at indices.
func Project(inst Instance, indices []int) Instance {
	projected := make(Instance, len(indices))
	for i, j := range indices {
		projected[i] = inst[j]
	}
	return projected
}

// ZapFields describes the dataset for structured logging.
func (d *Dataset) ZapFields() []zap.Field {
	return []zap.Field{
		zap.String("relation", d.relation),
		zap.Int("n_attributes", len(d.attributes)),
		zap.Int("n_instances", len(d.instances)),
		zap.Int("class_index", d.classIndex),
	}
}
