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
	"fmt"
	"math"
	"slices"
	"strconv"
)

type AttributeType int

const (
	Numeric AttributeType = iota
	Nominal
)

func (t AttributeType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Nominal:
		return "nominal"
	default:
		return fmt.Sprintf("AttributeType(%d)", int(t))
	}
}

// Attribute describes one column. Attributes are immutable once created and are
// shared between a dataset and all datasets derived from it.
type Attribute struct {
	name   string
	kind   AttributeType
	values *FreqDict
}

func NewNumericAttribute(name string) *Attribute {
	return &Attribute{name: name, kind: Numeric}
}

// NewNominalAttribute creates a nominal attribute. Duplicate values collapse into one.
func NewNominalAttribute(name string, values ...string) *Attribute {
	return &Attribute{name: name, kind: Nominal, values: NewFreqDictOf(values...)}
}

func (a *Attribute) Name() string {
	return a.name
}

func (a *Attribute) Type() AttributeType {
	return a.kind
}

func (a *Attribute) IsNominal() bool {
	return a.kind == Nominal
}

func (a *Attribute) IsNumeric() bool {
	return a.kind == Numeric
}

// NumValues returns the number of declared nominal values, 0 for numeric attributes.
func (a *Attribute) NumValues() int {
	if a.values == nil {
		return 0
	}
	return a.values.Count()
}

// Value returns the i-th nominal value.
func (a *Attribute) Value(i int) string {
	if a.values == nil {
		return ""
	}
	s, _ := a.values.String(i)
	return s
}

func (a *Attribute) Values() []string {
	if a.values == nil {
		return nil
	}
	return a.values.Values()
}

// IndexOf returns the index of a nominal value.
func (a *Attribute) IndexOf(value string) (int, bool) {
	if a.values == nil {
		return 0, false
	}
	return a.values.Lookup(value)
}

// Equal reports whether two attributes have the same name, type and values.
func (a *Attribute) Equal(b *Attribute) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.name == b.name && a.kind == b.kind && slices.Equal(a.Values(), b.Values())
}

// Format renders a stored value, "?" for missing.
func (a *Attribute) Format(v float64) string {
	if IsMissing(v) {
		return MissingToken
	}
	if a.IsNominal() {
		return a.Value(int(v))
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Parse converts a textual value into its stored form.
func (a *Attribute) Parse(s string) (float64, error) {
	if s == MissingToken {
		return Missing(), nil
	}
	if a.IsNominal() {
		i, ok := a.IndexOf(s)
		if !ok {
			return 0, fmt.Errorf("unknown value %q of attribute %q", s, a.name)
		}
		return float64(i), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q of attribute %q", s, a.name)
	}
	return v, nil
}

func (a *Attribute) valid(v float64) bool {
	if IsMissing(v) || a.IsNumeric() {
		return true
	}
	return v == math.Trunc(v) && v >= 0 && int(v) < a.NumValues()
}
