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

// FreqDict maps nominal values to dense indices in first appearance order and
// counts how often each value was seen.
type FreqDict struct {
	si  map[string]int
	is  []string
	cnt []int
}

func NewFreqDict() *FreqDict {
	return &FreqDict{si: map[string]int{}}
}

// NewFreqDictOf builds a dictionary holding the given values with zero counts.
func NewFreqDictOf(values ...string) *FreqDict {
	d := NewFreqDict()
	for _, v := range values {
		d.NotCount(v)
	}
	return d
}

func (d *FreqDict) Count() int {
	return len(d.is)
}

// Id returns the index of s, adding it if absent, and counts one occurrence.
func (d *FreqDict) Id(s string) int {
	y := d.NotCount(s)
	d.cnt[y]++
	return y
}

// NotCount returns the index of s, adding it if absent, without counting.
func (d *FreqDict) NotCount(s string) int {
	if y, ok := d.si[s]; ok {
		return y
	}
	y := len(d.is)
	d.si[s] = y
	d.is = append(d.is, s)
	d.cnt = append(d.cnt, 0)
	return y
}

// Lookup returns the index of s without modifying the dictionary.
func (d *FreqDict) Lookup(s string) (int, bool) {
	y, ok := d.si[s]
	return y, ok
}

func (d *FreqDict) String(id int) (string, bool) {
	if id < 0 || id >= len(d.is) {
		return "", false
	}
	return d.is[id], true
}

func (d *FreqDict) Freq(id int) int {
	if id < 0 || id >= len(d.cnt) {
		return 0
	}
	return d.cnt[id]
}

// Values returns a copy of the values in index order.
func (d *FreqDict) Values() []string {
	values := make([]string, len(d.is))
	copy(values, d.is)
	return values
}
