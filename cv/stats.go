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
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"go.uber.org/zap"
)

// ConfusionStats counts predictions against one designated positive class.
type ConfusionStats struct {
	TruePositive  int
	FalsePositive int
	TrueNegative  int
	FalseNegative int
}

func (s ConfusionStats) Add(other ConfusionStats) ConfusionStats {
	return ConfusionStats{
		TruePositive:  s.TruePositive + other.TruePositive,
		FalsePositive: s.FalsePositive + other.FalsePositive,
		TrueNegative:  s.TrueNegative + other.TrueNegative,
		FalseNegative: s.FalseNegative + other.FalseNegative,
	}
}

func (s ConfusionStats) Total() int {
	return s.TruePositive + s.FalsePositive + s.TrueNegative + s.FalseNegative
}

// Accuracy is (TP+TN)/total, 0 when there are no predictions.
func (s ConfusionStats) Accuracy() float64 {
	return ratio(s.TruePositive+s.TrueNegative, s.Total())
}

// Predictivity is the precision TP/(TP+FP), 0 when nothing was predicted positive.
func (s ConfusionStats) Predictivity() float64 {
	return ratio(s.TruePositive, s.TruePositive+s.FalsePositive)
}

// Selectivity is the specificity TN/(TN+FP), 0 when there are no actual negatives.
func (s ConfusionStats) Selectivity() float64 {
	return ratio(s.TrueNegative, s.TrueNegative+s.FalsePositive)
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// MarshalText encodes the counts as "TP: n", "FP: n", "TN: n" and "FN: n" lines.
func (s ConfusionStats) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "TP: %d\nFP: %d\nTN: %d\nFN: %d\n",
		s.TruePositive, s.FalsePositive, s.TrueNegative, s.FalseNegative)
	return buf.Bytes(), nil
}

// UnmarshalText decodes the format written by MarshalText. Every key is required and
// unknown lines are rejected.
func (s *ConfusionStats) UnmarshalText(text []byte) error {
	fields := map[string]*int{
		"TP": &s.TruePositive,
		"FP": &s.FalsePositive,
		"TN": &s.TrueNegative,
		"FN": &s.FalseNegative,
	}
	seen := make(map[string]bool, len(fields))
	sc := bufio.NewScanner(bytes.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return errors.Errorf("invalid line %q", line)
		}
		ptr, ok := fields[strings.TrimSpace(key)]
		if !ok {
			return errors.Errorf("unknown key %q", key)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return errors.Errorf("invalid count %q", value)
		}
		*ptr = n
		seen[strings.TrimSpace(key)] = true
	}
	if err := sc.Err(); err != nil {
		return errors.Trace(err)
	}
	if len(seen) != len(fields) {
		return errors.Errorf("expected %d counts, found %d", len(fields), len(seen))
	}
	return nil
}

func (s ConfusionStats) ZapFields() []zap.Field {
	return []zap.Field{
		zap.Int("tp", s.TruePositive),
		zap.Int("fp", s.FalsePositive),
		zap.Int("tn", s.TrueNegative),
		zap.Int("fn", s.FalseNegative),
	}
}
