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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	FoldSeconds prometheus.Histogram
	FoldsTotal  *prometheus.CounterVec
}

// NewMetrics registers the fold metrics with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FoldSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crossfold",
			Subsystem: "cv",
			Name:      "fold_seconds",
			Help:      "Time spent training and evaluating one fold.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		FoldsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crossfold",
			Subsystem: "cv",
			Name:      "folds_total",
			Help:      "Number of finished folds by final state.",
		}, []string{"state"}),
	}
}

func (m *Metrics) observe(r Result) {
	if m == nil {
		return
	}
	m.FoldSeconds.Observe(r.Elapsed.Seconds())
	m.FoldsTotal.WithLabelValues(string(r.State)).Inc()
}
