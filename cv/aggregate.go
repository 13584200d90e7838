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
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// OverallStats are the confusion counts summed over the completed folds.
type OverallStats struct {
	Stats        ConfusionStats
	Accuracy     float64
	Predictivity float64
	Selectivity  float64
	Succeeded    int
	Failed       int
}

// Aggregate sums the stats of completed folds. Failed folds are counted but excluded
// from the sums. It returns ErrNoSuccessfulFolds only when no fold completed.
func Aggregate(results []Result) (OverallStats, error) {
	var overall OverallStats
	for _, r := range results {
		if r.State == StateCompleted {
			overall.Stats = overall.Stats.Add(r.Stats)
			overall.Succeeded++
		} else {
			overall.Failed++
		}
	}
	if overall.Succeeded == 0 {
		return overall, errors.Annotatef(ErrNoSuccessfulFolds, "%d folds failed", overall.Failed)
	}
	overall.Accuracy = overall.Stats.Accuracy()
	overall.Predictivity = overall.Stats.Predictivity()
	overall.Selectivity = overall.Stats.Selectivity()
	return overall, nil
}

func (o OverallStats) ZapFields() []zap.Field {
	return append(o.Stats.ZapFields(),
		zap.Float64("accuracy", o.Accuracy),
		zap.Float64("predictivity", o.Predictivity),
		zap.Float64("selectivity", o.Selectivity),
		zap.Int("succeeded", o.Succeeded),
		zap.Int("failed", o.Failed),
	)
}
