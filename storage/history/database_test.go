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

package history

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/suite"
)

type baseTestSuite struct {
	suite.Suite
	Database
}

func (suite *baseTestSuite) TestRuns() {
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	// Save runs
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		err := suite.Database.SaveRun(ctx, &Run{
			ID:        id,
			Dataset:   "weather.arff",
			NumFolds:  10,
			Params:    `{"epochs":500}`,
			StartTime: start.Add(time.Duration(i) * time.Hour),
			EndTime:   start.Add(time.Duration(i)*time.Hour + time.Minute),
			Succeeded: 9,
			Failed:    1,
		}, nil)
		suite.NoError(err)
	}
	// List runs
	runs, err := suite.Database.ListRuns(ctx, 2)
	suite.NoError(err)
	if suite.Len(runs, 2) {
		suite.Equal("run-3", runs[0].ID)
		suite.Equal("run-2", runs[1].ID)
	}
	// Get run
	run, err := suite.Database.GetRun(ctx, "run-1")
	suite.NoError(err)
	suite.Equal("weather.arff", run.Dataset)
	suite.Equal(10, run.NumFolds)
	suite.Equal(`{"epochs":500}`, run.Params)
	suite.True(start.Equal(run.StartTime))
	suite.True(start.Add(time.Minute).Equal(run.EndTime))
	suite.Equal(9, run.Succeeded)
	suite.Equal(1, run.Failed)
	// Get missing run
	_, err = suite.Database.GetRun(ctx, "run-0")
	suite.True(errors.Is(err, errors.NotFound))
}

func (suite *baseTestSuite) TestFolds() {
	ctx := context.Background()
	run := &Run{ID: "run-folds", Dataset: "iris.csv", NumFolds: 3, StartTime: time.Now(), EndTime: time.Now()}
	folds := []*Fold{
		{Fold: 2, State: "Failed", Error: "training failed", Elapsed: 30 * time.Millisecond},
		{Fold: 0, State: "Completed", TruePositive: 4, FalsePositive: 1, TrueNegative: 3, FalseNegative: 2, Elapsed: time.Second},
		{Fold: 1, State: "Completed", TruePositive: 5, TrueNegative: 5, Elapsed: 2 * time.Second},
	}
	suite.NoError(suite.Database.SaveRun(ctx, run, folds))
	saved, err := suite.Database.ListFolds(ctx, "run-folds")
	suite.NoError(err)
	if suite.Len(saved, 3) {
		suite.Equal(0, saved[0].Fold)
		suite.Equal("run-folds", saved[0].RunID)
		suite.Equal("Completed", saved[0].State)
		suite.Equal(4, saved[0].TruePositive)
		suite.Equal(1, saved[0].FalsePositive)
		suite.Equal(3, saved[0].TrueNegative)
		suite.Equal(2, saved[0].FalseNegative)
		suite.Equal(time.Second, saved[0].Elapsed)
		suite.Equal(1, saved[1].Fold)
		suite.Equal(2, saved[2].Fold)
		suite.Equal("training failed", saved[2].Error)
	}

	// Saving again replaces folds
	suite.NoError(suite.Database.SaveRun(ctx, run, folds[:1]))
	saved, err = suite.Database.ListFolds(ctx, "run-folds")
	suite.NoError(err)
	if suite.Len(saved, 1) {
		suite.Equal(2, saved[0].Fold)
	}

	// Unknown run
	saved, err = suite.Database.ListFolds(ctx, "unknown")
	suite.NoError(err)
	suite.Empty(saved)
}
