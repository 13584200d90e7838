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

package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/crossfold/crossfold/common/log"
	"github.com/crossfold/crossfold/common/progress"
	"github.com/crossfold/crossfold/cv"
	"github.com/crossfold/crossfold/storage/history"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMultiCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multi <dataset> <output-prefix> <results-prefix> <folds> <learning-rate> <momentum> <reduct-mode>",
		Short: "Run stratified k-fold cross-validation with one worker per fold",
		Long: "Split the dataset, write the folds to <output-prefix>_fold_<i>.<format>, train and evaluate " +
			"every fold concurrently, write <results-prefix>_<i>.txt per fold and print the overall statistics.",
		Args: cobra.ExactArgs(7),
		RunE: func(cmd *cobra.Command, args []string) error {
			numFolds, err := a.folds(args[3])
			if err != nil {
				return err
			}
			params, err := a.params(args[4], args[5])
			if err != nil {
				return err
			}
			mode, err := a.mode(args[6])
			if err != nil {
				return err
			}
			if err = a.applySplitFlags(cmd.Flags()); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			ctx := cmd.Context()
			source, err := a.storage.Load(ctx, args[0])
			if err != nil {
				return err
			}
			folds, err := a.splitter().Split(source, numFolds)
			if err != nil {
				return err
			}
			if _, err = a.saveFolds(ctx, folds, args[1]); err != nil {
				return err
			}
			if err = a.removeStale(ctx, args[2], resultFilePattern); err != nil {
				return err
			}

			runID := uuid.NewString()
			bar := progressbar.NewOptions(numFolds,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("cross-validation"),
				progressbar.OptionShowCount())
			registry := prometheus.NewRegistry()
			orchestrator := cv.NewOrchestrator(a.trainer(mode), a.evaluator(),
				cv.WithResultWriter(&cv.FileResultWriter{Storage: a.storage, Prefix: args[2]}),
				cv.WithMetrics(cv.NewMetrics(registry)),
				cv.WithProgress(progress.NewTracer("multi")),
				cv.WithRunID(runID),
				cv.WithCallback(func(cv.Result) { _ = bar.Add(1) }),
			)
			start := time.Now()
			results, err := orchestrator.Run(ctx, folds, params)
			if err != nil {
				return err
			}
			_ = bar.Finish()
			end := time.Now()

			if err = renderResults(cmd.OutOrStdout(), results); err != nil {
				return errors.Trace(err)
			}
			overall, aggregateErr := cv.Aggregate(results)
			if a.cfg.History.Path != "" {
				run := &history.Run{
					ID:        runID,
					Dataset:   args[0],
					NumFolds:  numFolds,
					StartTime: start,
					EndTime:   end,
					Succeeded: overall.Succeeded,
					Failed:    overall.Failed,
				}
				if err = a.recordHistory(ctx, run, params, results); err != nil {
					log.RunLogger(runID).Error("failed to record history", zap.Error(err))
				}
			}
			if a.cfg.Metrics.Enable {
				if err = prometheus.WriteToTextfile(a.cfg.Metrics.Path, registry); err != nil {
					log.RunLogger(runID).Error("failed to write metrics", zap.String("path", a.cfg.Metrics.Path), zap.Error(err))
				}
			}
			if aggregateErr != nil {
				return aggregateErr
			}
			log.RunLogger(runID).Info("cross-validation finished", overall.ZapFields()...)
			return renderOverall(cmd.OutOrStdout(), runID, overall)
		},
	}
	addSplitFlags(cmd.Flags())
	return cmd
}

func (a *app) recordHistory(ctx context.Context, run *history.Run, params cv.Params, results []cv.Result) error {
	db, err := history.Open(a.cfg.History.Path)
	if err != nil {
		return errors.Trace(err)
	}
	defer db.Close()
	if err = db.Init(ctx); err != nil {
		return errors.Trace(err)
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return errors.Trace(err)
	}
	run.Params = string(encoded)
	folds := make([]*history.Fold, len(results))
	for i, r := range results {
		folds[i] = &history.Fold{
			Fold:          r.Fold,
			State:         string(r.State),
			TruePositive:  r.Stats.TruePositive,
			FalsePositive: r.Stats.FalsePositive,
			TrueNegative:  r.Stats.TrueNegative,
			FalseNegative: r.Stats.FalseNegative,
			Elapsed:       r.Elapsed,
		}
		if r.Err != nil {
			folds[i].Error = r.Err.Error()
		}
	}
	return errors.Trace(db.SaveRun(ctx, run, folds))
}
