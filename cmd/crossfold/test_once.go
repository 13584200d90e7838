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
	"github.com/crossfold/crossfold/common/log"
	"github.com/crossfold/crossfold/cv"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTestOnceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test-once <train> <test> <results> <learning-rate> <momentum> <reduct-mode>",
		Short: "Train on one dataset, evaluate on another and write the confusion counts",
		Long: "Train on one dataset, evaluate on another and write TP, FP, TN and FN lines to <results>. " +
			"The reduct mode is 1 (discern all objects with different decisions) or 2 (generalized decisions).",
		Args: cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := a.params(args[3], args[4])
			if err != nil {
				return err
			}
			mode, err := a.mode(args[5])
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			ctx := cmd.Context()
			train, err := a.storage.Load(ctx, args[0])
			if err != nil {
				return err
			}
			test, err := a.storage.Load(ctx, args[1])
			if err != nil {
				return err
			}
			if !train.SameSchema(test) {
				return errors.Errorf("%s and %s have different schemas", args[0], args[1])
			}
			model, err := a.trainer(mode).Train(ctx, train, params)
			if err != nil {
				return &cv.StageError{Kind: cv.ErrTraining, Fold: -1, Err: err}
			}
			stats, err := a.evaluator().Evaluate(ctx, model, test)
			if err != nil {
				return &cv.StageError{Kind: cv.ErrEvaluation, Fold: -1, Err: err}
			}
			text, err := stats.MarshalText()
			if err != nil {
				return errors.Trace(err)
			}
			if err = a.storage.WriteFile(ctx, args[2], text); err != nil {
				return err
			}
			log.Logger().Info("test once", append(stats.ZapFields(), zap.String("results", args[2]))...)
			return renderStats(cmd.OutOrStdout(), stats)
		},
	}
}
