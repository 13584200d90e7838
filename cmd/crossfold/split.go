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
	"fmt"

	"github.com/crossfold/crossfold/common/log"
	"github.com/crossfold/crossfold/cv"
	"github.com/crossfold/crossfold/dataset"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSplitCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split <dataset> <folds> <output-prefix>",
		Short: "Split a dataset into stratified folds",
		Long: "Split a dataset into stratified folds written to <output-prefix>_fold_<i>.<format>. " +
			"With --train-sets the training set of fold i is written to <output-prefix>_combined_excludes_<i>.<format>.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			numFolds, err := a.folds(args[1])
			if err != nil {
				return err
			}
			if err = a.applySplitFlags(cmd.Flags()); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			source, err := a.storage.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			folds, err := a.splitter().Split(source, numFolds)
			if err != nil {
				return err
			}
			paths, err := a.saveFolds(cmd.Context(), folds, args[2])
			if err != nil {
				return err
			}
			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	addSplitFlags(cmd.Flags())
	return cmd
}

// saveFolds writes every fold and, if enabled, every training set. Folds and training
// sets left under the same prefix by an earlier split are removed first. It returns
// the written paths.
func (a *app) saveFolds(ctx context.Context, folds []*dataset.Dataset, prefix string) ([]string, error) {
	if err := a.removeStale(ctx, prefix, foldFilePattern); err != nil {
		return nil, err
	}
	var paths []string
	format := a.cfg.Split.Format
	for i, fold := range folds {
		path := foldPath(prefix, i, format)
		if err := a.storage.Save(ctx, fold, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
		log.Logger().Info("save fold", append(fold.ZapFields(), zap.Int("fold", i), zap.String("path", path))...)
	}
	if !a.cfg.Split.TrainSets {
		return paths, nil
	}
	for i := range folds {
		train, err := cv.TrainingSet(folds, i)
		if err != nil {
			return nil, errors.Trace(err)
		}
		path := trainSetPath(prefix, i, format)
		if err = a.storage.Save(ctx, train, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
