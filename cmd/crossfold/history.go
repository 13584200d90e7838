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
	"fmt"
	"strconv"
	"time"

	"github.com/crossfold/crossfold/storage/history"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newHistoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded cross-validation runs or the folds of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if a.cfg.History.Path == "" {
				return errors.New("history is disabled, set path in the [history] section")
			}
			cmd.SilenceUsage = true

			ctx := cmd.Context()
			db, err := history.Open(a.cfg.History.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			if err = db.Init(ctx); err != nil {
				return errors.Trace(err)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			if len(args) == 0 {
				runs, err := db.ListRuns(ctx, limit)
				if err != nil {
					return errors.Trace(err)
				}
				table.Header("Run", "Dataset", "Folds", "Succeeded", "Failed", "Start", "Duration")
				for _, run := range runs {
					if err = table.Append([]string{
						run.ID,
						run.Dataset,
						strconv.Itoa(run.NumFolds),
						strconv.Itoa(run.Succeeded),
						strconv.Itoa(run.Failed),
						run.StartTime.Local().Format(time.DateTime),
						run.EndTime.Sub(run.StartTime).Round(time.Millisecond).String(),
					}); err != nil {
						return errors.Trace(err)
					}
				}
				return errors.Trace(table.Render())
			}

			run, err := db.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			folds, err := db.ListFolds(ctx, run.ID)
			if err != nil {
				return errors.Trace(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s on %s with %s\n", run.ID, run.Dataset, run.Params)
			table.Header("Fold", "State", "TP", "FP", "TN", "FN", "Elapsed", "Error")
			for _, fold := range folds {
				if err = table.Append([]string{
					strconv.Itoa(fold.Fold),
					fold.State,
					strconv.Itoa(fold.TruePositive),
					strconv.Itoa(fold.FalsePositive),
					strconv.Itoa(fold.TrueNegative),
					strconv.Itoa(fold.FalseNegative),
					fold.Elapsed.String(),
					fold.Error,
				}); err != nil {
					return errors.Trace(err)
				}
			}
			return errors.Trace(table.Render())
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of runs to list")
	return cmd
}
