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
	"io"
	"strconv"
	"time"

	"github.com/crossfold/crossfold/cmd/version"
	"github.com/crossfold/crossfold/cv"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// renderResults prints one row per fold.
func renderResults(w io.Writer, results []cv.Result) error {
	table := tablewriter.NewWriter(w)
	table.Header("Fold", "State", "TP", "FP", "TN", "FN", "Accuracy", "Elapsed", "Error")
	for _, r := range results {
		row := []string{strconv.Itoa(r.Fold), string(r.State), "", "", "", "", "", r.Elapsed.Round(time.Millisecond).String(), ""}
		if r.State == cv.StateCompleted {
			row[2] = strconv.Itoa(r.Stats.TruePositive)
			row[3] = strconv.Itoa(r.Stats.FalsePositive)
			row[4] = strconv.Itoa(r.Stats.TrueNegative)
			row[5] = strconv.Itoa(r.Stats.FalseNegative)
			row[6] = formatRatio(r.Stats.Accuracy())
		}
		if r.Err != nil {
			row[8] = r.Err.Error()
		}
		if err := table.Append(row); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

func renderStats(w io.Writer, stats cv.ConfusionStats) error {
	text, err := stats.MarshalText()
	if err != nil {
		return errors.Trace(err)
	}
	_, err = fmt.Fprintf(w, "%sAccuracy: %s\nPredictivity: %s\nSelectivity: %s\n", text,
		formatRatio(stats.Accuracy()), formatRatio(stats.Predictivity()), formatRatio(stats.Selectivity()))
	return errors.Trace(err)
}

func renderOverall(w io.Writer, runID string, overall cv.OverallStats) error {
	if _, err := fmt.Fprintf(w, "Run %s: %d folds succeeded, %d failed\n", runID, overall.Succeeded, overall.Failed); err != nil {
		return errors.Trace(err)
	}
	return renderStats(w, overall.Stats)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
			return errors.Trace(err)
		},
	}
}
