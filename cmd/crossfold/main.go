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
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"

	"github.com/crossfold/crossfold/common/log"
	"github.com/crossfold/crossfold/config"
	"github.com/crossfold/crossfold/cv"
	"github.com/crossfold/crossfold/model/mlp"
	"github.com/crossfold/crossfold/model/reduct"
	"github.com/crossfold/crossfold/split"
	"github.com/crossfold/crossfold/storage"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// app carries the state shared by all subcommands once the root command has loaded
// the configuration.
type app struct {
	cfg     *config.Config
	storage *storage.Storage
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "crossfold",
		Short: "Stratified k-fold cross-validation of classifiers.",
		Long: "Stratified k-fold cross-validation of classifiers.\n\n" +
			"Pass - for a fold count, learning rate, momentum or reduct mode to use the configured value.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			debug, _ := flags.GetBool("debug")
			log.SetLogger(flags, debug)
			otel.SetErrorHandler(log.GetErrorHandler())

			configPath, _ := flags.GetString("config")
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return errors.Annotate(err, "failed to load config")
			}
			log.Logger().Debug("load config", zap.String("config", configPath))
			a.cfg = cfg
			a.storage = storage.New(cfg.Storage)
			return nil
		},
	}
	log.AddFlags(root.PersistentFlags())
	root.PersistentFlags().Bool("debug", false, "use debug log mode")
	root.PersistentFlags().StringP("config", "c", "", "configuration file path")

	root.AddCommand(
		newSplitCommand(a),
		newTestOnceCommand(a),
		newMultiCommand(a),
		newHistoryCommand(a),
		newVersionCommand(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// addSplitFlags registers the flags overriding the [split] section.
func addSplitFlags(flags *pflag.FlagSet) {
	flags.Int64("seed", 0, "random seed of fold assignment")
	flags.Bool("shuffle", false, "visit instances in random order")
	flags.String("format", "", "format of written folds (arff or csv)")
	flags.Bool("train-sets", false, "also write the training set of every fold")
}

func (a *app) applySplitFlags(flags *pflag.FlagSet) error {
	if flags.Changed("seed") {
		a.cfg.Split.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("shuffle") {
		a.cfg.Split.Shuffle, _ = flags.GetBool("shuffle")
	}
	if flags.Changed("format") {
		a.cfg.Split.Format, _ = flags.GetString("format")
	}
	if flags.Changed("train-sets") {
		a.cfg.Split.TrainSets, _ = flags.GetBool("train-sets")
	}
	return errors.Trace(a.cfg.Validate())
}

func (a *app) splitter() *split.Splitter {
	return split.NewSplitter(split.WithSeed(a.cfg.Split.Seed), split.WithShuffle(a.cfg.Split.Shuffle))
}

// useConfig is the positional argument selecting the configured value.
const useConfig = "-"

// params builds trainer parameters from the [train] section and the positional
// learning rate and momentum.
func (a *app) params(learningRate, momentum string) (cv.Params, error) {
	params := cv.Params{
		LearningRate: a.cfg.Train.LearningRate,
		Momentum:     a.cfg.Train.Momentum,
		Epochs:       a.cfg.Train.Epochs,
		HiddenLayers: a.cfg.Train.HiddenLayers,
		Seed:         a.cfg.Train.Seed,
	}
	var err error
	if learningRate != useConfig {
		if params.LearningRate, err = strconv.ParseFloat(learningRate, 64); err != nil {
			return params, errors.NotValidf("learning rate %q", learningRate)
		}
	}
	if momentum != useConfig {
		if params.Momentum, err = strconv.ParseFloat(momentum, 64); err != nil {
			return params, errors.NotValidf("momentum %q", momentum)
		}
	}
	return params, params.Validate()
}

func (a *app) mode(s string) (reduct.Mode, error) {
	if s == useConfig {
		s = a.cfg.Reduct.Mode
	}
	return reduct.ParseMode(s)
}

func (a *app) trainer(mode reduct.Mode) cv.Trainer {
	return &reduct.Trainer{Inner: mlp.Trainer{}, Mode: mode}
}

func (a *app) evaluator() cv.Evaluator {
	return &mlp.Evaluator{PositiveClass: a.cfg.Train.PositiveClass, Jobs: a.cfg.Train.Jobs}
}

// folds parses the fold count. The range is checked by the splitter.
func (a *app) folds(s string) (int, error) {
	if s == useConfig {
		return a.cfg.Split.Folds, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NotValidf("fold count %q", s)
	}
	return n, nil
}

var (
	foldFilePattern   = regexp.MustCompile(`^_(fold|combined_excludes)_\d+\.(arff|csv)$`)
	resultFilePattern = regexp.MustCompile(`^_\d+\.txt$`)
)

// removeStale removes the files under prefix whose remaining name matches pattern.
func (a *app) removeStale(ctx context.Context, prefix string, pattern *regexp.Regexp) error {
	paths, err := a.storage.List(ctx, prefix+"_")
	if err != nil {
		return errors.Annotatef(storage.ErrPersist, "list %s: %v", prefix, err)
	}
	for _, path := range paths {
		if !pattern.MatchString(strings.TrimPrefix(path, prefix)) {
			continue
		}
		if err = a.storage.Remove(ctx, path); err != nil {
			return errors.Annotatef(storage.ErrPersist, "remove %s: %v", path, err)
		}
		log.Logger().Info("remove stale file", zap.String("path", path))
	}
	return nil
}

func foldPath(prefix string, fold int, format string) string {
	return fmt.Sprintf("%s_fold_%d.%s", prefix, fold, format)
}

func trainSetPath(prefix string, fold int, format string) string {
	return fmt.Sprintf("%s_combined_excludes_%d.%s", prefix, fold, format)
}
