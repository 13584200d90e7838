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
	"context"
	"fmt"
	"time"

	"github.com/crossfold/crossfold/common/log"
	"github.com/crossfold/crossfold/common/parallel"
	"github.com/crossfold/crossfold/common/progress"
	"github.com/crossfold/crossfold/dataset"
	"github.com/crossfold/crossfold/split"
	"github.com/juju/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const tracerName = "github.com/crossfold/crossfold/cv"

// Orchestrator runs one worker per fold and joins them at a barrier.
type Orchestrator struct {
	trainer   Trainer
	evaluator Evaluator
	writer    ResultWriter
	metrics   *Metrics
	tracer    trace.Tracer
	progress  *progress.Tracer
	callback  func(Result)
	runID     string

	completed atomic.Int32
	failed    atomic.Int32
}

type Option func(*Orchestrator)

// WithResultWriter persists the stats of every completed fold. A fold whose stats
// cannot be written fails with ErrPersist.
func WithResultWriter(writer ResultWriter) Option {
	return func(o *Orchestrator) {
		o.writer = writer
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = metrics
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

// WithProgress records a root span per run and a child span per fold.
func WithProgress(tracer *progress.Tracer) Option {
	return func(o *Orchestrator) {
		o.progress = tracer
	}
}

// WithCallback is called from the worker goroutine once a fold reaches a terminal
// state, so it must be safe for concurrent use.
func WithCallback(callback func(Result)) Option {
	return func(o *Orchestrator) {
		o.callback = callback
	}
}

func WithRunID(runID string) Option {
	return func(o *Orchestrator) {
		o.runID = runID
	}
}

func NewOrchestrator(trainer Trainer, evaluator Evaluator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		trainer:   trainer,
		evaluator: evaluator,
		tracer:    otel.Tracer(tracerName),
		runID:     "cv",
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Completed returns the number of folds completed by the latest run.
func (o *Orchestrator) Completed() int {
	return int(o.completed.Load())
}

// Failed returns the number of folds failed by the latest run.
func (o *Orchestrator) Failed() int {
	return int(o.failed.Load())
}

// RunDataset splits source into numFolds folds and runs them. Split errors are
// returned before any worker starts.
func (o *Orchestrator) RunDataset(ctx context.Context, source *dataset.Dataset, numFolds int, splitter *split.Splitter, params Params) ([]Result, error) {
	folds, err := splitter.Split(source, numFolds)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return o.Run(ctx, folds, params)
}

// Run trains and evaluates every fold concurrently and waits for all of them. The
// i-th result belongs to fold i whatever the completion order. Fold failures are
// reported in the results; the error only covers invalid input.
func (o *Orchestrator) Run(ctx context.Context, folds []*dataset.Dataset, params Params) ([]Result, error) {
	tasks, err := BuildTasks(folds, params)
	if err != nil {
		return nil, errors.Trace(err)
	}
	o.completed.Store(0)
	o.failed.Store(0)

	var root *progress.Span
	if o.progress != nil {
		ctx, root = o.progress.Start(ctx, o.runID, len(tasks))
	}
	spans := make([]*progress.Span, len(tasks))
	for i := range tasks {
		spans[i] = progress.Pending(ctx, fmt.Sprintf("fold-%04d", i), 1)
	}
	log.RunLogger(o.runID).Info("start cross-validation", append(params.ZapFields(), zap.Int("n_folds", len(tasks)))...)

	results := make([]Result, len(tasks))
	errs := parallel.Spawn(len(tasks), func(i int) error {
		results[i] = o.runTask(ctx, tasks[i], spans[i])
		if root != nil {
			root.Add(1)
		}
		return nil
	})
	for i, err := range errs {
		if err != nil {
			results[i] = Result{Fold: i, State: StateFailed, Err: err}
		}
	}
	if root != nil {
		root.End()
	}
	log.RunLogger(o.runID).Info("complete cross-validation", zap.Int("completed", o.Completed()), zap.Int("failed", o.Failed()))
	return results, nil
}

func (o *Orchestrator) runTask(ctx context.Context, task Task, span *progress.Span) (result Result) {
	start := time.Now()
	result = Result{Fold: task.Fold, State: StateCreated}
	ctx, traceSpan := o.tracer.Start(ctx, "fold", trace.WithAttributes(
		attribute.String("run_id", o.runID),
		attribute.Int("fold", task.Fold),
		attribute.Int("train_size", task.Train.NumInstances()),
		attribute.Int("test_size", task.Test.NumInstances()),
	))
	span.Run()
	defer func() {
		if r := recover(); r != nil {
			result.State = StateFailed
			result.Err = errors.Annotatef(parallel.ErrPanic, "fold %d: %v", task.Fold, r)
		}
		result.Elapsed = time.Since(start)
		o.finish(result, span, traceSpan)
	}()

	o.advance(&result, StateTraining)
	model, err := o.trainer.Train(ctx, task.Train, task.Params)
	if err == nil && model == nil {
		err = errors.New("trainer returned no model")
	}
	if err != nil {
		return o.fail(result, &StageError{Kind: ErrTraining, Fold: task.Fold, Err: err})
	}

	o.advance(&result, StateEvaluating)
	stats, err := o.evaluator.Evaluate(ctx, model, task.Test)
	if err != nil {
		return o.fail(result, &StageError{Kind: ErrEvaluation, Fold: task.Fold, Err: err})
	}
	result.Stats = stats

	if o.writer != nil {
		path, err := o.writer.Write(ctx, task.Fold, stats)
		if err != nil {
			return o.fail(result, &StageError{Kind: ErrPersist, Fold: task.Fold, Err: err})
		}
		result.Path = path
	}
	o.advance(&result, StateCompleted)
	return result
}

// advance moves the worker to the next state. An illegal transition is a bug and
// panics; the panic fails the fold.
func (o *Orchestrator) advance(result *Result, to State) {
	if err := Transition(result.State, to); err != nil {
		panic(err)
	}
	result.State = to
}

func (o *Orchestrator) fail(result Result, err error) Result {
	o.advance(&result, StateFailed)
	result.Err = err
	return result
}

func (o *Orchestrator) finish(result Result, span *progress.Span, traceSpan trace.Span) {
	defer traceSpan.End()
	traceSpan.SetAttributes(attribute.String("state", string(result.State)))
	logger := log.RunLogger(o.runID)
	if result.State == StateCompleted {
		o.completed.Inc()
		span.End()
		traceSpan.SetStatus(codes.Ok, "")
		logger.Info("fold completed", result.ZapFields()...)
	} else {
		o.failed.Inc()
		span.Fail(result.Err)
		traceSpan.RecordError(result.Err)
		traceSpan.SetStatus(codes.Error, result.Err.Error())
		logger.Error("fold failed", result.ZapFields()...)
	}
	o.metrics.observe(result)
	if o.callback != nil {
		o.callback(result)
	}
}
