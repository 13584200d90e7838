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
	"fmt"

	"github.com/crossfold/crossfold/storage"
	"github.com/juju/errors"
)

var (
	// ErrTraining marks a fold whose trainer failed.
	ErrTraining = errors.New("training failed")
	// ErrEvaluation marks a fold whose evaluator failed.
	ErrEvaluation = errors.New("evaluation failed")
	// ErrPersist marks a fold whose result could not be written. It is the storage
	// package's persist error so either name matches.
	ErrPersist = storage.ErrPersist
	// ErrNoSuccessfulFolds is returned by Aggregate when every fold failed.
	ErrNoSuccessfulFolds = errors.New("no successful folds")
	// ErrInvalidTransition is raised for a worker state change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// StageError is the failure of one stage of a fold. errors.Is matches both Kind
// (ErrTraining, ErrEvaluation or ErrPersist) and the cause in Err. Fold is -1 outside
// cross-validation.
type StageError struct {
	Kind error
	Fold int
	Err  error
}

func (e *StageError) Error() string {
	if e.Fold < 0 {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("fold %d: %v: %v", e.Fold, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
