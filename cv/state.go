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

import "github.com/juju/errors"

// State is the lifecycle state of one fold worker.
type State string

const (
	StateCreated    State = "Created"
	StateTraining   State = "Training"
	StateEvaluating State = "Evaluating"
	StateCompleted  State = "Completed"
	StateFailed     State = "Failed"
)

// IsTerminal reports whether the worker has finished.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Transition validates a state change.
func Transition(from, to State) error {
	if !isAllowedTransition(from, to) {
		return errors.Annotatef(ErrInvalidTransition, "%s -> %s", from, to)
	}
	return nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateCreated:
		return to == StateTraining || to == StateFailed
	case StateTraining:
		return to == StateEvaluating || to == StateFailed
	case StateEvaluating:
		return to == StateCompleted || to == StateFailed
	default:
		return false
	}
}
