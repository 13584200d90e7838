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
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	allowed := [][2]State{
		{StateCreated, StateTraining},
		{StateCreated, StateFailed},
		{StateTraining, StateEvaluating},
		{StateTraining, StateFailed},
		{StateEvaluating, StateCompleted},
		{StateEvaluating, StateFailed},
	}
	for _, pair := range allowed {
		assert.NoError(t, Transition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	forbidden := [][2]State{
		{StateCreated, StateEvaluating},
		{StateCreated, StateCompleted},
		{StateTraining, StateCompleted},
		{StateEvaluating, StateTraining},
		{StateCompleted, StateFailed},
		{StateFailed, StateTraining},
		{StateCompleted, StateCompleted},
	}
	for _, pair := range forbidden {
		err := Transition(pair[0], pair[1])
		assert.True(t, errors.Is(err, ErrInvalidTransition), "%s -> %s", pair[0], pair[1])
	}

	assert.True(t, StateCompleted.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, StateEvaluating.IsTerminal())
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	params := DefaultParams()
	params.LearningRate = 1.5
	assert.Error(t, params.Validate())

	params = DefaultParams()
	params.Momentum = -0.1
	assert.Error(t, params.Validate())

	params = DefaultParams()
	params.Epochs = 0
	assert.Error(t, params.Validate())

	params = DefaultParams()
	params.HiddenLayers = []int{4, 0}
	assert.Error(t, params.Validate())
	params.HiddenLayers = []int{4, 2}
	assert.NoError(t, params.Validate())
}
