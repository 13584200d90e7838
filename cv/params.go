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
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Params are the hyper-parameters handed to the trainer of every fold. They are read
// concurrently by all workers and must not be modified during a run.
type Params struct {
	LearningRate float64 `mapstructure:"learning_rate" validate:"gte=0,lte=1"`
	Momentum     float64 `mapstructure:"momentum" validate:"gte=0,lte=1"`
	Epochs       int     `mapstructure:"epochs" validate:"gte=1"`
	// HiddenLayers lists the width of each hidden layer. Empty means one layer sized
	// from the number of inputs and classes.
	HiddenLayers []int `mapstructure:"hidden_layers" validate:"dive,gte=1"`
	Seed         int64 `mapstructure:"seed"`
}

func DefaultParams() Params {
	return Params{
		LearningRate: 0.3,
		Momentum:     0.2,
		Epochs:       500,
	}
}

var validate = validator.New()

func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return errors.Annotate(err, "invalid params")
	}
	return nil
}

func (p Params) ZapFields() []zap.Field {
	return []zap.Field{
		zap.Float64("learning_rate", p.LearningRate),
		zap.Float64("momentum", p.Momentum),
		zap.Int("epochs", p.Epochs),
		zap.Ints("hidden_layers", p.HiddenLayers),
		zap.Int64("seed", p.Seed),
	}
}
