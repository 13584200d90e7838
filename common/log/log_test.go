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

package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	defer CloseLogger()
	path := filepath.Join(t.TempDir(), "crossfold.log")

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flagSet)
	assert.NoError(t, flagSet.Parse([]string{"--log-path", path}))

	// production mode writes JSON to the rotated file
	SetLogger(flagSet, false)
	Logger().Info("hello")
	_ = Logger().Sync()
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)

	// debug mode keeps logging to the same file
	SetLogger(flagSet, true)
	Logger().Debug("world")
	_ = Logger().Sync()
	data, err = os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "world")
}

func TestSetLoggerWithoutFile(t *testing.T) {
	defer CloseLogger()
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flagSet)
	assert.NoError(t, flagSet.Parse(nil))
	SetLogger(flagSet, true)
	assert.NotNil(t, Logger())
}

func TestRunLogger(t *testing.T) {
	defer CloseLogger()
	core, logs := observer.New(zap.InfoLevel)
	SetLoggerTo(zap.New(core))
	RunLogger("run-1").Info("fold completed", zap.Int("fold", 3))
	entries := logs.FilterMessage("fold completed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, map[string]any{"run_id": "run-1", "fold": int64(3)}, entries[0].ContextMap())
	}
}
