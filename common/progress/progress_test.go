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

package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ProgressTestSuite struct {
	suite.Suite
	tracer *Tracer
}

func (suite *ProgressTestSuite) SetupTest() {
	suite.tracer = NewTracer("test")
}

func (suite *ProgressTestSuite) TestLeafProgress() {
	_, span := suite.tracer.Start(context.Background(), "root", 100)
	progressList := suite.tracer.List()
	suite.Equal(1, len(progressList))
	suite.Equal("test", progressList[0].Tracer)
	suite.Equal("root", progressList[0].Name)
	suite.Equal(StatusRunning, progressList[0].Status)
	suite.Empty(progressList[0].Error)
	suite.Equal(100, progressList[0].Total)
	suite.Empty(progressList[0].Count)
	suite.False(progressList[0].StartTime.After(time.Now()))

	span.Add(10)
	progressList = suite.tracer.List()
	suite.Equal(10, progressList[0].Count)
	suite.Equal(StatusRunning, progressList[0].Status)

	span.End()
	progressList = suite.tracer.List()
	suite.Equal(StatusComplete, progressList[0].Status)
	suite.Equal(100, progressList[0].Count)
	suite.False(progressList[0].FinishTime.Before(progressList[0].StartTime))

	span.Fail(errors.New("some error"))
	progressList = suite.tracer.List()
	suite.Equal(StatusFailed, progressList[0].Status)
	suite.Equal("some error", progressList[0].Error)

	// a failed span is not completed again
	span.End()
	suite.Equal(StatusFailed, span.Status())
}

func (suite *ProgressTestSuite) TestChildProgress() {
	ctx, root := suite.tracer.Start(context.Background(), "cv", 2)
	first := Pending(ctx, "fold-0000", 2)
	second := Pending(ctx, "fold-0001", 2)
	suite.Equal(StatusPending, first.Status())

	first.Run()
	first.Add(1)
	first.End()
	root.Add(1)
	second.Run()
	second.Fail(errors.New("training failed"))
	root.Add(1)

	progressList := suite.tracer.List()
	suite.Equal(1, len(progressList))
	suite.Equal(2, progressList[0].Count)
	children := progressList[0].Children
	suite.Equal(2, len(children))
	suite.Equal("fold-0000", children[0].Name)
	suite.Equal(StatusComplete, children[0].Status)
	suite.Equal(2, children[0].Count)
	suite.Equal("fold-0001", children[1].Name)
	suite.Equal(StatusFailed, children[1].Status)
	suite.Equal("training failed", children[1].Error)
}

func (suite *ProgressTestSuite) TestStartWithContext() {
	ctx, _ := suite.tracer.Start(context.Background(), "root", 1)
	childCtx, child := Start(ctx, "child", 8)
	child.Add(2)
	Fail(childCtx, errors.New("some error"))
	progressList := suite.tracer.List()
	suite.Equal(1, len(progressList[0].Children))
	suite.Equal(StatusFailed, progressList[0].Children[0].Status)
	suite.Equal(2, progressList[0].Children[0].Count)

	// no parent span
	_, detached := Start(context.Background(), "detached", 1)
	detached.End()
	suite.Equal(StatusComplete, detached.Status())
	suite.Equal(1, len(suite.tracer.List()))
}

func TestProgressTestSuite(t *testing.T) {
	suite.Run(t, new(ProgressTestSuite))
}
