/*
Copyright The Volcano Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package modeltest provides a controllable fake model.Model for
// registry and data-plane tests.
package modeltest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/types"
)

// Fake is a model.Model whose Load/Unload/Predict behavior is
// controlled by its exported fields, read once at call time so tests
// can flip them between calls.
type Fake struct {
	*model.Base

	mu sync.Mutex

	LoadResult   bool
	LoadErr      error
	UnloadResult bool
	UnloadErr    error
	PredictErr   error

	LoadCalls    atomic.Int32
	UnloadCalls  atomic.Int32
	PredictCalls atomic.Int32
}

var _ model.Model = (*Fake)(nil)

// New constructs a Fake that loads/unloads successfully by default.
func New(settings model.Settings) *Fake {
	return &Fake{
		Base:         model.NewBase(settings),
		LoadResult:   true,
		UnloadResult: true,
	}
}

// Initialiser adapts New to model.Initialiser for wiring into a
// registry directly in tests.
func Initialiser(settings model.Settings) (model.Model, error) {
	return New(settings), nil
}

func (f *Fake) Load(_ context.Context) (bool, error) {
	f.LoadCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoadErr != nil {
		return false, f.LoadErr
	}
	return f.LoadResult, nil
}

func (f *Fake) Unload(_ context.Context) (bool, error) {
	f.UnloadCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UnloadErr != nil {
		return false, f.UnloadErr
	}
	return f.UnloadResult, nil
}

func (f *Fake) Predict(_ context.Context, req *types.InferenceRequest) (*types.InferenceResponse, error) {
	f.PredictCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PredictErr != nil {
		return nil, f.PredictErr
	}
	outputs := make([]types.ResponseOutput, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		outputs = append(outputs, types.ResponseOutput{Name: in.Name, Data: in.Data})
	}
	return &types.InferenceResponse{Outputs: outputs}, nil
}

func (f *Fake) Metadata(_ context.Context) (model.Metadata, error) {
	return model.Metadata{"name": f.Name(), "version": f.Version()}, nil
}

// SetLoadErr is a convenience for tests that want a first-load or
// reload to fail.
func (f *Fake) SetLoadErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoadErr = err
}

// ErrBoom is a sentinel test failure.
var ErrBoom = errors.New("boom")
