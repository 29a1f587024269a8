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

// Package echomodel is a minimal reference Model implementation used by
// the reference binaries (cmd/modelserverd) and by tests. It is not a
// production runtime.
package echomodel

import (
	"context"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/types"
)

// ImplementationName is the Settings.Implementation value that resolves
// to New through a model.ImplementationRegistry.
const ImplementationName = "echo"

// Model answers Predict by echoing the request's inputs back as
// outputs. It honors Settings.MaxBatchSize as its configured batch
// size, reported through Metadata.
type Model struct {
	*model.Base
	batchSize int
}

var _ model.Model = (*Model)(nil)

// New constructs an echo Model from settings; registered under
// ImplementationName in a model.ImplementationRegistry.
func New(settings model.Settings) (model.Model, error) {
	batchSize := 1
	if settings.MaxBatchSize > 0 {
		batchSize = settings.MaxBatchSize
	}
	return &Model{
		Base:      model.NewBase(settings),
		batchSize: batchSize,
	}, nil
}

// Load has no external dependency to wait on; it reports ready
// immediately.
func (m *Model) Load(_ context.Context) (bool, error) {
	return true, nil
}

// Unload reports it fully released its state.
func (m *Model) Unload(_ context.Context) (bool, error) {
	return true, nil
}

// Predict echoes each input back as an output with the same name and
// data.
func (m *Model) Predict(_ context.Context, req *types.InferenceRequest) (*types.InferenceResponse, error) {
	outputs := make([]types.ResponseOutput, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		outputs = append(outputs, types.ResponseOutput{Name: in.Name, Data: in.Data})
	}
	return &types.InferenceResponse{Outputs: outputs}, nil
}

// Metadata reports the batch size this instance was configured with.
func (m *Model) Metadata(_ context.Context) (model.Metadata, error) {
	return model.Metadata{
		"name":      m.Name(),
		"version":   m.Version(),
		"batchSize": m.batchSize,
	}, nil
}
