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

package echomodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/types"
)

func TestModel_PredictEchoes(t *testing.T) {
	m, err := New(model.Settings{Name: "echo", Implementation: ImplementationName})
	require.NoError(t, err)

	ready, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ready)

	req := &types.InferenceRequest{
		Inputs: []types.RequestInput{
			{Name: "a", Data: []float64{1, 2}},
			{Name: "b", Data: "hello"},
		},
	}
	resp, err := m.Predict(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Outputs, 2)
	assert.Equal(t, "a", resp.Outputs[0].Name)
	assert.Equal(t, []float64{1, 2}, resp.Outputs[0].Data)
	assert.Equal(t, "hello", resp.Outputs[1].Data)
}

func TestModel_MetadataReportsBatchSize(t *testing.T) {
	m, err := New(model.Settings{Name: "echo", MaxBatchSize: 8})
	require.NoError(t, err)

	md, err := m.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, md["batchSize"])
}

func TestModel_DefaultBatchSize(t *testing.T) {
	m, err := New(model.Settings{Name: "echo"})
	require.NoError(t, err)

	md, err := m.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, md["batchSize"])
}
