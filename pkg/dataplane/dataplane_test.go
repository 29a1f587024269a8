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

package dataplane

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volcano-sh/kthena-modelcore/pkg/middleware"
	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/model/modeltest"
	"github.com/volcano-sh/kthena-modelcore/pkg/registry"
	"github.com/volcano-sh/kthena-modelcore/pkg/types"
)

func newTestDataPlane() *DataPlane {
	reg := registry.NewMultiModelRegistry(registry.Hooks{}, modeltest.Initialiser)
	chain := middleware.New(nil, nil)
	return New(ServerInfo{Name: "modelcore", Version: "v1"}, reg, chain, nil)
}

func loadSettings(name, version string) model.Settings {
	return model.Settings{Name: name, Parameters: model.Parameters{Version: version}}
}

func TestDataPlane_LiveAlwaysTrue(t *testing.T) {
	d := newTestDataPlane()
	assert.True(t, d.Live(context.Background()))
}

func TestDataPlane_ReadyVacuousWhenEmpty(t *testing.T) {
	d := newTestDataPlane()
	assert.True(t, d.Ready(context.Background()))
}

func TestDataPlane_ReadyFalseWhenAnyModelNotReady(t *testing.T) {
	d := newTestDataPlane()
	ctx := context.Background()

	_, err := d.registry.Load(ctx, loadSettings("iris", "1"))
	require.NoError(t, err)

	notReady := modeltest.New(loadSettings("sentiment", "1"))
	notReady.LoadResult = false
	reg2 := registry.NewMultiModelRegistry(registry.Hooks{}, func(s model.Settings) (model.Model, error) {
		return notReady, nil
	})
	d2 := New(ServerInfo{Name: "modelcore"}, reg2, middleware.New(nil, nil), nil)
	_, err = d2.registry.Load(ctx, loadSettings("sentiment", "1"))
	require.NoError(t, err)

	assert.False(t, d2.Ready(ctx))
}

func TestDataPlane_Infer(t *testing.T) {
	d := newTestDataPlane()
	ctx := context.Background()

	_, err := d.registry.Load(ctx, loadSettings("iris", "1"))
	require.NoError(t, err)

	req := &types.InferenceRequest{
		Inputs: []types.RequestInput{{Name: "input-0", Data: []float64{1, 2, 3}}},
	}

	resp, err := d.Infer(ctx, req, "iris", "1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID, "an absent request ID must be assigned")
	assert.Equal(t, req.ID, resp.ID, "the ID echo contract must hold")
	require.Len(t, resp.Outputs, 1)
	assert.Equal(t, "input-0", resp.Outputs[0].Name)

	// CloudEvents response middleware annotates headers by default.
	assert.Equal(t, "io.kthena.modelcore.inference.response", resp.Parameters.Headers["ce-type"])
	assert.Equal(t, resp.ID, resp.Parameters.Headers["ce-id"])
}

func TestDataPlane_InferPreservesCallerSuppliedID(t *testing.T) {
	d := newTestDataPlane()
	ctx := context.Background()

	_, err := d.registry.Load(ctx, loadSettings("iris", "1"))
	require.NoError(t, err)

	req := &types.InferenceRequest{ID: "caller-id", Inputs: []types.RequestInput{{Name: "x"}}}
	resp, err := d.Infer(ctx, req, "iris", "1")
	require.NoError(t, err)
	assert.Equal(t, "caller-id", resp.ID)
}

func TestDataPlane_InferUnknownModel(t *testing.T) {
	d := newTestDataPlane()
	_, err := d.Infer(context.Background(), &types.InferenceRequest{}, "missing", "")
	var notFound *registry.ErrModelNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestDataPlane_InferModelNotReady(t *testing.T) {
	notReady := modeltest.New(loadSettings("iris", "1"))
	notReady.LoadResult = false
	reg := registry.NewMultiModelRegistry(registry.Hooks{}, func(s model.Settings) (model.Model, error) {
		return notReady, nil
	})
	d := New(ServerInfo{Name: "modelcore"}, reg, middleware.New(nil, nil), nil)
	ctx := context.Background()

	_, err := d.registry.Load(ctx, loadSettings("iris", "1"))
	require.NoError(t, err)

	_, err = d.Infer(ctx, &types.InferenceRequest{Inputs: []types.RequestInput{{Name: "x"}}}, "iris", "1")
	var notReadyErr *registry.ErrModelNotReady
	assert.ErrorAs(t, err, &notReadyErr)
}

func TestDataPlane_SLAMetricExtractsHint(t *testing.T) {
	req := &types.InferenceRequest{
		Inputs: []types.RequestInput{{
			Parameters: types.RequestParameters{
				ExtendedParameters: map[string]any{"sla": float64(42)},
			},
		}},
	}
	assert.Equal(t, float64(42), req.SLA())

	noHint := &types.InferenceRequest{Inputs: []types.RequestInput{{}}}
	assert.Equal(t, float64(0), noHint.SLA())
}

func TestDataPlane_ModelMetadata(t *testing.T) {
	d := newTestDataPlane()
	ctx := context.Background()

	_, err := d.registry.Load(ctx, loadSettings("iris", "1"))
	require.NoError(t, err)

	md, err := d.ModelMetadata(ctx, "iris", "1")
	require.NoError(t, err)
	assert.Equal(t, "iris", md["name"])
}

func TestDataPlane_Metadata(t *testing.T) {
	d := New(ServerInfo{Name: "modelcore", Version: "v1", Extensions: map[string]any{"k": "v"}}, registry.NewMultiModelRegistry(registry.Hooks{}, modeltest.Initialiser), middleware.New(nil, nil), nil)
	md := d.Metadata(context.Background())
	assert.Equal(t, "modelcore", md.Name)
	assert.Equal(t, "v1", md.Version)
	assert.Equal(t, "v", md.Extensions["k"])
}
