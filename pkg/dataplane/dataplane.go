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

// Package dataplane implements the request-facing façade over the model
// registry: liveness and readiness probes, server/model metadata, and
// the infer hot path.
package dataplane

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/volcano-sh/kthena-modelcore/pkg/logging"
	"github.com/volcano-sh/kthena-modelcore/pkg/middleware"
	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/modelctx"
	"github.com/volcano-sh/kthena-modelcore/pkg/registry"
	"github.com/volcano-sh/kthena-modelcore/pkg/types"
)

var log = logging.NewLogger("dataplane")

// ServerInfo is the static identity returned by Metadata.
type ServerInfo struct {
	Name       string
	Version    string
	Extensions map[string]any
}

// DataPlane is the internal implementation of the handlers transport
// servers (HTTP/REST, gRPC) call into; it owns no transport concerns
// itself.
type DataPlane struct {
	server   ServerInfo
	registry *registry.MultiModelRegistry
	chain    middleware.Chain
	metrics  *metrics
}

// New constructs a DataPlane. promReg may be nil, in which case the
// metrics below are created but never registered with a collector
// (useful for tests that don't want to pollute the default registry).
func New(server ServerInfo, reg *registry.MultiModelRegistry, chain middleware.Chain, promReg prometheus.Registerer) *DataPlane {
	return &DataPlane{
		server:   server,
		registry: reg,
		chain:    chain,
		metrics:  newMetrics(promReg),
	}
}

// Live always reports true: the process answering is alive by
// definition.
func (d *DataPlane) Live(_ context.Context) bool {
	return true
}

// Ready is the logical AND of every known model's Ready flag (empty
// registry is vacuously ready).
func (d *DataPlane) Ready(ctx context.Context) bool {
	models, err := d.registry.GetModels("")
	if err != nil {
		return false
	}
	for _, m := range models {
		if !m.Ready() {
			return false
		}
	}
	return true
}

// ModelReady reports whether the resolved (name, version) is ready.
func (d *DataPlane) ModelReady(_ context.Context, name, version string) (bool, error) {
	m, err := d.registry.GetModel(name, version)
	if err != nil {
		return false, err
	}
	return m.Ready(), nil
}

// Metadata returns server-level metadata.
func (d *DataPlane) Metadata(_ context.Context) types.ServerMetadata {
	return types.ServerMetadata{
		Name:       d.server.Name,
		Version:    d.server.Version,
		Extensions: d.server.Extensions,
	}
}

// ModelMetadata resolves (name, version) and returns its runtime
// metadata, entering the model-context scope around the call so
// metadata probes are attributable the same way infer calls are.
func (d *DataPlane) ModelMetadata(ctx context.Context, name, version string) (model.Metadata, error) {
	m, err := d.registry.GetModel(name, version)
	if err != nil {
		return nil, err
	}
	ctx = modelctx.Enter(ctx, m.Settings())
	return m.Metadata(ctx)
}

// Infer is the hot path. The duration timer and failure scope cover
// everything from resolution through the response middlewares; the
// total counter is incremented unconditionally, and exactly one of
// success or failure is incremented per call.
func (d *DataPlane) Infer(ctx context.Context, req *types.InferenceRequest, name, version string) (*types.InferenceResponse, error) {
	start := time.Now()
	var failed bool
	defer func() {
		d.metrics.requestDuration.With(label(name, version)).Observe(time.Since(start).Seconds())
		if failed {
			d.metrics.requestFailure.With(label(name, version)).Inc()
		}
	}()

	d.metrics.requestTotal.With(label(name, version)).Inc()
	d.metrics.requestSLA.With(label(name, version)).Set(req.SLA())

	resp, err := d.infer(ctx, req, name, version)
	if err != nil {
		failed = true
		log.WithField("model", name).WithField("version", version).Warnf("infer failed: %v", err)
		return nil, err
	}

	d.metrics.requestSuccess.With(label(name, version)).Inc()
	return resp, nil
}

func (d *DataPlane) infer(ctx context.Context, req *types.InferenceRequest, name, version string) (*types.InferenceResponse, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	m, err := d.registry.GetModel(name, version)
	if err != nil {
		return nil, err
	}
	if !m.Ready() {
		return nil, &registry.ErrModelNotReady{Name: name, Version: version}
	}

	settings := m.Settings()
	if err := d.chain.RunRequest(ctx, req, settings); err != nil {
		return nil, err
	}

	ctx = modelctx.Enter(ctx, settings)
	resp, err := m.Predict(ctx, req)
	if err != nil {
		return nil, err
	}

	// ID echo contract.
	resp.ID = req.ID

	if err := d.chain.RunResponse(ctx, resp, settings); err != nil {
		return nil, err
	}

	return resp, nil
}
