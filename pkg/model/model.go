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

// Package model defines the Model abstraction owned and lifecycle-managed
// by the registry: an opaque, stateful compute unit identified by a
// (name, version) pair.
package model

import (
	"context"
	"sync/atomic"

	"github.com/volcano-sh/kthena-modelcore/pkg/types"
)

// Parameters carries the settings fields the registry itself inspects.
// Runtime-specific extensions travel in Extra.
type Parameters struct {
	Version string `json:"version,omitempty"`
	URI     string `json:"uri,omitempty"`

	// Extra holds implementation-specific settings the runtime behind
	// Model consumes directly. The registry never reads these.
	Extra map[string]any `json:"-"`
}

// Settings is the inbound model configuration. Implementation is a
// constructor reference resolved through an ImplementationRegistry
// rather than carried as a function value, since Settings must remain a
// plain, JSON-decodable struct.
type Settings struct {
	Name           string     `json:"name"`
	Parameters     Parameters `json:"parameters,omitempty"`
	MaxBatchSize   int        `json:"maxBatchSize,omitempty"`
	Implementation string     `json:"implementation"`
}

// Version returns the settings-declared version, or "" when unversioned.
func (s Settings) Version() string {
	return s.Parameters.Version
}

// Metadata is returned by Model.Metadata(); shape is runtime-specific
// beyond the fields the registry and data plane surface directly.
type Metadata map[string]any

// Model is the leaf abstraction the registry owns exclusively for its
// name. Implementations decide for themselves whether Unload blocks
// until outstanding Predict calls complete, or fails gracefully under a
// concurrent unload.
type Model interface {
	// Name is immutable for the lifetime of the Model.
	Name() string
	// Version may be rewritten by an onLoad hook before the first
	// registration is finalized; SetVersion exists for that purpose
	// only and must not be called once the Model is registered.
	Version() string
	SetVersion(version string)

	// Settings returns the descriptor used to construct this Model's
	// model-context scope.
	Settings() Settings

	// Ready reports the last value the registry assigned from a
	// Load/Unload outcome. The registry, not the Model, owns this
	// assignment.
	Ready() bool
	SetReady(ready bool)

	Load(ctx context.Context) (bool, error)
	Unload(ctx context.Context) (bool, error)
	Predict(ctx context.Context, req *types.InferenceRequest) (*types.InferenceResponse, error)
	Metadata(ctx context.Context) (Metadata, error)
}

// Base is an embeddable struct providing the identity/readiness
// bookkeeping every concrete Model needs, so runtime authors only
// implement Load/Unload/Predict/Metadata.
type Base struct {
	name     string
	version  atomic.Value // string
	settings Settings
	ready    atomic.Bool
}

// NewBase constructs the identity/readiness portion of a Model from its
// settings.
func NewBase(settings Settings) *Base {
	b := &Base{name: settings.Name, settings: settings}
	b.version.Store(settings.Version())
	return b
}

func (b *Base) Name() string { return b.name }

func (b *Base) Version() string {
	v, _ := b.version.Load().(string)
	return v
}

func (b *Base) SetVersion(version string) {
	b.version.Store(version)
	b.settings.Parameters.Version = version
}

func (b *Base) Settings() Settings { return b.settings }

func (b *Base) Ready() bool { return b.ready.Load() }

func (b *Base) SetReady(ready bool) { b.ready.Store(ready) }
