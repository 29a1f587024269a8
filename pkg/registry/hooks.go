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

package registry

import (
	"context"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
)

// LoadHook runs sequentially during a first-load, in declared order. It
// may return a replacement Model (same identity, possibly rewrapped).
type LoadHook func(ctx context.Context, m model.Model) (model.Model, error)

// UnloadHook runs concurrently (fan-out, errors captured not propagated)
// during unload of one Model.
type UnloadHook func(ctx context.Context, m model.Model) error

// ReloadHook is a hook run during a reload. Implementations are either
// a ReplaceHook, which sees both the outgoing and incoming Model, or an
// InitHook, which only ever sees the new Model because it must
// initialize fresh rather than transfer state from the old one.
type ReloadHook interface {
	isReloadHook()
}

// ReplaceHook receives the old and new Model and returns the (possibly
// replaced) new Model. Most reload hooks are ReplaceHooks.
type ReplaceHook func(ctx context.Context, old, new model.Model) (model.Model, error)

func (ReplaceHook) isReloadHook() {}

// InitHook receives only the new Model. Used by hooks, such as a
// request-batching wrapper, that must not transfer state from the old
// Model.
type InitHook func(ctx context.Context, new model.Model) (model.Model, error)

func (InitHook) isReloadHook() {}

// runReloadHook dispatches on the hook's concrete type.
func runReloadHook(ctx context.Context, hook ReloadHook, old, new model.Model) (model.Model, error) {
	switch h := hook.(type) {
	case InitHook:
		return h(ctx, new)
	case ReplaceHook:
		return h(ctx, old, new)
	default:
		return new, nil
	}
}

// Hooks bundles the three immutable hook lists a SingleModelRegistry (or
// its MultiModelRegistry parent) is constructed with.
type Hooks struct {
	OnLoad   []LoadHook
	OnReload []ReloadHook
	OnUnload []UnloadHook
}
