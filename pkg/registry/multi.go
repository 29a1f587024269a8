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
	"sync"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
)

// MultiModelRegistry is a thin name-router over per-name
// SingleModelRegistry children. It does not need a global lock for
// operations on different names, since it partitions by name, but the
// map of children is protected for insertion/removal.
type MultiModelRegistry struct {
	hooks       Hooks
	initialiser model.Initialiser

	mu       sync.RWMutex
	children map[string]*SingleModelRegistry
}

// NewMultiModelRegistry constructs an empty top-level registry. hooks and
// initialiser are forwarded to every SingleModelRegistry created on
// first sight of a name.
func NewMultiModelRegistry(hooks Hooks, initialiser model.Initialiser) *MultiModelRegistry {
	return &MultiModelRegistry{
		hooks:       hooks,
		initialiser: initialiser,
		children:    make(map[string]*SingleModelRegistry),
	}
}

// child returns (creating on first sight) the SingleModelRegistry for name.
func (r *MultiModelRegistry) child(name string) *SingleModelRegistry {
	r.mu.RLock()
	c, ok := r.children[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.children[name]; ok {
		return c
	}
	c = NewSingleModelRegistry(name, r.hooks, r.initialiser)
	r.children[name] = c
	return c
}

func (r *MultiModelRegistry) lookup(name string) (*SingleModelRegistry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.children[name]
	return c, ok
}

// Load creates the child registry on first sight of settings.Name and
// delegates to it.
func (r *MultiModelRegistry) Load(ctx context.Context, settings model.Settings) (model.Model, error) {
	return r.child(settings.Name).Load(ctx, settings)
}

// Unload unloads every version of name and removes its child registry.
func (r *MultiModelRegistry) Unload(ctx context.Context, name string) error {
	c, ok := r.lookup(name)
	if !ok {
		return &ErrModelNotFound{Name: name}
	}
	c.Unload(ctx)

	r.mu.Lock()
	delete(r.children, name)
	r.mu.Unlock()
	return nil
}

// UnloadVersion unloads one version of name and removes the child
// registry if it is now empty.
func (r *MultiModelRegistry) UnloadVersion(ctx context.Context, name, version string) error {
	c, ok := r.lookup(name)
	if !ok {
		return &ErrModelNotFound{Name: name, Version: version}
	}
	if err := c.UnloadVersion(ctx, version); err != nil {
		return err
	}

	if c.Empty() {
		r.mu.Lock()
		delete(r.children, name)
		r.mu.Unlock()
	}
	return nil
}

// GetModel resolves (name, version) through the matching child.
func (r *MultiModelRegistry) GetModel(name, version string) (model.Model, error) {
	c, ok := r.lookup(name)
	if !ok {
		return nil, &ErrModelNotFound{Name: name, Version: version}
	}
	return c.GetModel(version)
}

// GetModels returns name's listing, or the concatenation of every
// child's listing when name is empty.
func (r *MultiModelRegistry) GetModels(name string) ([]model.Model, error) {
	if name != "" {
		c, ok := r.lookup(name)
		if !ok {
			return nil, &ErrModelNotFound{Name: name}
		}
		return c.GetModels(), nil
	}

	r.mu.RLock()
	children := make([]*SingleModelRegistry, 0, len(r.children))
	for _, c := range r.children {
		children = append(children, c)
	}
	r.mu.RUnlock()

	var all []model.Model
	for _, c := range children {
		all = append(all, c.GetModels()...)
	}
	return all, nil
}
