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

// Package registry implements the per-name and multi-name model
// registries: a version index per model name with default selection,
// and a name router aggregating them.
package registry

import (
	"context"
	"strconv"
	"sync"

	"github.com/volcano-sh/kthena-modelcore/pkg/logging"
	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/modelctx"
)

var log = logging.NewLogger("registry")

// SingleModelRegistry owns every live version of one named model, plus
// its default selection. All version transitions for the name funnel
// through here.
//
// Two locks guard different things: opMu serializes the administrative
// operations (Load/Unload/UnloadVersion) against each other, and is held
// for the operation's full duration including suspending hook/Model
// calls. stateMu protects only the versions map and default pointer,
// and is never held across a suspending call, so GetModel/GetModels
// (reader operations) stay lock-free with respect to opMu and only
// briefly contend on stateMu.
type SingleModelRegistry struct {
	name        string
	initialiser model.Initialiser
	hooks       Hooks

	opMu sync.Mutex

	stateMu  sync.Mutex
	versions map[string]model.Model
	def      model.Model
}

// NewSingleModelRegistry constructs the per-name registry backing the
// first load of settings.
func NewSingleModelRegistry(name string, hooks Hooks, initialiser model.Initialiser) *SingleModelRegistry {
	return &SingleModelRegistry{
		name:        name,
		initialiser: initialiser,
		hooks:       hooks,
		versions:    make(map[string]model.Model),
	}
}

func (s *SingleModelRegistry) defaultLocked() model.Model {
	if s.def == nil {
		s.def = s.findDefaultLocked()
	}
	return s.def
}

func (s *SingleModelRegistry) findDefaultLocked() model.Model {
	if s.def != nil {
		return s.def
	}
	var latest model.Model
	for _, m := range s.versions {
		if latest == nil || isNewer(m, latest) >= 0 {
			latest = m
		}
	}
	return latest
}

func (s *SingleModelRegistry) clearDefaultLocked() {
	s.def = nil
}

// refreshDefaultLocked is called with newModel after a registration to
// incrementally decide whether it displaces the current default,
// avoiding a full scan of versions on every load. Must run after any
// onLoad hook has finished rewriting newModel's version, since
// refreshing before that point could leave default pointing at a Model
// that a later registration evicts.
func (s *SingleModelRegistry) refreshDefaultLocked(newModel model.Model) {
	if newModel != nil {
		if s.def == nil {
			s.def = newModel
			return
		}
		if newModel.Version() == "" {
			s.def = newModel
			return
		}
		if s.def.Version() == "" {
			return
		}
		if isNewer(newModel, s.def) >= 0 {
			s.def = newModel
		}
		return
	}

	if s.def != nil && s.def.Version() == "" {
		return
	}
	s.def = s.findDefaultLocked()
}

func (s *SingleModelRegistry) registerLocked(m model.Model) {
	if m.Version() != "" {
		s.versions[m.Version()] = m
	}
	s.refreshDefaultLocked(m)
}

func (s *SingleModelRegistry) findModelLocked(version string) model.Model {
	if version != "" {
		return s.versions[version]
	}
	return s.defaultLocked()
}

// Load instantiates a Model via the initialiser and registers it,
// performing a first-load or a reload depending on whether a Model is
// already present under settings' version. An unversioned load against
// a registry that already has a default reloads that default.
func (s *SingleModelRegistry) Load(ctx context.Context, settings model.Settings) (model.Model, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	version := settings.Version()

	s.stateMu.Lock()
	previous := s.findModelLocked(version)
	s.stateMu.Unlock()

	newModel, err := s.initialiser(settings)
	if err != nil {
		return nil, &ErrLoadFailed{Name: settings.Name, Version: version, Cause: err}
	}

	ctx = modelctx.Enter(ctx, settings)

	if previous != nil {
		newModel, err = s.reloadModel(ctx, previous, newModel)
	} else {
		newModel, err = s.loadModel(ctx, newModel)
	}
	if err != nil {
		return nil, err
	}

	return newModel, nil
}

// loadModel performs a first-load: the Model is registered immediately
// with ready=false so readiness probes see it as loading, then onLoad
// hooks run in declared order (each may replace the Model), then the
// Model's own Load decides readiness. Any failure unload-cleans the
// partial registration before propagating. It returns the registered
// Model, which is the last hook's replacement when hooks replaced it.
func (s *SingleModelRegistry) loadModel(ctx context.Context, m model.Model) (model.Model, error) {
	s.stateMu.Lock()
	s.registerLocked(m)
	s.stateMu.Unlock()

	for _, hook := range s.hooks.OnLoad {
		replaced, err := hook(ctx, m)
		if err != nil {
			s.unloadModel(ctx, m)
			return nil, &ErrLoadFailed{Name: m.Name(), Version: m.Version(), Cause: err}
		}
		m = replaced
	}

	s.stateMu.Lock()
	s.registerLocked(m)
	s.stateMu.Unlock()

	ready, err := m.Load(ctx)
	if err != nil {
		s.unloadModel(ctx, m)
		return nil, &ErrLoadFailed{Name: m.Name(), Version: m.Version(), Cause: err}
	}
	m.SetReady(ready)

	log.WithField("model", m.Name()).WithField("version", m.Version()).Info("loaded model successfully")
	return m, nil
}

// reloadModel swaps newModel in for oldModel under the same version.
// The new Model is loaded and marked ready before the old one is
// unloaded, so some ready Model with the target version is reachable
// throughout except for the registration swap itself. It returns the
// registered Model, which is the last hook's replacement when hooks
// replaced it.
func (s *SingleModelRegistry) reloadModel(ctx context.Context, oldModel, newModel model.Model) (model.Model, error) {
	cur := newModel
	for _, hook := range s.hooks.OnReload {
		replaced, err := runReloadHook(ctx, hook, oldModel, cur)
		if err != nil {
			// Old model is preserved, new model is discarded (never
			// registered). Registry stays in its pre-reload state.
			return nil, &ErrLoadFailed{Name: cur.Name(), Version: cur.Version(), Cause: err}
		}
		cur = replaced
	}
	newModel = cur

	ready, err := newModel.Load(ctx)
	if err != nil {
		return nil, &ErrLoadFailed{Name: newModel.Name(), Version: newModel.Version(), Cause: err}
	}
	newModel.SetReady(ready)

	s.stateMu.Lock()
	s.registerLocked(newModel)
	isDefault := s.def == oldModel
	if isDefault {
		s.clearDefaultLocked()
	}
	s.stateMu.Unlock()

	unloaded, err := oldModel.Unload(ctx)
	if err != nil {
		log.WithField("model", oldModel.Name()).Warnf("old model unload errored during reload: %v", err)
		oldModel.SetReady(false)
	} else {
		oldModel.SetReady(!unloaded)
	}

	log.WithField("model", newModel.Name()).WithField("version", newModel.Version()).Info("reloaded model successfully")
	return newModel, nil
}

// Unload unloads every version concurrently and clears all state. It
// never fails: per-Model hook errors are captured and logged, and so is
// any error from a Model's own Unload.
func (s *SingleModelRegistry) Unload(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	models := s.GetModels()

	var wg sync.WaitGroup
	wg.Add(len(models))
	for _, m := range models {
		m := m
		go func() {
			defer wg.Done()
			s.unloadModel(ctx, m)
		}()
	}
	wg.Wait()

	s.stateMu.Lock()
	s.versions = make(map[string]model.Model)
	s.clearDefaultLocked()
	s.stateMu.Unlock()

	log.WithField("model", s.name).Info("unloaded all versions successfully")
}

// UnloadVersion unloads a single version (or the default, when version
// is empty).
func (s *SingleModelRegistry) UnloadVersion(ctx context.Context, version string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	m, err := s.getModelLocked(version)
	if err != nil {
		return err
	}
	s.unloadModel(ctx, m)
	return nil
}

// unloadModel unloads one Model: onUnload hooks run concurrently with
// errors captured, then the Model is evicted from the version index and
// unloaded.
func (s *SingleModelRegistry) unloadModel(ctx context.Context, m model.Model) {
	ctx = modelctx.Enter(ctx, m.Settings())

	if len(s.hooks.OnUnload) > 0 {
		var wg sync.WaitGroup
		wg.Add(len(s.hooks.OnUnload))
		for i, hook := range s.hooks.OnUnload {
			hook := hook
			idx := i
			go func() {
				defer wg.Done()
				if err := hook(ctx, m); err != nil {
					hookErr := &ErrHookFailed{Hook: hookName(idx), Cause: err}
					log.WithField("model", m.Name()).Warn(hookErr.Error())
				}
			}()
		}
		wg.Wait()
	}

	s.stateMu.Lock()
	if m.Version() != "" {
		delete(s.versions, m.Version())
	}
	if s.def == m {
		s.clearDefaultLocked()
	}
	s.stateMu.Unlock()

	unloaded, err := m.Unload(ctx)
	if err != nil {
		log.WithField("model", m.Name()).Warnf("model unload errored: %v", err)
		m.SetReady(false)
	} else {
		m.SetReady(!unloaded)
	}

	modelMsg := "model '" + m.Name() + "'"
	if m.Version() != "" {
		modelMsg = "version " + m.Version() + " of " + modelMsg
	}
	log.Infof("unloaded %s successfully", modelMsg)
}

func hookName(idx int) string {
	return "onUnload[" + strconv.Itoa(idx) + "]"
}

func (s *SingleModelRegistry) getModelLocked(version string) (model.Model, error) {
	s.stateMu.Lock()
	m := s.findModelLocked(version)
	s.stateMu.Unlock()
	if m == nil {
		return nil, &ErrModelNotFound{Name: s.name, Version: version}
	}
	return m, nil
}

// GetModel resolves a version (or the default, when version is empty).
func (s *SingleModelRegistry) GetModel(version string) (model.Model, error) {
	return s.getModelLocked(version)
}

// GetModels returns a snapshot of every version plus the version-less
// default, if any.
func (s *SingleModelRegistry) GetModels() []model.Model {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	models := make([]model.Model, 0, len(s.versions)+1)
	for _, m := range s.versions {
		models = append(models, m)
	}
	if def := s.defaultLocked(); def != nil && def.Version() == "" {
		models = append(models, def)
	}
	return models
}

// Empty reports whether this registry holds no versions and no default,
// making it eligible for removal by its MultiModelRegistry parent.
func (s *SingleModelRegistry) Empty() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return len(s.versions) == 0 && s.defaultLocked() == nil
}
