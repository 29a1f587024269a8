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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/model/modeltest"
)

func settingsFor(name, version string) model.Settings {
	return model.Settings{
		Name:       name,
		Parameters: model.Parameters{Version: version},
	}
}

func newTestRegistry(name string, hooks Hooks) *SingleModelRegistry {
	return NewSingleModelRegistry(name, hooks, modeltest.Initialiser)
}

func TestSingleModelRegistry_FirstLoad(t *testing.T) {
	r := newTestRegistry("iris", Hooks{})

	m, err := r.Load(context.Background(), settingsFor("iris", "1"))
	require.NoError(t, err)
	assert.True(t, m.Ready())

	got, err := r.GetModel("1")
	require.NoError(t, err)
	assert.Same(t, m, got)

	// Unversioned lookup resolves the only version as default.
	def, err := r.GetModel("")
	require.NoError(t, err)
	assert.Same(t, m, def)
}

func TestSingleModelRegistry_DefaultOrdering(t *testing.T) {
	r := newTestRegistry("iris", Hooks{})
	ctx := context.Background()

	_, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)
	_, err = r.Load(ctx, settingsFor("iris", "10"))
	require.NoError(t, err)
	_, err = r.Load(ctx, settingsFor("iris", "2"))
	require.NoError(t, err)

	def, err := r.GetModel("")
	require.NoError(t, err)
	assert.Equal(t, "10", def.Version(), "integer version ordering must treat 10 as newer than 2")

	// A version-less load always displaces the default, regardless of
	// the current default's version.
	_, err = r.Load(ctx, settingsFor("iris", ""))
	require.NoError(t, err)
	def, err = r.GetModel("")
	require.NoError(t, err)
	assert.Equal(t, "", def.Version())

	models := r.GetModels()
	assert.Len(t, models, 4, "all versioned loads plus the version-less default must remain listed")
}

func TestSingleModelRegistry_ReloadViaDefault(t *testing.T) {
	// An unversioned Load against an existing versioned default is
	// processed as a reload of that default, not as an independent
	// first-load.
	r := newTestRegistry("iris", Hooks{})
	ctx := context.Background()

	first, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)
	assert.True(t, first.Ready())

	second, err := r.Load(ctx, settingsFor("iris", ""))
	require.NoError(t, err)
	assert.True(t, second.Ready())

	// The old default is reloaded-away: ready flips false, but its
	// versioned entry is retained in the listing.
	assert.False(t, first.Ready())

	models := r.GetModels()
	assert.Len(t, models, 2)

	def, err := r.GetModel("")
	require.NoError(t, err)
	assert.Same(t, second, def)

	v1, err := r.GetModel("1")
	require.NoError(t, err)
	assert.Same(t, first, v1)
}

func TestSingleModelRegistry_ReloadSameVersion(t *testing.T) {
	r := newTestRegistry("iris", Hooks{})
	ctx := context.Background()

	old, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)

	newM, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)

	assert.True(t, newM.Ready())
	assert.False(t, old.Ready())

	got, err := r.GetModel("1")
	require.NoError(t, err)
	assert.Same(t, newM, got)
}

func TestSingleModelRegistry_LoadFailureLeavesNoTrace(t *testing.T) {
	fake := modeltest.New(settingsFor("iris", "1"))
	fake.LoadErr = modeltest.ErrBoom

	r := NewSingleModelRegistry("iris", Hooks{}, func(model.Settings) (model.Model, error) {
		return fake, nil
	})

	_, err := r.Load(context.Background(), settingsFor("iris", "1"))
	require.Error(t, err)
	var loadErr *ErrLoadFailed
	assert.ErrorAs(t, err, &loadErr)

	_, err = r.GetModel("1")
	assert.Error(t, err, "a failed first-load must not leave a registered model behind")
}

func TestSingleModelRegistry_ReloadFailurePreservesOld(t *testing.T) {
	r := newTestRegistry("iris", Hooks{})
	ctx := context.Background()

	old, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)

	failingInit := 0
	r.initialiser = func(settings model.Settings) (model.Model, error) {
		failingInit++
		f := modeltest.New(settings)
		f.LoadErr = modeltest.ErrBoom
		return f, nil
	}

	_, err = r.Load(ctx, settingsFor("iris", "1"))
	require.Error(t, err)

	got, err := r.GetModel("1")
	require.NoError(t, err)
	assert.Same(t, old, got, "a failed reload must leave the previous model in place")
	assert.True(t, old.Ready())
}

func TestSingleModelRegistry_OnLoadHookReplacesModel(t *testing.T) {
	var replacement model.Model
	hooks := Hooks{
		OnLoad: []LoadHook{
			func(_ context.Context, m model.Model) (model.Model, error) {
				replacement = modeltest.New(m.Settings())
				return replacement, nil
			},
		},
	}
	r := newTestRegistry("iris", hooks)

	m, err := r.Load(context.Background(), settingsFor("iris", "1"))
	require.NoError(t, err)
	assert.Same(t, replacement, m)

	got, err := r.GetModel("1")
	require.NoError(t, err)
	assert.Same(t, replacement, got)
}

func TestSingleModelRegistry_OnLoadHookFailureUnloadsPartial(t *testing.T) {
	hookCalled := false
	hooks := Hooks{
		OnLoad: []LoadHook{
			func(_ context.Context, m model.Model) (model.Model, error) {
				hookCalled = true
				return nil, modeltest.ErrBoom
			},
		},
	}
	r := newTestRegistry("iris", hooks)

	_, err := r.Load(context.Background(), settingsFor("iris", "1"))
	require.Error(t, err)
	assert.True(t, hookCalled)

	_, err = r.GetModel("1")
	assert.Error(t, err)
}

func TestSingleModelRegistry_ReplaceHookDispatch(t *testing.T) {
	var sawOld, sawNew model.Model
	hooks := Hooks{
		OnReload: []ReloadHook{
			ReplaceHook(func(_ context.Context, old, new model.Model) (model.Model, error) {
				sawOld, sawNew = old, new
				return new, nil
			}),
		},
	}
	r := newTestRegistry("iris", hooks)
	ctx := context.Background()

	old, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)
	newM, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)

	assert.Same(t, old, sawOld)
	assert.Same(t, newM, sawNew)
}

func TestSingleModelRegistry_InitHookDispatch(t *testing.T) {
	var invoked bool
	var replacement model.Model
	hooks := Hooks{
		OnReload: []ReloadHook{
			InitHook(func(_ context.Context, new model.Model) (model.Model, error) {
				invoked = true
				replacement = modeltest.New(new.Settings())
				return replacement, nil
			}),
		},
	}
	r := newTestRegistry("iris", hooks)
	ctx := context.Background()

	_, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)
	got, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)

	assert.True(t, invoked)
	assert.Same(t, replacement, got)
}

func TestSingleModelRegistry_UnloadNeverFails(t *testing.T) {
	hooks := Hooks{
		OnUnload: []UnloadHook{
			func(_ context.Context, _ model.Model) error {
				return modeltest.ErrBoom
			},
		},
	}
	r := newTestRegistry("iris", hooks)
	ctx := context.Background()

	m, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		r.Unload(ctx)
	})
	assert.False(t, m.Ready())
	assert.True(t, r.Empty())
}

func TestSingleModelRegistry_UnloadModelOwnErrorStillClearsState(t *testing.T) {
	fake := modeltest.New(settingsFor("iris", "1"))
	r := NewSingleModelRegistry("iris", Hooks{}, func(model.Settings) (model.Model, error) {
		return fake, nil
	})
	ctx := context.Background()

	_, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)

	fake.UnloadErr = modeltest.ErrBoom
	r.Unload(ctx)

	assert.False(t, fake.Ready())
	assert.True(t, r.Empty())
}

func TestSingleModelRegistry_UnloadVersionRemovesOnlyThatVersion(t *testing.T) {
	r := newTestRegistry("iris", Hooks{})
	ctx := context.Background()

	_, err := r.Load(ctx, settingsFor("iris", "1"))
	require.NoError(t, err)
	_, err = r.Load(ctx, settingsFor("iris", "2"))
	require.NoError(t, err)

	require.NoError(t, r.UnloadVersion(ctx, "1"))

	_, err = r.GetModel("1")
	assert.Error(t, err)

	got, err := r.GetModel("2")
	require.NoError(t, err)
	assert.Equal(t, "2", got.Version())
}

func TestSingleModelRegistry_UnloadVersionUnknown(t *testing.T) {
	r := newTestRegistry("iris", Hooks{})
	err := r.UnloadVersion(context.Background(), "9")
	var notFound *ErrModelNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestSingleModelRegistry_ConcurrentReadsDuringSlowLoad(t *testing.T) {
	blockLoad := make(chan struct{})
	hookEntered := make(chan struct{})

	hooks := Hooks{
		OnLoad: []LoadHook{
			func(_ context.Context, m model.Model) (model.Model, error) {
				close(hookEntered)
				<-blockLoad
				return m, nil
			},
		},
	}
	r := newTestRegistry("iris", hooks)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = r.Load(context.Background(), settingsFor("iris", "1"))
	}()

	<-hookEntered // Load is now blocked inside the hook, holding opMu.

	done := make(chan struct{})
	go func() {
		_ = r.GetModels()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("GetModels should not wait on opMu held by an in-flight Load")
	}

	close(blockLoad)
	wg.Wait()
}
