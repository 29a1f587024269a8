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

// Package modelctx implements the model-context scope: a scoped
// publication of the currently-active Model's settings so ambient
// facilities (logging, telemetry) can attribute work without a settings
// parameter threaded through every call.
//
// A single mutable global would corrupt concurrent infers against
// different models, so the scope rides on context.Context instead: each
// nested Enter produces a child context carrying the new settings while
// the parent context (held by the caller's stack frame) keeps the old
// one, so the outer value is restored on every exit path.
package modelctx

import (
	"context"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
)

type contextKey struct{}

// Enter returns a child context publishing settings as the active
// model-context. The parent ctx is unaffected, so once the caller's
// frame returns to using ctx instead of the child, the previous
// model-context (if any) is restored automatically.
func Enter(ctx context.Context, settings model.Settings) context.Context {
	return context.WithValue(ctx, contextKey{}, settings)
}

// Current returns the active settings and whether one was published.
func Current(ctx context.Context) (model.Settings, bool) {
	settings, ok := ctx.Value(contextKey{}).(model.Settings)
	return settings, ok
}
