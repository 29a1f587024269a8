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

import "fmt"

// ErrModelNotFound is returned when (name, version) resolution fails.
type ErrModelNotFound struct {
	Name    string
	Version string
}

func (e *ErrModelNotFound) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("model %q not found", e.Name)
	}
	return fmt.Sprintf("model %q version %q not found", e.Name, e.Version)
}

// ErrModelNotReady is returned when a model resolved but Ready() is false.
type ErrModelNotReady struct {
	Name    string
	Version string
}

func (e *ErrModelNotReady) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("model %q is not ready", e.Name)
	}
	return fmt.Sprintf("model %q version %q is not ready", e.Name, e.Version)
}

// ErrLoadFailed wraps a first-load or reload failure, caused by the
// initialiser, an onLoad or onReload hook, or the new Model's own Load
// step.
type ErrLoadFailed struct {
	Name    string
	Version string
	Cause   error
}

func (e *ErrLoadFailed) Error() string {
	return fmt.Sprintf("failed to load model %q version %q: %v", e.Name, e.Version, e.Cause)
}

func (e *ErrLoadFailed) Unwrap() error { return e.Cause }

// ErrHookFailed annotates a concurrent best-effort onUnload hook error.
// It is captured and logged, never surfaced to a registry caller.
type ErrHookFailed struct {
	Hook  string
	Cause error
}

func (e *ErrHookFailed) Error() string {
	return fmt.Sprintf("hook %q failed: %v", e.Hook, e.Cause)
}

func (e *ErrHookFailed) Unwrap() error { return e.Cause }
