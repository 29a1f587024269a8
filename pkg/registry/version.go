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
	"strconv"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
)

// isNewer compares two Models for default selection: a version-less
// Model is always newer than a versioned one; otherwise integer
// versions compare numerically, and non-integer versions compare
// lexicographically. Returns a tri-state comparison (>0, 0, <0) rather
// than a bool so default recomputation can use it as a max key.
func isNewer(a, b model.Model) int {
	if a.Version() == "" {
		return 1
	}
	if b.Version() == "" {
		return -1
	}

	aInt, aErr := strconv.Atoi(a.Version())
	bInt, bErr := strconv.Atoi(b.Version())
	if aErr == nil && bErr == nil {
		return aInt - bInt
	}

	switch {
	case a.Version() > b.Version():
		return 1
	case a.Version() < b.Version():
		return -1
	default:
		return 0
	}
}
