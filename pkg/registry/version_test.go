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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volcano-sh/kthena-modelcore/pkg/model/modeltest"
)

func TestIsNewer(t *testing.T) {
	cases := []struct {
		name     string
		a, b     string
		wantSign int
	}{
		{"versionless beats versioned", "", "5", 1},
		{"versioned loses to versionless", "5", "", -1},
		{"integer comparison", "10", "2", 1},
		{"integer comparison reversed", "2", "10", -1},
		{"equal integers", "3", "3", 0},
		{"lexicographic fallback", "b", "a", 1},
		{"lexicographic equal", "a", "a", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := modeltest.New(settingsFor("m", tc.a))
			b := modeltest.New(settingsFor("m", tc.b))
			got := isNewer(a, b)
			switch {
			case tc.wantSign > 0:
				assert.Greater(t, got, 0)
			case tc.wantSign < 0:
				assert.Less(t, got, 0)
			default:
				assert.Equal(t, 0, got)
			}
		})
	}
}
