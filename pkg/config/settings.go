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

// Package config loads the model manifests a server starts up with.
// Parsing model configuration itself is out of this module's scope
// (the registry only ever sees a model.Settings value); this package
// exists to get from a file on disk to that value, the way the
// reference binaries need to.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
)

// ServerConfig is the top-level document a modelserverd instance is
// started with: its own identity, plus the models to load at startup.
type ServerConfig struct {
	Name    string           `json:"name"`
	Version string           `json:"version"`
	Models  []model.Settings `json:"models"`
}

// Load reads and parses a ServerConfig from path.
func Load(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg ServerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
