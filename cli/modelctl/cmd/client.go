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

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

func postJSON(path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	resp, err := httpClient.Post(serverAddr+path, "application/json", &buf)
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", serverAddr, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("modelserverd responded %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

func getJSON(path string) ([]byte, error) {
	resp, err := httpClient.Get(serverAddr + path)
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", serverAddr, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("modelserverd responded %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

// loadRequest is the body posted to the repository load endpoint.
type loadRequest = model.Settings
