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

// Package types defines the inference payload contract. The concrete
// runtime, transport encodings, and tensor shapes beyond this structural
// contract are external collaborators.
package types

// RequestParameters carries the per-input parameter bag. ExtendedParameters
// is where out-of-band hints such as "sla" travel.
type RequestParameters struct {
	Headers            map[string]string `json:"headers,omitempty"`
	ExtendedParameters map[string]any    `json:"extended_parameters,omitempty"`
}

// RequestInput is one element of InferenceRequest.Inputs.
type RequestInput struct {
	Name       string            `json:"name,omitempty"`
	Parameters RequestParameters `json:"parameters,omitempty"`
	Data       any               `json:"data,omitempty"`
}

// InferenceRequest is the inbound inference payload. ID is optional on
// the way in; the data plane assigns one when absent.
type InferenceRequest struct {
	ID     string         `json:"id,omitempty"`
	Inputs []RequestInput `json:"inputs"`
}

// ResponseParameters mirrors RequestParameters on the way out, so
// middlewares (e.g. CloudEvents) can annotate outbound headers.
type ResponseParameters struct {
	Headers map[string]string `json:"headers,omitempty"`
}

// ResponseOutput is one element of InferenceResponse.Outputs.
type ResponseOutput struct {
	Name string `json:"name,omitempty"`
	Data any    `json:"data,omitempty"`
}

// InferenceResponse is the outbound prediction. ID is forced to equal
// the request's ID by the data plane after Predict returns.
type InferenceResponse struct {
	ID         string             `json:"id"`
	Parameters ResponseParameters `json:"parameters,omitempty"`
	Outputs    []ResponseOutput   `json:"outputs"`
}

// SLA extracts the optional numeric SLA hint from the first input's
// extended parameters. Any absence or type mismatch yields 0.
func (r *InferenceRequest) SLA() float64 {
	if len(r.Inputs) == 0 {
		return 0
	}
	raw, ok := r.Inputs[0].Parameters.ExtendedParameters["sla"]
	if !ok {
		return 0
	}
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// ServerMetadata answers the server-level metadata probe.
type ServerMetadata struct {
	Name       string         `json:"name"`
	Version    string         `json:"version"`
	Extensions map[string]any `json:"extensions,omitempty"`
}
