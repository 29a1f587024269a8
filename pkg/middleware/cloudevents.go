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

package middleware

import (
	"context"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/types"
)

// CloudEvents well-known header names, following the CloudEvents HTTP
// binding's "ce-" attribute naming.
const (
	ceTypeHeader   = "ce-type"
	ceSourceHeader = "ce-source"
	ceIDHeader     = "ce-id"

	defaultCEType   = "io.kthena.modelcore.inference.response"
	defaultCESource = "kthena-modelcore"
)

// CloudEventsRequestMiddleware inspects the well-known CloudEvents
// headers carried on the request, leaving them untouched; its purpose
// is to fail fast with InvalidRequest when a ce-type header is present
// but empty, which would otherwise silently propagate a malformed
// envelope downstream.
func CloudEventsRequestMiddleware(_ context.Context, req *types.InferenceRequest, _ model.Settings) error {
	if len(req.Inputs) == 0 {
		return nil
	}
	headers := req.Inputs[0].Parameters.Headers
	if headers == nil {
		return nil
	}
	if ceType, ok := headers[ceTypeHeader]; ok && ceType == "" {
		return &ErrInvalidRequest{Reason: "ce-type header present but empty"}
	}
	return nil
}

// CloudEventsResponseMiddleware annotates the outgoing response with
// CloudEvents headers identifying this server as the event source, so
// transports that bridge inference responses onto an event bus can
// forward them without re-deriving the envelope.
func CloudEventsResponseMiddleware(_ context.Context, resp *types.InferenceResponse, _ model.Settings) error {
	if resp.Parameters.Headers == nil {
		resp.Parameters.Headers = make(map[string]string)
	}
	if _, ok := resp.Parameters.Headers[ceTypeHeader]; !ok {
		resp.Parameters.Headers[ceTypeHeader] = defaultCEType
	}
	if _, ok := resp.Parameters.Headers[ceSourceHeader]; !ok {
		resp.Parameters.Headers[ceSourceHeader] = defaultCESource
	}
	resp.Parameters.Headers[ceIDHeader] = resp.ID
	return nil
}
