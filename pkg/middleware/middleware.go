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

// Package middleware implements the inference middleware chain: ordered
// request-side and response-side functions that may mutate the payload,
// composed around the data plane's hot path.
package middleware

import (
	"context"
	"fmt"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/types"
)

// ErrInvalidRequest is returned by a middleware that rejects a request;
// the data plane surfaces it unchanged to the caller.
type ErrInvalidRequest struct {
	Reason string
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// RequestFunc mutates/validates an inbound request. Settings is the
// resolved Model's settings, available without threading it through
// every call (also published via modelctx for the duration of Predict).
type RequestFunc func(ctx context.Context, req *types.InferenceRequest, settings model.Settings) error

// ResponseFunc mutates/annotates an outbound response.
type ResponseFunc func(ctx context.Context, resp *types.InferenceResponse, settings model.Settings) error

// Chain is an ordered pair of request-side and response-side
// middlewares. A failing middleware aborts the remainder of its chain.
type Chain struct {
	Request  []RequestFunc
	Response []ResponseFunc
}

// New builds a Chain with the CloudEvents middlewares installed
// first, followed by any additional embedder-supplied middlewares in
// declared order.
func New(additionalRequest []RequestFunc, additionalResponse []ResponseFunc) Chain {
	c := Chain{
		Request:  append([]RequestFunc{CloudEventsRequestMiddleware}, additionalRequest...),
		Response: append([]ResponseFunc{CloudEventsResponseMiddleware}, additionalResponse...),
	}
	return c
}

// RunRequest applies every request middleware in order, aborting on the
// first error.
func (c Chain) RunRequest(ctx context.Context, req *types.InferenceRequest, settings model.Settings) error {
	for _, mw := range c.Request {
		if err := mw(ctx, req, settings); err != nil {
			return err
		}
	}
	return nil
}

// RunResponse applies every response middleware in order, aborting on
// the first error.
func (c Chain) RunResponse(ctx context.Context, resp *types.InferenceResponse, settings model.Settings) error {
	for _, mw := range c.Response {
		if err := mw(ctx, resp, settings); err != nil {
			return err
		}
	}
	return nil
}
