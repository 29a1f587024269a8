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
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/types"
)

const bearerTokenHeader = "authorization"

// JWKSSource resolves the current JWKS set, refreshed out of band.
// Rotation policy is the embedder's concern; the middleware only ever
// reads the current set.
type JWKSSource interface {
	CurrentJWKS() jwk.Set
}

// StaticJWKS is a JWKSSource that never rotates, useful for tests and
// single-key deployments.
type StaticJWKS struct {
	set jwk.Set
}

func NewStaticJWKS(set jwk.Set) *StaticJWKS { return &StaticJWKS{set: set} }

func (s *StaticJWKS) CurrentJWKS() jwk.Set { return s.set }

// PolledJWKS refreshes its key set on a fixed interval by re-fetching a
// URI.
type PolledJWKS struct {
	mu  sync.RWMutex
	set jwk.Set
}

// NewPolledJWKS fetches uri immediately and then every interval until ctx
// is cancelled.
func NewPolledJWKS(ctx context.Context, uri string, interval time.Duration) (*PolledJWKS, error) {
	set, err := jwk.Fetch(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("initial JWKS fetch from %s: %w", uri, err)
	}
	p := &PolledJWKS{set: set}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if refreshed, err := jwk.Fetch(ctx, uri); err == nil {
					p.mu.Lock()
					p.set = refreshed
					p.mu.Unlock()
				}
			}
		}
	}()

	return p, nil
}

func (p *PolledJWKS) CurrentJWKS() jwk.Set {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.set
}

// JWTAuthMiddleware is a request middleware validating a bearer token
// carried in the request headers against a JWKS.
type JWTAuthMiddleware struct {
	source JWKSSource
}

func NewJWTAuthMiddleware(source JWKSSource) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{source: source}
}

// Request is a RequestFunc validating the bearer token; it rejects with
// ErrInvalidRequest on any parse/claim failure.
func (j *JWTAuthMiddleware) Request(_ context.Context, req *types.InferenceRequest, _ model.Settings) error {
	if len(req.Inputs) == 0 {
		return &ErrInvalidRequest{Reason: "no bearer token present"}
	}
	tokenStr, ok := req.Inputs[0].Parameters.Headers[bearerTokenHeader]
	if !ok {
		return &ErrInvalidRequest{Reason: "no bearer token present"}
	}
	tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
	if tokenStr == "" {
		return &ErrInvalidRequest{Reason: "no bearer token present"}
	}

	set := j.source.CurrentJWKS()
	if set == nil {
		return &ErrInvalidRequest{Reason: "no JWKS available for token validation"}
	}

	_, err := jwt.Parse([]byte(tokenStr), jwt.WithKeySet(set, jws.WithInferAlgorithmFromKey(true)))
	if err != nil {
		return &ErrInvalidRequest{Reason: fmt.Sprintf("failed to parse jwt: %v", err)}
	}

	return nil
}
