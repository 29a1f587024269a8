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

// Package app wires together the reference modelserverd binary: a
// Server struct owning the long-lived state, an HTTP listener
// goroutine, and a Run method that blocks until its context is
// cancelled and then shuts down gracefully.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/volcano-sh/kthena-modelcore/pkg/config"
	"github.com/volcano-sh/kthena-modelcore/pkg/dataplane"
	"github.com/volcano-sh/kthena-modelcore/pkg/logging"
	"github.com/volcano-sh/kthena-modelcore/pkg/middleware"
	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/model/echomodel"
	"github.com/volcano-sh/kthena-modelcore/pkg/registry"
	transporthttp "github.com/volcano-sh/kthena-modelcore/pkg/transport/http"
)

const (
	gracefulShutdownTimeout = 15 * time.Second
	jwksRefreshInterval     = 15 * time.Minute
)

var log = logging.NewLogger("modelserverd")

// Server owns the process-lifetime state: the implementation registry,
// the model registry, and the data plane built on top of it.
type Server struct {
	Port       string
	ConfigFile string
	JWKSURI    string

	impls    *model.ImplementationRegistry
	registry *registry.MultiModelRegistry
	plane    *dataplane.DataPlane
}

// NewServer constructs a Server with the echo reference implementation
// registered; it is the only implementation the Server can load, since
// impls is not exposed outside this package. When jwksURI is non-empty,
// every infer request must carry a bearer token verifiable against that
// JWKS.
func NewServer(port, configFile, jwksURI string) *Server {
	impls := model.NewImplementationRegistry()
	impls.Register(echomodel.ImplementationName, echomodel.New)

	return &Server{
		Port:       port,
		ConfigFile: configFile,
		JWKSURI:    jwksURI,
		impls:      impls,
		registry:   registry.NewMultiModelRegistry(registry.Hooks{}, impls.Initialiser()),
	}
}

// Run builds the middleware chain and data plane, loads the configured
// models, starts the HTTP listener, and blocks until ctx is cancelled,
// then drains every loaded model before returning.
func (s *Server) Run(ctx context.Context) error {
	var requestMiddlewares []middleware.RequestFunc
	if s.JWKSURI != "" {
		source, err := middleware.NewPolledJWKS(ctx, s.JWKSURI, jwksRefreshInterval)
		if err != nil {
			return err
		}
		requestMiddlewares = append(requestMiddlewares, middleware.NewJWTAuthMiddleware(source).Request)
		log.Infof("JWT authentication enabled, JWKS from %s", s.JWKSURI)
	}
	s.plane = dataplane.New(
		dataplane.ServerInfo{Name: "modelserverd", Version: "v1"},
		s.registry,
		middleware.New(requestMiddlewares, nil),
		prometheus.DefaultRegisterer,
	)

	if s.ConfigFile != "" {
		cfg, err := config.Load(s.ConfigFile)
		if err != nil {
			return err
		}
		for _, settings := range cfg.Models {
			if _, err := s.registry.Load(ctx, settings); err != nil {
				log.Errorf("failed to load model %q at startup: %v", settings.Name, err)
			}
		}
	}

	engine := transporthttp.NewEngine(s.plane, s.registry)
	server := &http.Server{
		Addr:    ":" + s.Port,
		Handler: engine.Handler(),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown failed: %v", err)
	}

	s.drain()
	log.Info("HTTP server exited")
	return nil
}

// drain unloads every model known to every name, so embedders relying on
// a Model's Unload to release external resources (GPU memory, file
// handles) see that happen before the process exits.
func (s *Server) drain() {
	models, err := s.registry.GetModels("")
	if err != nil {
		return
	}
	names := make(map[string]struct{}, len(models))
	for _, m := range models {
		names[m.Name()] = struct{}{}
	}
	for name := range names {
		if err := s.registry.Unload(context.Background(), name); err != nil {
			log.Warnf("failed to unload %q during shutdown: %v", name, err)
		}
	}
}
