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

// Package http is the REST transport over a dataplane.DataPlane. It
// owns no dispatch logic of its own: every route is a thin adapter from
// an HTTP request/response onto a DataPlane or registry call.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/volcano-sh/kthena-modelcore/pkg/dataplane"
	"github.com/volcano-sh/kthena-modelcore/pkg/logging"
	"github.com/volcano-sh/kthena-modelcore/pkg/middleware"
	"github.com/volcano-sh/kthena-modelcore/pkg/model"
	"github.com/volcano-sh/kthena-modelcore/pkg/registry"
	"github.com/volcano-sh/kthena-modelcore/pkg/types"
)

var log = logging.NewLogger("transport-http")

// NewEngine builds the gin.Engine exposing dp and reg: release mode, a
// logger/recovery middleware pair, then the routes themselves.
func NewEngine(dp *dataplane.DataPlane, reg *registry.MultiModelRegistry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/healthz", "/readyz"), gin.Recovery())

	engine.GET("/healthz", handleLive(dp))
	engine.GET("/readyz", handleReady(dp))
	engine.GET("/v2/models/:name/versions/:version/ready", handleModelReady(dp))
	engine.GET("/v2/models/:name/ready", handleModelReady(dp))
	engine.GET("/v2", handleServerMetadata(dp))
	engine.GET("/v2/models/:name/versions/:version", handleModelMetadata(dp))
	engine.GET("/v2/models/:name", handleModelMetadata(dp))

	engine.POST("/v2/models/:name/versions/:version/infer", handleInfer(dp))
	engine.POST("/v2/models/:name/infer", handleInfer(dp))

	engine.POST("/v2/repository/models/:name/load", handleLoad(reg))
	engine.POST("/v2/repository/models/:name/unload", handleUnload(reg))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return engine
}

func handleLive(dp *dataplane.DataPlane) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"live": dp.Live(c.Request.Context())})
	}
}

func handleReady(dp *dataplane.DataPlane) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dp.Ready(c.Request.Context()) {
			c.JSON(http.StatusOK, gin.H{"ready": true})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
	}
}

func handleModelReady(dp *dataplane.DataPlane) gin.HandlerFunc {
	return func(c *gin.Context) {
		ready, err := dp.ModelReady(c.Request.Context(), c.Param("name"), c.Param("version"))
		if err != nil {
			writeError(c, err)
			return
		}
		if ready {
			c.JSON(http.StatusOK, gin.H{"ready": true})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
	}
}

func handleServerMetadata(dp *dataplane.DataPlane) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dp.Metadata(c.Request.Context()))
	}
}

func handleModelMetadata(dp *dataplane.DataPlane) gin.HandlerFunc {
	return func(c *gin.Context) {
		md, err := dp.ModelMetadata(c.Request.Context(), c.Param("name"), c.Param("version"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, md)
	}
}

func handleInfer(dp *dataplane.DataPlane) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.InferenceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp, err := dp.Infer(c.Request.Context(), &req, c.Param("name"), c.Param("version"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func handleLoad(reg *registry.MultiModelRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var settings model.Settings
		if err := c.ShouldBindJSON(&settings); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		settings.Name = c.Param("name")

		if _, err := reg.Load(c.Request.Context(), settings); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"loaded": true})
	}
}

func handleUnload(reg *registry.MultiModelRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		version := c.Query("version")

		var err error
		if version == "" {
			err = reg.Unload(c.Request.Context(), name)
		} else {
			err = reg.UnloadVersion(c.Request.Context(), name, version)
		}
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unloaded": true})
	}
}

func writeError(c *gin.Context, err error) {
	var notFound *registry.ErrModelNotFound
	var notReady *registry.ErrModelNotReady
	var invalid *middleware.ErrInvalidRequest
	var loadFailed *registry.ErrLoadFailed

	switch {
	case errors.As(err, &notFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &notReady):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &invalid):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &loadFailed):
		log.Warnf("load failed: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
