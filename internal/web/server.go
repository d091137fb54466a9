// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package web exposes the detection pipeline over HTTP for host
// applications that prefer a service boundary to linking the library.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"piiscan/internal/config"
	"piiscan/internal/core"
	"piiscan/internal/pipeline"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DetectRequest is the body of POST /v1/detect.
type DetectRequest struct {
	Text       string `json:"text" binding:"required"`
	DocumentID string `json:"document_id"`
	Language   string `json:"language"`
}

// Server wraps a configured pipeline behind a gin router.
type Server struct {
	pipeline *pipeline.Pipeline
	engine   *gin.Engine
}

// NewServer builds the router. One pipeline instance serves all requests;
// each Process call owns its own context, so concurrent requests need no
// extra locking.
func NewServer(cfg *config.Config, mlDetector pipeline.EntityDetector) *Server {
	if !cfg.Pipeline.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		pipeline: core.BuildPipeline(core.BuildOptions{Config: cfg, MLDetector: mlDetector}),
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery())

	s.engine.GET("/health", s.health)
	s.engine.POST("/v1/detect", s.detect)
	return s
}

// Run starts the HTTP listener.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"status": "ok"}})
}

func (s *Server) detect(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   &APIError{Code: "invalid_request", Message: err.Error()},
		})
		return
	}
	switch req.Language {
	case "", "en", "fr", "de":
	default:
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   &APIError{Code: "invalid_language", Message: "language must be en, fr or de"},
		})
		return
	}

	result := s.pipeline.Process(req.Text, req.DocumentID, req.Language)
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: result})
}
