// Package server exposes the fill pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/docgen/internal/filler"
	"github.com/rezonia/docgen/internal/llm"
	"github.com/rezonia/docgen/internal/model"
	"github.com/rezonia/docgen/internal/storage"
)

// Config holds server configuration
type Config struct {
	Address      string
	APIKey       string
	LLMBaseURL   string
	LLMModel     string
	StorageRoot  string
	PublicPrefix string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	FillTimeout  time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config *Config
	router *gin.Engine
	store  *storage.Store
	filler *filler.Filler
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	store := storage.New(config.StorageRoot,
		storage.WithPublicPrefix(config.PublicPrefix))

	var fillerOpts []filler.Option
	if config.APIKey != "" {
		var clientOpts []llm.ClientOption
		if config.LLMBaseURL != "" {
			clientOpts = append(clientOpts, llm.WithBaseURL(config.LLMBaseURL))
		}
		if config.LLMModel != "" {
			clientOpts = append(clientOpts, llm.WithDefaultModel(config.LLMModel))
		}
		fillerOpts = append(fillerOpts, filler.WithCompleter(llm.NewClient(config.APIKey, clientOpts...)))
	}

	s := &Server{
		config: config,
		router: router,
		store:  store,
		filler: filler.New(store, fillerOpts...),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/fill", s.handleFill)
		v1.POST("/placeholders", s.handlePlaceholders)
		v1.GET("/documents/:name", s.handleDownload)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "docgen",
	})
}

// handleFill accepts a multipart template upload plus a JSON data field and
// returns the generated document's URL and fill metrics.
func (s *Server) handleFill(c *gin.Context) {
	templatePath, cleanup, ok := s.receiveTemplate(c)
	if !ok {
		return
	}
	defer cleanup()

	data := model.CollectedData{}
	if raw := c.PostForm("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid data field",
				Details: err.Error(),
			})
			return
		}
	}

	timeout := s.config.FillTimeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	result, err := s.filler.Fill(ctx, templatePath, data)
	if err != nil {
		status := http.StatusInternalServerError
		var notFound *model.TemplateNotFoundError
		if errors.As(err, &notFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{
			Error:   "document generation failed",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, FillResponse{
		Document: s.store.PublicURL(result.OutputPath),
		Result:   result,
	})
}

// handlePlaceholders accepts a multipart template upload and lists its
// placeholder tokens.
func (s *Server) handlePlaceholders(c *gin.Context) {
	templatePath, cleanup, ok := s.receiveTemplate(c)
	if !ok {
		return
	}
	defer cleanup()

	phs, err := s.filler.ListPlaceholders(templatePath)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "template inspection failed",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, PlaceholdersResponse{
		Placeholders: phs,
		Count:        len(phs),
	})
}

// handleDownload serves a generated document by file name.
func (s *Server) handleDownload(c *gin.Context) {
	name := filepath.Base(c.Param("name"))
	path := filepath.Join(s.config.StorageRoot, "generated", name)

	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "document not found"})
		return
	}

	c.FileAttachment(path, name)
}

// receiveTemplate extracts the uploaded template into a temp file. The bool
// result is false when the request was already answered with an error.
func (s *Server) receiveTemplate(c *gin.Context) (string, func(), bool) {
	file, err := c.FormFile("template")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing template file",
			Details: err.Error(),
		})
		return "", nil, false
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unreadable template upload",
			Details: err.Error(),
		})
		return "", nil, false
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "docgen-upload-*.docx")
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "temporary storage failed",
			Details: err.Error(),
		})
		return "", nil, false
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		cleanup()
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "template upload failed",
			Details: err.Error(),
		})
		return "", nil, false
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "template upload failed",
			Details: err.Error(),
		})
		return "", nil, false
	}

	return tmpPath, cleanup, true
}
