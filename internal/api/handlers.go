// Package api exposes the document parsing service over HTTP.
package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"mediscope/internal/extract"
	"mediscope/internal/logger"
	"mediscope/internal/summarize"
)

// DiagnosticsEntry reports per-file extraction results in upload mode.
type DiagnosticsEntry struct {
	// Length is the number of characters of extracted text.
	Length int `json:"length"`

	// Error is set when extraction failed for this file.
	Error string `json:"error,omitempty"`
}

// ParseResponse is the success payload of POST /parse. Extraction and
// summarization failures are surfaced through structured fields rather than
// sentinel strings inside the text; the request itself still returns 200.
type ParseResponse struct {
	Message       string                      `json:"message"`
	Diagnostics   map[string]DiagnosticsEntry `json:"diagnostics,omitempty"`
	Summary       string                      `json:"summary"`
	SummaryStatus string                      `json:"summary_status"`
	SummaryError  string                      `json:"summary_error,omitempty"`
}

// Handler wires HTTP routes to the extraction and summarization services.
type Handler struct {
	extractor  *extract.Service
	summarizer *summarize.Service
	uploadDir  string
	log        zerolog.Logger
}

// NewHandler constructs a Handler instance. uploadDir is scratch space for
// upload-mode requests; it must exist.
func NewHandler(extractor *extract.Service, summarizer *summarize.Service, uploadDir string) *Handler {
	return &Handler{
		extractor:  extractor,
		summarizer: summarizer,
		uploadDir:  uploadDir,
		log:        logger.WithComponent("api"),
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.POST("/parse", h.parse)
	router.GET("/healthz", h.healthz)
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parse accepts either a server-local file path or one or more uploaded
// files, extracts their text and returns a summary. Path mode takes
// precedence when both inputs are present.
func (h *Handler) parse(c *gin.Context) {
	runtime.GC() // reclaim OCR/PDF buffers from earlier requests

	if filePath := c.PostForm("file_path"); filePath != "" {
		h.parsePath(c, filePath)
		return
	}
	h.parseUploads(c)
}

func (h *Handler) parsePath(c *gin.Context, filePath string) {
	if _, err := os.Stat(filePath); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File not found: %s", filePath)})
		return
	}

	result := h.extractor.Extract(c.Request.Context(), filePath)
	resp := ParseResponse{Message: "Parsed (from path)"}
	if result.Status == extract.StatusFailed {
		resp.SummaryStatus = string(summarize.StatusFailed)
		resp.SummaryError = fmt.Sprintf("extraction failed: %s", result.Reason)
	} else {
		outcome := h.summarizer.Summarize(c.Request.Context(), result.Text)
		resp.Summary = outcome.Summary
		resp.SummaryStatus = string(outcome.Status)
		resp.SummaryError = outcome.Reason
	}

	runtime.GC()
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) parseUploads(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files or file_path provided"})
		return
	}
	files := form.File["files"]

	// Per-request scratch directory; removal is deferred so every saved
	// upload is cleaned up on every exit path.
	tmpDir, err := os.MkdirTemp(h.uploadDir, "parse-")
	if err != nil {
		h.log.Error().Err(err).Str("upload_dir", h.uploadDir).Msg("Failed to create scratch directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload storage unavailable"})
		return
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			h.log.Warn().Err(err).Str("dir", tmpDir).Msg("Failed to remove scratch directory")
		}
	}()

	diagnostics := make(map[string]DiagnosticsEntry, len(files))
	var combined strings.Builder

	for i, file := range files {
		name := sanitizeFilename(file.Filename, i)
		dest := filepath.Join(tmpDir, fmt.Sprintf("%d-%s", i, name))

		if err := c.SaveUploadedFile(file, dest); err != nil {
			h.log.Warn().Err(err).Str("file", name).Msg("Failed to save upload")
			diagnostics[name] = DiagnosticsEntry{Error: fmt.Sprintf("save failed: %v", err)}
			continue
		}

		result := h.extractor.Extract(c.Request.Context(), dest)

		// Delete each file as soon as it is read, before the next one is
		// processed, to keep peak disk usage at one file.
		if err := os.Remove(dest); err != nil {
			h.log.Warn().Err(err).Str("file", name).Msg("Failed to delete upload")
		}

		entry := DiagnosticsEntry{Length: utf8.RuneCountInString(result.Text)}
		if result.Status == extract.StatusFailed {
			entry.Error = result.Reason
		}
		diagnostics[name] = entry

		if result.Status == extract.StatusOK {
			fmt.Fprintf(&combined, "\n=== %s ===\n%s\n", name, result.Text)
		}
	}

	outcome := h.summarizer.Summarize(c.Request.Context(), combined.String())
	runtime.GC()

	c.JSON(http.StatusOK, ParseResponse{
		Message:       "Parsed successfully",
		Diagnostics:   diagnostics,
		Summary:       outcome.Summary,
		SummaryStatus: string(outcome.Status),
		SummaryError:  outcome.Reason,
	})
}

// sanitizeFilename strips any directory components from a client-supplied
// filename, falling back to a positional name when nothing usable remains.
func sanitizeFilename(filename string, idx int) string {
	name := filepath.Base(filepath.Clean(strings.ReplaceAll(filename, "\\", "/")))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return fmt.Sprintf("file-%d", idx)
	}
	return name
}

// corsMiddleware allows cross-origin calls from the fronting application.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
