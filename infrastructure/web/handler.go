package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	appupload "github.com/joeywang/vidoer/application/upload"
	"github.com/joeywang/vidoer/infrastructure/filesystem"
)

// Uploader is the application service behind POST /api/upload.
type Uploader interface {
	Generate(ctx context.Context, in appupload.Input) (*appupload.Output, error)
}

// Store is the slice of the file store the HTTP layer needs: naming for
// received files and usage reporting for the storage endpoint.
type Store interface {
	UniqueFilename(originalName, prefix string) string
	DirectorySize(dir string) (int64, error)
}

// Verifier reports whether the external encoder is ready to run.
type Verifier interface {
	VerifyInstalled(ctx context.Context) error
}

// healthCheckTimeout bounds the encoder probe so a wedged binary cannot
// stall the health endpoint.
const healthCheckTimeout = 5 * time.Second

// UploadResponse is the success body of POST /api/upload.
type UploadResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// StorageResponse is the body of GET /api/storage.
type StorageResponse struct {
	Directory string `json:"directory"`
	SizeBytes int64  `json:"size_bytes"`
	Size      string `json:"size"`
}

// Handler serves the upload API.
type Handler struct {
	uploader  Uploader
	store     Store
	verifier  Verifier
	metrics   *Metrics
	uploadDir string
	logger    *log.Logger
}

// NewHandler creates a Handler.
func NewHandler(uploader Uploader, store Store, verifier Verifier, metrics *Metrics, uploadDir string, logger *log.Logger) *Handler {
	return &Handler{
		uploader:  uploader,
		store:     store,
		verifier:  verifier,
		metrics:   metrics,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// Upload handles POST /api/upload: a multipart form with an "image" and an
// "audio" file field. Missing fields and invalid files produce 400, a failed
// encode produces 500, success produces 200 with the generated video's path.
func (h *Handler) Upload(c *gin.Context) {
	started := time.Now()

	imageHeader, imageErr := c.FormFile("image")
	audioHeader, audioErr := c.FormFile("audio")
	switch {
	case imageErr != nil && audioErr != nil:
		h.reject(c, started, "input_missing", "No files were uploaded")
		return
	case imageErr != nil:
		h.reject(c, started, "input_missing", "Image file is required")
		return
	case audioErr != nil:
		h.reject(c, started, "input_missing", "Audio file is required")
		return
	}

	imagePath := filepath.Join(h.uploadDir, h.store.UniqueFilename(imageHeader.Filename, "image"))
	audioPath := filepath.Join(h.uploadDir, h.store.UniqueFilename(audioHeader.Filename, "audio"))

	if err := c.SaveUploadedFile(imageHeader, imagePath); err != nil {
		h.fail(c, started, "error", "Failed to store the uploaded image", err)
		return
	}
	if err := c.SaveUploadedFile(audioHeader, audioPath); err != nil {
		h.fail(c, started, "error", "Failed to store the uploaded audio", err)
		return
	}

	out, err := h.uploader.Generate(c.Request.Context(), appupload.Input{
		ImagePath:         imagePath,
		ImageDeclaredName: imageHeader.Filename,
		AudioPath:         audioPath,
		AudioDeclaredName: audioHeader.Filename,
	})
	if err != nil {
		var validationErr *appupload.ValidationError
		if errors.As(err, &validationErr) {
			h.reject(c, started, "validation_failed", validationErr.Message)
			return
		}
		var processingErr *appupload.ProcessingError
		if errors.As(err, &processingErr) {
			h.fail(c, started, "encode_failed", processingErr.Message, err)
			return
		}
		h.fail(c, started, "error", "Video generation failed", err)
		return
	}

	h.metrics.ObserveUpload("success", time.Since(started))
	c.JSON(http.StatusOK, UploadResponse{
		Message: "Video generated successfully!",
		Path:    out.OutputPath,
	})
}

// Storage handles GET /api/storage, reporting how much disk the upload
// directory currently holds.
func (h *Handler) Storage(c *gin.Context) {
	size, err := h.store.DirectorySize(h.uploadDir)
	if err != nil {
		h.logger.Printf("storage report failed: %v", err)
		c.String(http.StatusInternalServerError, "Failed to measure storage")
		return
	}

	c.JSON(http.StatusOK, StorageResponse{
		Directory: h.uploadDir,
		SizeBytes: size,
		Size:      filesystem.FormatSize(size),
	})
}

// Health handles GET /health. It probes the encoder binary and the upload
// directory; either failing degrades the response to 503 so load balancers
// stop routing uploads here.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	encoderStatus := "up"
	if err := h.verifier.VerifyInstalled(ctx); err != nil {
		encoderStatus = fmt.Sprintf("error: %v", err)
	}

	storageStatus := "up"
	if err := h.probeUploadDir(); err != nil {
		storageStatus = fmt.Sprintf("error: %v", err)
	}

	status := http.StatusOK
	overall := "up"
	if encoderStatus != "up" || storageStatus != "up" {
		status = http.StatusServiceUnavailable
		overall = "down"
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"encoder": encoderStatus,
		"storage": storageStatus,
	})
}

// probeUploadDir verifies the upload directory accepts writes.
func (h *Handler) probeUploadDir() error {
	probe, err := os.CreateTemp(h.uploadDir, ".healthcheck-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func (h *Handler) reject(c *gin.Context, started time.Time, outcome, message string) {
	h.metrics.ObserveUpload(outcome, time.Since(started))
	c.String(http.StatusBadRequest, message)
}

func (h *Handler) fail(c *gin.Context, started time.Time, outcome, message string, err error) {
	h.logger.Printf("upload failed: %v", err)
	h.metrics.ObserveUpload(outcome, time.Since(started))
	c.String(http.StatusInternalServerError, message)
}
