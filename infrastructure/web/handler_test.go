package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	appupload "github.com/joeywang/vidoer/application/upload"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}
	wavHeader = []byte{'R', 'I', 'F', 'F', 0x24, 0x08, 0x00, 0x00, 'W', 'A', 'V', 'E'}
)

// mockUploader implements Uploader for testing
type mockUploader struct {
	lastInput appupload.Input
	calls     int
	output    *appupload.Output
	err       error
}

func (m *mockUploader) Generate(ctx context.Context, in appupload.Input) (*appupload.Output, error) {
	m.calls++
	m.lastInput = in
	if m.err != nil {
		return nil, m.err
	}
	return m.output, nil
}

// mockWebStore implements Store for testing
type mockWebStore struct {
	size int64
}

func (m *mockWebStore) UniqueFilename(originalName, prefix string) string {
	if prefix != "" {
		return prefix + "_unique_" + originalName
	}
	return "unique_" + originalName
}

func (m *mockWebStore) DirectorySize(dir string) (int64, error) {
	return m.size, nil
}

// mockVerifier implements Verifier for testing
type mockVerifier struct {
	err   error
	calls int
}

func (m *mockVerifier) VerifyInstalled(ctx context.Context) error {
	m.calls++
	return m.err
}

type filePart struct {
	field    string
	filename string
	content  []byte
}

func multipartBody(t *testing.T, parts ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, p := range parts {
		fw, err := writer.CreateFormFile(p.field, p.filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", p.field, err)
		}
		if _, err := fw.Write(p.content); err != nil {
			t.Fatalf("write form file %s: %v", p.field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func newTestRouter(t *testing.T, uploader Uploader) (*gin.Engine, *Metrics) {
	t.Helper()
	return newTestRouterWithHealth(t, uploader, &mockVerifier{}, t.TempDir())
}

func newTestRouterWithHealth(t *testing.T, uploader Uploader, verifier Verifier, uploadDir string) (*gin.Engine, *Metrics) {
	t.Helper()
	metrics := NewMetrics()
	handler := NewHandler(uploader, &mockWebStore{size: 1536}, verifier, metrics, uploadDir,
		log.New(io.Discard, "", 0))
	router := NewRouter(RouterConfig{UploadDir: uploadDir}, handler, metrics)
	return router, metrics
}

func postUpload(router *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Upload_Success(t *testing.T) {
	uploader := &mockUploader{output: &appupload.Output{OutputPath: "uploads/20250101T120000_ab12cd34_output.mp4"}}
	router, _ := newTestRouter(t, uploader)

	body, contentType := multipartBody(t,
		filePart{field: "image", filename: "slide.png", content: pngHeader},
		filePart{field: "audio", filename: "track.wav", content: wavHeader},
	)
	w := postUpload(router, body, contentType)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", w.Code, w.Body.String())
	}

	var resp UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Video generated successfully!" {
		t.Errorf("message = %q, want %q", resp.Message, "Video generated successfully!")
	}
	if resp.Path == "" {
		t.Error("path is empty, want the generated video's path")
	}

	if uploader.calls != 1 {
		t.Fatalf("uploader calls = %d, want 1", uploader.calls)
	}
	if uploader.lastInput.ImageDeclaredName != "slide.png" {
		t.Errorf("ImageDeclaredName = %q, want slide.png", uploader.lastInput.ImageDeclaredName)
	}
	if uploader.lastInput.AudioDeclaredName != "track.wav" {
		t.Errorf("AudioDeclaredName = %q, want track.wav", uploader.lastInput.AudioDeclaredName)
	}
	// The saved paths carry the store's collision-free names, not the
	// client's.
	if !strings.Contains(uploader.lastInput.ImagePath, "image_unique_slide.png") {
		t.Errorf("ImagePath = %q, want the unique image name", uploader.lastInput.ImagePath)
	}
	if !strings.Contains(uploader.lastInput.AudioPath, "audio_unique_track.wav") {
		t.Errorf("AudioPath = %q, want the unique audio name", uploader.lastInput.AudioPath)
	}
}

func TestHandler_Upload_MissingFields(t *testing.T) {
	tests := []struct {
		name     string
		parts    []filePart
		wantBody string
	}{
		{
			name:     "no files at all",
			parts:    nil,
			wantBody: "No files were uploaded",
		},
		{
			name: "image only",
			parts: []filePart{
				{field: "image", filename: "slide.png", content: pngHeader},
			},
			wantBody: "Audio file is required",
		},
		{
			name: "audio only",
			parts: []filePart{
				{field: "audio", filename: "track.wav", content: wavHeader},
			},
			wantBody: "Image file is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &mockUploader{}
			router, _ := newTestRouter(t, uploader)

			body, contentType := multipartBody(t, tt.parts...)
			w := postUpload(router, body, contentType)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want substring %q", w.Body.String(), tt.wantBody)
			}
			if uploader.calls != 0 {
				t.Errorf("uploader calls = %d, want 0", uploader.calls)
			}
		})
	}
}

func TestHandler_Upload_ValidationFailure(t *testing.T) {
	uploader := &mockUploader{err: &appupload.ValidationError{
		Message: `Invalid image format: extension "txt" is not allowed (allowed: jpg, jpeg, png, gif, bmp, webp)`,
	}}
	router, _ := newTestRouter(t, uploader)

	body, contentType := multipartBody(t,
		filePart{field: "image", filename: "notes.txt", content: []byte("hello")},
		filePart{field: "audio", filename: "track.wav", content: wavHeader},
	)
	w := postUpload(router, body, contentType)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid image format") {
		t.Errorf("body = %q, want the validator's reason", w.Body.String())
	}
}

func TestHandler_Upload_EncodeFailure(t *testing.T) {
	uploader := &mockUploader{err: &appupload.ProcessingError{
		Message: "ffmpeg encoding failed: exit status 1: Invalid data found when processing input",
	}}
	router, _ := newTestRouter(t, uploader)

	body, contentType := multipartBody(t,
		filePart{field: "image", filename: "slide.png", content: pngHeader},
		filePart{field: "audio", filename: "track.wav", content: wavHeader},
	)
	w := postUpload(router, body, contentType)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ffmpeg encoding failed") {
		t.Errorf("body = %q, want the encoder error passed through", w.Body.String())
	}
}

func TestHandler_Storage(t *testing.T) {
	router, _ := newTestRouter(t, &mockUploader{})

	req := httptest.NewRequest(http.MethodGet, "/api/storage", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp StorageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SizeBytes != 1536 {
		t.Errorf("size_bytes = %d, want 1536", resp.SizeBytes)
	}
	if resp.Size != "1.5 KB" {
		t.Errorf("size = %q, want 1.5 KB", resp.Size)
	}
}

func TestHandler_Health(t *testing.T) {
	verifier := &mockVerifier{}
	router, _ := newTestRouterWithHealth(t, &mockUploader{}, verifier, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", w.Code, w.Body.String())
	}
	if verifier.calls != 1 {
		t.Errorf("verifier calls = %d, want 1", verifier.calls)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "up" || resp["encoder"] != "up" || resp["storage"] != "up" {
		t.Errorf("health report = %v, want all components up", resp)
	}
}

func TestHandler_Health_Degraded(t *testing.T) {
	tests := []struct {
		name        string
		verifierErr error
		uploadDir   func(t *testing.T) string
		wantBody    string
	}{
		{
			name:        "encoder unavailable",
			verifierErr: errors.New("ffmpeg not found or not executable"),
			uploadDir:   func(t *testing.T) string { return t.TempDir() },
			wantBody:    "ffmpeg not found",
		},
		{
			name:        "upload directory unwritable",
			verifierErr: nil,
			uploadDir: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			wantBody: `"storage":"error`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mockVerifier{err: tt.verifierErr}
			router, _ := newTestRouterWithHealth(t, &mockUploader{}, verifier, tt.uploadDir(t))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503 (body %q)", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), `"status":"down"`) {
				t.Errorf("body = %q, want overall status down", w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want substring %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	uploader := &mockUploader{output: &appupload.Output{OutputPath: "uploads/out.mp4"}}
	router, _ := newTestRouter(t, uploader)

	body, contentType := multipartBody(t,
		filePart{field: "image", filename: "slide.png", content: pngHeader},
		filePart{field: "audio", filename: "track.wav", content: wavHeader},
	)
	if w := postUpload(router, body, contentType); w.Code != http.StatusOK {
		t.Fatalf("upload status = %d, want 200", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "vidoer_uploads_total") {
		t.Error("metrics output missing vidoer_uploads_total")
	}
}
