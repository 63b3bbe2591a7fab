//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	"github.com/joeywang/vidoer/application/processing"
	appupload "github.com/joeywang/vidoer/application/upload"
	"github.com/joeywang/vidoer/application/validation"
	"github.com/joeywang/vidoer/domain/media"
	"github.com/joeywang/vidoer/infrastructure/filesystem"
	"github.com/joeywang/vidoer/infrastructure/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockEncoder stands in for the external encoder. On success it writes a
// placeholder output file so the returned path really exists on disk.
type mockEncoder struct {
	calls       int
	shouldFail  bool
	failMessage string
}

func (m *mockEncoder) Encode(ctx context.Context, req *media.ProcessingRequest) error {
	m.calls++
	if m.shouldFail {
		return errors.New(m.failMessage)
	}
	return os.WriteFile(req.OutputPath, []byte("encoded"), 0o644)
}

func (m *mockEncoder) VerifyInstalled(ctx context.Context) error {
	return nil
}

type formFile struct {
	field    string
	filename string
	content  []byte
}

// uploadContext holds test state for upload scenarios
type uploadContext struct {
	uploadDir string
	encoder   *mockEncoder
	router    *gin.Engine
	response  *httptest.ResponseRecorder
}

// SharedUploadContext is reset before each scenario via Before hook
var SharedUploadContext *uploadContext

func getUploadContext() *uploadContext {
	return SharedUploadContext
}

func InitializeUploadScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedUploadContext = &uploadContext{
			encoder: &mockEncoder{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedUploadContext != nil && SharedUploadContext.uploadDir != "" {
			os.RemoveAll(SharedUploadContext.uploadDir)
		}
		SharedUploadContext = nil
		return c, nil
	})

	ctx.Step(`^the service is running$`, theServiceIsRunning)
	ctx.Step(`^the encoder will fail with "([^"]*)"$`, theEncoderWillFailWith)
	ctx.Step(`^I upload image "([^"]*)" and audio "([^"]*)"$`, iUploadImageAndAudio)
	ctx.Step(`^I upload image "([^"]*)" with audio content and audio "([^"]*)"$`, iUploadSpoofedImageAndAudio)
	ctx.Step(`^I upload only the image "([^"]*)"$`, iUploadOnlyTheImage)
	ctx.Step(`^I upload nothing$`, iUploadNothing)
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, theResponseShouldContain)
	ctx.Step(`^the response message should be "([^"]*)"$`, theResponseMessageShouldBe)
	ctx.Step(`^the response path should not be empty$`, theResponsePathShouldNotBeEmpty)
	ctx.Step(`^no uploaded originals should remain stored$`, noUploadedOriginalsShouldRemainStored)
}

// theServiceIsRunning wires the real services against a temp upload
// directory, with only the encoder mocked out.
func theServiceIsRunning() error {
	u := getUploadContext()

	dir, err := os.MkdirTemp("", "vidoer-features-")
	if err != nil {
		return fmt.Errorf("create upload directory: %v", err)
	}
	u.uploadDir = dir

	quiet := log.New(io.Discard, "", 0)
	store := filesystem.NewStore(filesystem.WithLogger(quiet))

	processor := processing.NewService(u.encoder, filesystem.NewChecker(), store, store,
		processing.WithLogger(quiet))
	uploads := appupload.NewService(validation.NewService(), processor, store,
		appupload.Settings{OutputDir: dir})

	metrics := web.NewMetrics()
	handler := web.NewHandler(uploads, store, u.encoder, metrics, dir, quiet)
	u.router = web.NewRouter(web.RouterConfig{UploadDir: dir}, handler, metrics)
	return nil
}

func theEncoderWillFailWith(message string) error {
	u := getUploadContext()
	u.encoder.shouldFail = true
	u.encoder.failMessage = message
	return nil
}

func iUploadImageAndAudio(imageName, audioName string) error {
	u := getUploadContext()
	return u.post(
		formFile{field: "image", filename: imageName, content: fixtureContent(imageName)},
		formFile{field: "audio", filename: audioName, content: fixtureContent(audioName)},
	)
}

func iUploadSpoofedImageAndAudio(imageName, audioName string) error {
	u := getUploadContext()
	return u.post(
		formFile{field: "image", filename: imageName, content: fixtureContent(audioName)},
		formFile{field: "audio", filename: audioName, content: fixtureContent(audioName)},
	)
}

func iUploadOnlyTheImage(imageName string) error {
	u := getUploadContext()
	return u.post(
		formFile{field: "image", filename: imageName, content: fixtureContent(imageName)},
	)
}

func iUploadNothing() error {
	u := getUploadContext()
	return u.post()
}

func theResponseStatusShouldBe(status int) error {
	u := getUploadContext()
	if u.response == nil {
		return fmt.Errorf("no request was made")
	}
	if u.response.Code != status {
		return fmt.Errorf("expected status %d, got %d with body %q",
			status, u.response.Code, u.response.Body.String())
	}
	return nil
}

func theResponseShouldContain(fragment string) error {
	u := getUploadContext()
	if !strings.Contains(u.response.Body.String(), fragment) {
		return fmt.Errorf("expected body to contain %q, got %q", fragment, u.response.Body.String())
	}
	return nil
}

func theResponseMessageShouldBe(expected string) error {
	u := getUploadContext()
	resp, err := u.decodeUploadResponse()
	if err != nil {
		return err
	}
	if resp.Message != expected {
		return fmt.Errorf("expected message %q, got %q", expected, resp.Message)
	}
	return nil
}

func theResponsePathShouldNotBeEmpty() error {
	u := getUploadContext()
	resp, err := u.decodeUploadResponse()
	if err != nil {
		return err
	}
	if resp.Path == "" {
		return fmt.Errorf("expected a generated video path, got an empty one")
	}
	if filepath.Ext(resp.Path) != ".mp4" {
		return fmt.Errorf("expected an .mp4 path, got %q", resp.Path)
	}
	if _, err := os.Stat(resp.Path); err != nil {
		return fmt.Errorf("generated video %q is not on disk: %v", resp.Path, err)
	}
	return nil
}

func noUploadedOriginalsShouldRemainStored() error {
	u := getUploadContext()
	entries, err := os.ReadDir(u.uploadDir)
	if err != nil {
		return fmt.Errorf("read upload directory: %v", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "image_") || strings.HasPrefix(name, "audio_") {
			return fmt.Errorf("original %q was not deleted", name)
		}
	}
	return nil
}

func (u *uploadContext) post(files ...formFile) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		if err != nil {
			return fmt.Errorf("create form file %s: %v", f.field, err)
		}
		if _, err := part.Write(f.content); err != nil {
			return fmt.Errorf("write form file %s: %v", f.field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	u.response = httptest.NewRecorder()
	u.router.ServeHTTP(u.response, req)
	return nil
}

func (u *uploadContext) decodeUploadResponse() (*web.UploadResponse, error) {
	var resp web.UploadResponse
	if err := json.Unmarshal(u.response.Body.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode response %q: %v", u.response.Body.String(), err)
	}
	return &resp, nil
}

// fixtureContent returns bytes whose leading signature matches the extension,
// so content sniffing sees what a real file of that type would carry.
func fixtureContent(name string) []byte {
	switch filepath.Ext(name) {
	case ".png":
		return append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, []byte("fake image body")...)
	case ".wav":
		return append([]byte("RIFF\x24\x00\x00\x00WAVE"), []byte("fmt chunk")...)
	default:
		return []byte("just some plain text, nothing binary about it")
	}
}
