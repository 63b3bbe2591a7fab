package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joeywang/vidoer/domain/media"
)

// mockCommandRunner implements CommandRunner for testing
type mockCommandRunner struct {
	lastName string
	lastArgs []string
	runOut   []byte
	runErr   error
	outErr   error
}

func (m *mockCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.lastName = name
	m.lastArgs = args
	return m.runOut, m.runErr
}

func (m *mockCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.lastName = name
	m.lastArgs = args
	if m.outErr != nil {
		return nil, m.outErr
	}
	return []byte("ffmpeg version 6.0"), nil
}

func newTestRequest(t *testing.T, opts ...media.RequestOption) *media.ProcessingRequest {
	t.Helper()
	req, err := media.NewProcessingRequest("/in/slide.png", "/in/track.mp3", "/out/video.mp4", opts...)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	return req
}

func TestEncoder_Encode_Arguments(t *testing.T) {
	runner := &mockCommandRunner{}
	encoder := NewEncoder(WithCommandRunner(runner))

	if err := encoder.Encode(context.Background(), newTestRequest(t)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if runner.lastName != "ffmpeg" {
		t.Errorf("command = %q, want %q", runner.lastName, "ffmpeg")
	}

	got := strings.Join(runner.lastArgs, " ")
	wantFragments := []string{
		"-loop 1",
		"-i /in/slide.png",
		"-i /in/track.mp3",
		"-c:v libx264",
		"-tune stillimage",
		"-c:a aac",
		"-b:a 192k",
		"-pix_fmt yuv420p",
		"-s 1920x1080",
		"-shortest",
		"-movflags +faststart",
		"-f mp4",
		"-y /out/video.mp4",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(got, fragment) {
			t.Errorf("args %q missing fragment %q", got, fragment)
		}
	}

	// The image must be looped, so -loop has to precede the image input.
	if strings.Index(got, "-loop 1") > strings.Index(got, "-i /in/slide.png") {
		t.Errorf("args %q: -loop must come before the image input", got)
	}
}

func TestEncoder_Encode_CustomSettings(t *testing.T) {
	runner := &mockCommandRunner{}
	encoder := NewEncoder(WithCommandRunner(runner), WithFFmpegPath("/opt/ffmpeg/bin/ffmpeg"))

	req := newTestRequest(t,
		media.WithResolution("1280x720"),
		media.WithVideoCodec("libx265"),
		media.WithAudioCodec("libmp3lame"),
		media.WithAudioBitrate("128k"),
	)
	if err := encoder.Encode(context.Background(), req); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if runner.lastName != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("command = %q, want custom path", runner.lastName)
	}
	got := strings.Join(runner.lastArgs, " ")
	for _, fragment := range []string{"-s 1280x720", "-c:v libx265", "-c:a libmp3lame", "-b:a 128k"} {
		if !strings.Contains(got, fragment) {
			t.Errorf("args %q missing fragment %q", got, fragment)
		}
	}
}

func TestEncoder_Encode_Failure(t *testing.T) {
	runner := &mockCommandRunner{
		runErr: errors.New("exit status 1"),
		runOut: []byte("ffmpeg version 6.0\nInput #0\n/in/slide.png: Invalid data found when processing input\n"),
	}
	encoder := NewEncoder(WithCommandRunner(runner))

	err := encoder.Encode(context.Background(), newTestRequest(t))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "ffmpeg encoding failed") {
		t.Errorf("error %q missing wrapper message", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Errorf("error %q should carry ffmpeg's final diagnostic line", err)
	}
}

func TestEncoder_Encode_FailureWithoutOutput(t *testing.T) {
	runner := &mockCommandRunner{runErr: errors.New("exit status 1")}
	encoder := NewEncoder(WithCommandRunner(runner))

	err := encoder.Encode(context.Background(), newTestRequest(t))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("error %q should wrap the exec error", err)
	}
}

func TestEncoder_VerifyInstalled(t *testing.T) {
	tests := []struct {
		name    string
		outErr  error
		wantErr bool
	}{
		{name: "available", outErr: nil, wantErr: false},
		{name: "missing binary", outErr: errors.New("executable file not found in $PATH"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockCommandRunner{outErr: tt.outErr}
			encoder := NewEncoder(WithCommandRunner(runner))

			err := encoder.VerifyInstalled(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "ffmpeg not found") {
					t.Errorf("error %q missing guidance message", err)
				}
				return
			}
			if err != nil {
				t.Errorf("VerifyInstalled() error = %v", err)
			}
			if len(runner.lastArgs) != 1 || runner.lastArgs[0] != "-version" {
				t.Errorf("VerifyInstalled() args = %v, want [-version]", runner.lastArgs)
			}
		})
	}
}
