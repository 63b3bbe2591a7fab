package ffmpeg

import (
	"context"
	"fmt"
	"strings"

	"github.com/joeywang/vidoer/domain/media"
)

// Encoder implements media.Encoder using ffmpeg. It renders a still image
// plus an audio track into an MP4 whose duration follows the audio.
type Encoder struct {
	ffmpegPath string
	runner     CommandRunner
}

// EncoderOption is a functional option for configuring Encoder
type EncoderOption func(*Encoder)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) EncoderOption {
	return func(e *Encoder) {
		e.ffmpegPath = path
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) EncoderOption {
	return func(e *Encoder) {
		e.runner = runner
	}
}

// NewEncoder creates a new FFmpeg-based encoder
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Encode implements media.Encoder
func (e *Encoder) Encode(ctx context.Context, req *media.ProcessingRequest) error {
	args := []string{
		"-loop", "1", // Repeat the single image for the whole track
		"-i", req.ImagePath,
		"-i", req.AudioPath,
		"-c:v", req.VideoCodec,
		"-tune", "stillimage",
		"-c:a", req.AudioCodec,
		"-b:a", req.AudioBitrate,
		"-pix_fmt", "yuv420p",
		"-s", req.Resolution,
		"-shortest", // Stop when the audio stream ends
		"-movflags", "+faststart",
		"-f", "mp4",
		"-y", // Overwrite output file if it exists
		req.OutputPath,
	}

	out, err := e.runner.Run(ctx, e.ffmpegPath, args...)
	if err != nil {
		if detail := lastLine(out); detail != "" {
			return fmt.Errorf("ffmpeg encoding failed: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg encoding failed: %w", err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (e *Encoder) VerifyInstalled(ctx context.Context) error {
	_, err := e.runner.Output(ctx, e.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// lastLine returns the final non-empty line of ffmpeg's output, which is
// where ffmpeg states what actually went wrong.
func lastLine(out []byte) string {
	lines := strings.Split(string(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// Ensure Encoder implements media.Encoder
var _ media.Encoder = (*Encoder)(nil)
