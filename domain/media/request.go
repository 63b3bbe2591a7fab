package media

import (
	"fmt"
	"regexp"
)

// Encoding defaults applied by NewProcessingRequest.
const (
	DefaultResolution   = "1920x1080"
	DefaultAudioCodec   = "aac"
	DefaultVideoCodec   = "libx264"
	DefaultAudioBitrate = "192k"
)

// resolutionRegex matches WIDTHxHEIGHT resolution strings.
var resolutionRegex = regexp.MustCompile(`^\d+x\d+$`)

// ProcessingRequest describes one still-image-plus-audio encode into an MP4
// container. A request is built once per upload and is immutable after
// construction; overrides are applied only through NewProcessingRequest.
type ProcessingRequest struct {
	ImagePath    string
	AudioPath    string
	OutputPath   string
	Resolution   string
	AudioCodec   string
	VideoCodec   string
	AudioBitrate string
}

// RequestOption overrides one encoding default on a new request. An empty
// value leaves the default in place.
type RequestOption func(*ProcessingRequest)

// WithResolution sets the target resolution (WIDTHxHEIGHT).
func WithResolution(resolution string) RequestOption {
	return func(r *ProcessingRequest) {
		if resolution != "" {
			r.Resolution = resolution
		}
	}
}

// WithAudioCodec sets the audio codec handed to the encoder.
func WithAudioCodec(codec string) RequestOption {
	return func(r *ProcessingRequest) {
		if codec != "" {
			r.AudioCodec = codec
		}
	}
}

// WithVideoCodec sets the video codec handed to the encoder.
func WithVideoCodec(codec string) RequestOption {
	return func(r *ProcessingRequest) {
		if codec != "" {
			r.VideoCodec = codec
		}
	}
}

// WithAudioBitrate sets the audio bitrate (e.g. "192k").
func WithAudioBitrate(bitrate string) RequestOption {
	return func(r *ProcessingRequest) {
		if bitrate != "" {
			r.AudioBitrate = bitrate
		}
	}
}

// NewProcessingRequest builds a request with defaults applied and validates it.
func NewProcessingRequest(imagePath, audioPath, outputPath string, opts ...RequestOption) (*ProcessingRequest, error) {
	req := &ProcessingRequest{
		ImagePath:    imagePath,
		AudioPath:    audioPath,
		OutputPath:   outputPath,
		Resolution:   DefaultResolution,
		AudioCodec:   DefaultAudioCodec,
		VideoCodec:   DefaultVideoCodec,
		AudioBitrate: DefaultAudioBitrate,
	}

	for _, opt := range opts {
		opt(req)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// ValidResolution reports whether s is a WIDTHxHEIGHT resolution string.
func ValidResolution(s string) bool {
	return resolutionRegex.MatchString(s)
}

// Validate checks that the request is complete enough to hand to an encoder.
func (r *ProcessingRequest) Validate() error {
	if r.ImagePath == "" {
		return fmt.Errorf("image path is required")
	}
	if r.AudioPath == "" {
		return fmt.Errorf("audio path is required")
	}
	if r.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if !ValidResolution(r.Resolution) {
		return fmt.Errorf("invalid resolution %q: expected WIDTHxHEIGHT", r.Resolution)
	}
	return nil
}
