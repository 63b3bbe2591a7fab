package upload

import (
	"context"
	"path/filepath"

	"github.com/joeywang/vidoer/domain/media"
	"github.com/joeywang/vidoer/domain/upload"
)

// Validator classifies saved upload files as acceptable images or audio.
type Validator interface {
	ValidateImage(path, declaredName string) upload.Result
	ValidateAudio(path, declaredName string) upload.Result
}

// Processor encodes a validated image and audio pair into a video.
type Processor interface {
	Process(ctx context.Context, req *media.ProcessingRequest) <-chan media.ProcessingResult
}

// Store names output files and deletes originals once they are settled.
type Store interface {
	UniqueFilename(originalName, prefix string) string
	RemoveFiles(paths ...string)
}

// Settings carries the encode parameters applied to every upload. Empty
// fields fall back to the request defaults.
type Settings struct {
	OutputDir    string
	Resolution   string
	VideoCodec   string
	AudioCodec   string
	AudioBitrate string
}

// Input describes one received upload: where the multipart files were
// written and the filenames the client declared for them.
type Input struct {
	ImagePath         string
	ImageDeclaredName string
	AudioPath         string
	AudioDeclaredName string
}

// Output reports a generated video.
type Output struct {
	OutputPath string
}

// Service turns a pair of received files into a video: validate both, encode
// them, then settle the originals. A request either fully succeeds or fails
// at exactly one stage.
type Service struct {
	validator Validator
	processor Processor
	store     Store
	settings  Settings
}

// NewService creates an upload service.
func NewService(validator Validator, processor Processor, store Store, settings Settings) *Service {
	return &Service{
		validator: validator,
		processor: processor,
		store:     store,
		settings:  settings,
	}
}

// Generate runs one upload through validation and encoding. Validation
// failures delete both originals and return a ValidationError. Encode
// failures keep the originals for the age-based purge to reclaim and return
// a ProcessingError. On success the originals are deleted and the generated
// video's path is returned.
func (s *Service) Generate(ctx context.Context, in Input) (*Output, error) {
	if result := s.validator.ValidateImage(in.ImagePath, in.ImageDeclaredName); !result.Valid {
		s.store.RemoveFiles(in.ImagePath, in.AudioPath)
		return nil, &ValidationError{Message: result.Message}
	}
	if result := s.validator.ValidateAudio(in.AudioPath, in.AudioDeclaredName); !result.Valid {
		s.store.RemoveFiles(in.ImagePath, in.AudioPath)
		return nil, &ValidationError{Message: result.Message}
	}

	outputPath := filepath.Join(s.settings.OutputDir, s.store.UniqueFilename("output.mp4", ""))

	req, err := media.NewProcessingRequest(in.ImagePath, in.AudioPath, outputPath,
		media.WithResolution(s.settings.Resolution),
		media.WithVideoCodec(s.settings.VideoCodec),
		media.WithAudioCodec(s.settings.AudioCodec),
		media.WithAudioBitrate(s.settings.AudioBitrate),
	)
	if err != nil {
		s.store.RemoveFiles(in.ImagePath, in.AudioPath)
		return nil, &ProcessingError{Message: err.Error()}
	}

	result := <-s.processor.Process(ctx, req)
	if !result.Success {
		return nil, &ProcessingError{Message: result.ErrorMessage}
	}

	s.store.RemoveFiles(in.ImagePath, in.AudioPath)

	return &Output{OutputPath: result.OutputPath}, nil
}
