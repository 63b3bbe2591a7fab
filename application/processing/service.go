package processing

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/joeywang/vidoer/domain/media"
)

// DirectoryEnsurer prepares the output directory before encoding starts.
type DirectoryEnsurer interface {
	EnsureDirectory(dir string) error
}

// FileRemover deletes files best-effort, used to discard partial output
// after a failed encode.
type FileRemover interface {
	RemoveFiles(paths ...string)
}

// DefaultTimeout bounds a single encode. An external encoder left without a
// deadline is a resource leak when it hangs.
const DefaultTimeout = 5 * time.Minute

// Service runs encoding requests asynchronously. Each request resolves
// exactly once with a ProcessingResult, never more, regardless of how the
// encode ends.
type Service struct {
	encoder media.Encoder
	checker media.FileChecker
	dirs    DirectoryEnsurer
	remover FileRemover
	timeout time.Duration
	logger  *log.Logger
}

// Option is a functional option for configuring Service.
type Option func(*Service)

// WithTimeout overrides the per-encode deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithLogger routes processing diagnostics to a custom logger (for tests).
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a processing service.
func NewService(encoder media.Encoder, checker media.FileChecker, dirs DirectoryEnsurer, remover FileRemover, opts ...Option) *Service {
	s := &Service{
		encoder: encoder,
		checker: checker,
		dirs:    dirs,
		remover: remover,
		timeout: DefaultTimeout,
		logger:  log.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Process encodes req and returns a channel yielding exactly one result.
// Input paths are re-checked synchronously so a file deleted after
// validation never starts a doomed encode; those failures resolve before
// Process returns. The encode itself runs on its own goroutine.
func (s *Service) Process(ctx context.Context, req *media.ProcessingRequest) <-chan media.ProcessingResult {
	done := make(chan media.ProcessingResult, 1)

	var once sync.Once
	resolve := func(result media.ProcessingResult) {
		once.Do(func() {
			done <- result
		})
	}

	if !s.checker.Exists(req.ImagePath) {
		resolve(media.Failed("Image file does not exist: %s", req.ImagePath))
		return done
	}
	if !s.checker.Exists(req.AudioPath) {
		resolve(media.Failed("Audio file does not exist: %s", req.AudioPath))
		return done
	}

	if err := s.dirs.EnsureDirectory(filepath.Dir(req.OutputPath)); err != nil {
		resolve(media.Failed("failed to prepare output directory: %v", err))
		return done
	}

	go func() {
		encodeCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			encodeCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		if err := s.encoder.Encode(encodeCtx, req); err != nil {
			s.logger.Printf("encoding %s failed: %v", req.OutputPath, err)
			// Discard whatever partial output the encoder left behind.
			s.remover.RemoveFiles(req.OutputPath)
			resolve(media.Failed("%v", err))
			return
		}

		resolve(media.Succeeded(req.OutputPath))
	}()

	return done
}
