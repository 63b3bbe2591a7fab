package validation

import (
	"os"
	"strings"

	"github.com/joeywang/vidoer/domain/upload"
)

// Service classifies candidate upload files as acceptable images or audio
// tracks. A file must exist, sit under the size ceiling for its media type,
// carry a whitelisted extension, and have content whose magic bytes agree
// with that extension wherever a signature is registered for it.
type Service struct{}

// NewService creates a new validation service.
func NewService() *Service {
	return &Service{}
}

// ValidateImage checks path against the image rules. declaredName is the
// client-supplied filename whose extension is judged.
func (s *Service) ValidateImage(path, declaredName string) upload.Result {
	return s.validate(path, declaredName, upload.MediaTypeImage)
}

// ValidateAudio checks path against the audio rules.
func (s *Service) ValidateAudio(path, declaredName string) upload.Result {
	return s.validate(path, declaredName, upload.MediaTypeAudio)
}

func (s *Service) validate(path, declaredName string, mediaType upload.MediaType) upload.Result {
	file, err := upload.NewFile(path, declaredName)
	if err != nil {
		return upload.Invalid("File does not exist")
	}

	if file.SizeBytes > upload.MaxSizeBytes(mediaType) {
		return upload.Invalid("%s file is too large: maximum size is %d MB",
			label(mediaType), upload.MaxSizeMiB(mediaType))
	}

	if !upload.ExtensionAllowed(mediaType, file.Extension) {
		return upload.Invalid("Invalid %s format: extension %q is not allowed (allowed: %s)",
			mediaType, file.Extension, strings.Join(upload.AllowedExtensions(mediaType), ", "))
	}

	// The signature is authoritative where one is registered for the
	// extension. aac and m4a have none, so they pass on the whitelist
	// alone unless the content carries the other media type's signature.
	if upload.HasRegisteredSignature(file.Extension) {
		if !s.sniffMatches(path, mediaType) {
			return upload.Invalid("File content does not match an allowed %s format", mediaType)
		}
	} else if s.sniffMatches(path, otherType(mediaType)) {
		return upload.Invalid("File content does not match an allowed %s format", mediaType)
	}

	return upload.Accepted(upload.FileInfo{
		SizeBytes: file.SizeBytes,
		MediaType: mediaType,
		Extension: file.Extension,
	})
}

func (s *Service) sniffMatches(path string, mediaType upload.MediaType) bool {
	if mediaType == upload.MediaTypeImage {
		return s.IsImageFile(path)
	}
	return s.IsAudioFile(path)
}

// IsImageFile sniffs the leading bytes of path for a known image signature.
// It returns false, never an error, for unreadable or missing files.
func (s *Service) IsImageFile(path string) bool {
	head, ok := readHead(path)
	return ok && upload.IsImageData(head)
}

// IsAudioFile sniffs the leading bytes of path for a known audio signature.
// It returns false, never an error, for unreadable or missing files.
func (s *Service) IsAudioFile(path string) bool {
	head, ok := readHead(path)
	return ok && upload.IsAudioData(head)
}

func readHead(path string) ([]byte, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	head := make([]byte, upload.SniffLen)
	n, err := f.Read(head)
	if n == 0 && err != nil {
		return nil, false
	}
	return head[:n], true
}

func label(t upload.MediaType) string {
	if t == upload.MediaTypeImage {
		return "Image"
	}
	return "Audio"
}

func otherType(t upload.MediaType) upload.MediaType {
	if t == upload.MediaTypeImage {
		return upload.MediaTypeAudio
	}
	return upload.MediaTypeImage
}
