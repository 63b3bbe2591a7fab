package upload

// MediaType is the broad class the service accepts: a still image or an audio track.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeAudio MediaType = "audio"
)

// Size ceilings for received files. Validation messages state these in MiB.
const (
	MaxImageSizeBytes int64 = 10 << 20 // 10 MiB
	MaxAudioSizeBytes int64 = 50 << 20 // 50 MiB
)

// Allowed filename extensions per media type, normalized (lowercase, no dot).
// Order is preserved in validation messages.
var (
	ImageExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "webp"}
	AudioExtensions = []string{"mp3", "wav", "aac", "m4a", "flac", "ogg"}
)

// AllowedExtensions returns the accepted extensions for t.
func AllowedExtensions(t MediaType) []string {
	switch t {
	case MediaTypeImage:
		return ImageExtensions
	case MediaTypeAudio:
		return AudioExtensions
	}
	return nil
}

// ExtensionAllowed reports whether ext (normalized) is accepted for t.
func ExtensionAllowed(t MediaType, ext string) bool {
	for _, allowed := range AllowedExtensions(t) {
		if ext == allowed {
			return true
		}
	}
	return false
}

// MaxSizeBytes returns the size ceiling for t.
func MaxSizeBytes(t MediaType) int64 {
	if t == MediaTypeImage {
		return MaxImageSizeBytes
	}
	return MaxAudioSizeBytes
}

// MaxSizeMiB returns the size ceiling for t in whole MiB, for messages.
func MaxSizeMiB(t MediaType) int64 {
	return MaxSizeBytes(t) >> 20
}
