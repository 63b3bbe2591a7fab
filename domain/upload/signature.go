package upload

import "bytes"

// SniffLen is the number of leading bytes needed to test every registered
// signature (WEBP and WAV require bytes 8-11).
const SniffLen = 12

// SniffMediaType classifies a file's leading bytes by signature. It returns
// false when the bytes match no registered format.
func SniffMediaType(head []byte) (MediaType, bool) {
	switch {
	case IsImageData(head):
		return MediaTypeImage, true
	case IsAudioData(head):
		return MediaTypeAudio, true
	}
	return "", false
}

// IsImageData reports whether head carries a recognized image signature
// (JPEG, PNG, GIF, BMP or WEBP).
func IsImageData(head []byte) bool {
	return isJPEG(head) || isPNG(head) || isGIF(head) || isBMP(head) || isWEBP(head)
}

// IsAudioData reports whether head carries a recognized audio signature
// (WAV, MP3 frame sync or ID3v2 tag, FLAC or OGG).
func IsAudioData(head []byte) bool {
	return isWAV(head) || isMP3(head) || isFLAC(head) || isOGG(head)
}

// HasRegisteredSignature reports whether files with the given (normalized)
// extension are expected to carry one of the signatures above. aac and m4a
// have none: raw ADTS streams and MP4 containers are not in the table, so for
// those the extension whitelist is the only format gate.
func HasRegisteredSignature(ext string) bool {
	switch ext {
	case "aac", "m4a":
		return false
	default:
		return true
	}
}

func isJPEG(b []byte) bool {
	return len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF
}

func isPNG(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0x89, 'P', 'N', 'G'})
}

func isGIF(b []byte) bool {
	return bytes.HasPrefix(b, []byte("GIF"))
}

func isBMP(b []byte) bool {
	return bytes.HasPrefix(b, []byte("BM"))
}

// WEBP and WAV share the RIFF prefix; bytes 8-11 name the actual container.
func isWEBP(b []byte) bool {
	return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WEBP"
}

func isWAV(b []byte) bool {
	return len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WAVE"
}

func isMP3(b []byte) bool {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFB {
		return true
	}
	return bytes.HasPrefix(b, []byte("ID3"))
}

func isFLAC(b []byte) bool {
	return bytes.HasPrefix(b, []byte("fLaC"))
}

func isOGG(b []byte) bool {
	return bytes.HasPrefix(b, []byte("OggS"))
}
