package upload

import "fmt"

// FileInfo summarizes an accepted file.
type FileInfo struct {
	SizeBytes int64
	MediaType MediaType
	Extension string
}

// Result is the outcome of validating one uploaded file. Invalid results carry
// a human-readable reason; valid results carry the measured file info. Results
// are consumed immediately by the caller and never persisted.
type Result struct {
	Valid   bool
	Message string
	Info    *FileInfo
}

// Invalid builds a failed Result with the given reason.
func Invalid(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// Accepted builds a successful Result describing the validated file.
func Accepted(info FileInfo) Result {
	return Result{Valid: true, Info: &info}
}
