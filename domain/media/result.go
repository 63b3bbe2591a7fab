package media

import "fmt"

// ProcessingResult is the terminal outcome of one processing request. Exactly
// one result is produced per request; the processor never retries a failed
// encode, retry policy belongs to the caller.
type ProcessingResult struct {
	Success      bool
	OutputPath   string
	ErrorMessage string
}

// Succeeded builds a success result carrying the output path.
func Succeeded(outputPath string) ProcessingResult {
	return ProcessingResult{Success: true, OutputPath: outputPath}
}

// Failed builds a failure result with a formatted error message.
func Failed(format string, args ...any) ProcessingResult {
	return ProcessingResult{ErrorMessage: fmt.Sprintf(format, args...)}
}
