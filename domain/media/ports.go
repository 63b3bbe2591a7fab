package media

import "context"

// Encoder drives the external encoder process for one request. Encode blocks
// until the process finishes; on failure the returned error carries the
// encoder's own message so callers can pass it through.
type Encoder interface {
	Encode(ctx context.Context, req *ProcessingRequest) error
}

// FileChecker re-checks input existence immediately before encoding, guarding
// against paths going stale between validation and processing.
type FileChecker interface {
	Exists(path string) bool
}
