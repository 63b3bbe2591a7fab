package upload

// ValidationError reports an upload rejected before any encoding work, for
// a missing, oversize or wrongly-typed file. Handlers map it to a client
// error.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProcessingError reports an encode that was correctly started but failed,
// carrying the encoder's own message. Handlers map it to a server error.
type ProcessingError struct {
	Message string
}

func (e *ProcessingError) Error() string {
	return e.Message
}
