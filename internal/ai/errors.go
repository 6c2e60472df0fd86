package ai

import "errors"

var (
	// ErrExternalService wraps failures of the completion call: transport
	// errors, timeouts and non-success responses.
	ErrExternalService = errors.New("completion service failed")
	// ErrParse marks model output that could not be turned into match results.
	ErrParse = errors.New("unparseable model output")
)
