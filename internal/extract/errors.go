package extract

import "fmt"

// ConnectivityError means the Ollama backend could not be reached at all.
type ConnectivityError struct {
	Host string
	Err  error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot connect to ollama at %s: %v", e.Host, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// ModelNotFoundError means the backend answered but the configured model is
// not installed.
type ModelNotFoundError struct {
	Model string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("ollama model %q not found, run: ollama pull %s", e.Model, e.Model)
}

// ParseError means all response-recovery tiers failed. Preview holds the
// first 500 characters of the offending text.
type ParseError struct {
	Preview string
}

func (e *ParseError) Error() string {
	return "failed to parse task extraction response"
}

// ExtractionError is a batch-level extraction failure: an unparseable
// response or any non-connectivity failure of the LLM call.
type ExtractionError struct {
	Model   string
	Preview string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task extraction failed: %v", e.Err)
	}
	return "task extraction failed"
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
