package speech

import (
	"fmt"
	"strings"
)

// UnsupportedFormatError reports an audio file extension outside the
// supported set. It is raised before any engine work happens.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported audio format: %s (supported: %s)",
		e.Format, strings.Join(SupportedFormats(), ", "))
}

// TranscriptionError wraps an engine-level failure with the source path.
type TranscriptionError struct {
	Path string
	Err  error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed for %s: %v", e.Path, e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}
