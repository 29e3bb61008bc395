package pdfsplitter

import (
	"errors"
	"fmt"
)

// Validation failures. The source is never opened when one of these is returned.
var (
	ErrSourceNotFound      = errors.New("source file does not exist")
	ErrNotPDF              = errors.New("source is not a .pdf file")
	ErrNilSource           = errors.New("source buffer is nil")
	ErrOutputFolderMissing = errors.New("output folder does not exist")
	ErrInvalidScale        = errors.New("undefined scale")
)

// ValidationError reports input that was rejected before any engine ran
type ValidationError struct {
	Op      string
	Subject string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Subject, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Stages of the pipeline an EngineError can come from
const (
	StageOpen    = "open"
	StageExtract = "extract"
	StageRender  = "render"
	StageEncode  = "encode"
)

// EngineError is a failure inside the PDF or image engines. It aborts the whole call.
type EngineError struct {
	Stage string
	Page  int // 0 when the failure is not tied to a page
	Err   error
}

func (e *EngineError) Error() string {
	if e.Page == 0 {
		return fmt.Sprintf("%s pdf: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s page %d: %v", e.Stage, e.Page, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsEngine reports whether err is (or wraps) an EngineError
func IsEngine(err error) bool {
	var e *EngineError
	return errors.As(err, &e)
}
