package errs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies a failure so callers can branch on it and the CLI can map it
// to an exit code.
type Kind string

const (
	KindUnknown        Kind = "unknown"
	KindConfig         Kind = "config"
	KindAuth           Kind = "auth"
	KindTransport      Kind = "transport"
	KindPollTimeout    Kind = "poll_timeout"
	KindExportFailed   Kind = "export_failed"
	KindParse          Kind = "parse"
	KindSchemaMismatch Kind = "schema_mismatch"
	KindIO             Kind = "io"
)

// Error codes, grouped by hundreds the same way the exit codes are.
const (
	CodeConfig         = "TWX-2001"
	CodeAuth           = "TWX-3001"
	CodeTransport      = "TWX-4001"
	CodePollTimeout    = "TWX-5001"
	CodeExportFailed   = "TWX-6001"
	CodeParse          = "TWX-7001"
	CodeSchemaMismatch = "TWX-8001"
	CodeIO             = "TWX-9001"
	CodeUnknown        = "TWX-1001"
)

// Sentinels for errors.Is matching on kind alone.
var (
	ErrConfig         = &Error{Kind: KindConfig}
	ErrAuth           = &Error{Kind: KindAuth}
	ErrTransport      = &Error{Kind: KindTransport}
	ErrPollTimeout    = &Error{Kind: KindPollTimeout}
	ErrExportFailed   = &Error{Kind: KindExportFailed}
	ErrParse          = &Error{Kind: KindParse}
	ErrSchemaMismatch = &Error{Kind: KindSchemaMismatch}
	ErrIO             = &Error{Kind: KindIO}
)

// Error is a typed failure with the operation that produced it.
type Error struct {
	Kind          Kind
	Code          string
	Op            string
	Err           error
	CorrelationID string
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so errors.Is(err, errs.ErrAuth) works for any auth failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an error of kind k for operation op with a formatted message.
func New(k Kind, op, format string, args ...any) *Error {
	return newError(k, op, fmt.Errorf(format, args...))
}

// Wrap attaches a kind to err. A nil err yields nil.
func Wrap(k Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return newError(k, op, err)
}

func newError(k Kind, op string, err error) *Error {
	return &Error{
		Kind:          k,
		Code:          codeFor(k),
		Op:            op,
		Err:           err,
		CorrelationID: uuid.New().String(),
	}
}

// KindOf returns the outermost kind in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindConfig:
		return 2
	case KindAuth:
		return 3
	case KindTransport:
		return 4
	case KindPollTimeout:
		return 5
	case KindExportFailed:
		return 6
	case KindParse:
		return 7
	case KindSchemaMismatch:
		return 8
	case KindIO:
		return 9
	}
	return 1
}

func codeFor(k Kind) string {
	switch k {
	case KindConfig:
		return CodeConfig
	case KindAuth:
		return CodeAuth
	case KindTransport:
		return CodeTransport
	case KindPollTimeout:
		return CodePollTimeout
	case KindExportFailed:
		return CodeExportFailed
	case KindParse:
		return CodeParse
	case KindSchemaMismatch:
		return CodeSchemaMismatch
	case KindIO:
		return CodeIO
	}
	return CodeUnknown
}
