package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

type ErrorCode string

const (
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeConflict        ErrorCode = "CONFLICT"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported    ErrorCode = "NOT_SUPPORTED"
	CodeParse           ErrorCode = "PARSE_ERROR"
	CodeIO              ErrorCode = "IO_FAILURE"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxLanguage  = "language"
	CtxRegion    = "region"
	CtxLine      = "line"
	CtxColumn    = "column"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		msg += " (" + strings.Join(parts, " ") + ")"
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// Parse reports a grammar failure in one region of a component file.
func Parse(path, region string, line, column int) error {
	return (&DomainError{
		Code:    CodeParse,
		Message: fmt.Sprintf("malformed %s", region),
	}).
		WithContext(CtxPath, path).
		WithContext(CtxRegion, region).
		WithContext(CtxLine, line).
		WithContext(CtxColumn, column)
}

// IO wraps a file-system failure with the path and the operation that hit it.
func IO(err error, path, operation string) error {
	return (&DomainError{Code: CodeIO, Message: operation + " failed", Err: err}).
		WithContext(CtxPath, path).
		WithContext(CtxOperation, operation)
}

// AddContext returns a copy of err carrying key=value. The DomainError inside
// err is left untouched, so errors shared between goroutines stay read-only.
// Foreign errors are wrapped as internal.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		clone := &DomainError{
			Code:    de.Code,
			Message: de.Message,
			Err:     de.Err,
			Context: make(map[string]interface{}, len(de.Context)+1),
		}
		for k, v := range de.Context {
			clone.Context[k] = v
		}
		clone.Context[key] = value
		return clone
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ContextValue returns a context entry of the outermost DomainError in err.
func ContextValue(err error, key string) (interface{}, bool) {
	var de *DomainError
	if !errors.As(err, &de) || de.Context == nil {
		return nil, false
	}
	v, ok := de.Context[key]
	return v, ok
}

// PathOf returns the offending file path recorded on err, if any.
func PathOf(err error) string {
	v, ok := ContextValue(err, CtxPath)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// IsNotExist reports whether err, or anything it wraps, says a file is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
