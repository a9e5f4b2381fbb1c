package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of a run
type ErrorKind string

const (
	ErrorKindAuthentication ErrorKind = "authentication"
	ErrorKindQueueAccess    ErrorKind = "queue_access"
	ErrorKindDownload       ErrorKind = "download"
	ErrorKindUpload         ErrorKind = "upload"
)

// Sentinels for errors.Is checks against a RunError kind
var (
	ErrAuthentication = errors.New("authentication error")
	ErrQueueAccess    = errors.New("queue access error")
	ErrDownload       = errors.New("download error")
	ErrUpload         = errors.New("upload error")
)

var kindSentinels = map[ErrorKind]error{
	ErrorKindAuthentication: ErrAuthentication,
	ErrorKindQueueAccess:    ErrQueueAccess,
	ErrorKindDownload:       ErrDownload,
	ErrorKindUpload:         ErrUpload,
}

// RunError is the typed failure returned by every external call of a run.
// Authentication and queue access errors abort the run; download and upload
// errors only skip the current row.
type RunError struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Err        error
}

func (e *RunError) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Op)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RunError) Unwrap() error { return e.Err }

// Is matches the kind sentinel, so errors.Is(err, ErrDownload) works on any
// wrapped RunError of that kind.
func (e *RunError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// Fatal reports whether the error must abort the whole run
func (e *RunError) Fatal() bool {
	return e.Kind == ErrorKindAuthentication || e.Kind == ErrorKindQueueAccess
}

func NewAuthenticationError(op string, err error) *RunError {
	return &RunError{Kind: ErrorKindAuthentication, Op: op, Err: err}
}

func NewQueueAccessError(op string, err error) *RunError {
	return &RunError{Kind: ErrorKindQueueAccess, Op: op, Err: err}
}

func NewDownloadError(op string, statusCode int, err error) *RunError {
	return &RunError{Kind: ErrorKindDownload, Op: op, StatusCode: statusCode, Err: err}
}

func NewUploadError(op string, statusCode int, err error) *RunError {
	return &RunError{Kind: ErrorKindUpload, Op: op, StatusCode: statusCode, Err: err}
}

// KindOf returns the kind of the first RunError in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Kind, true
	}
	return "", false
}
