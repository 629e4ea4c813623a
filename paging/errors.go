package paging

import (
	"errors"
	"fmt"

	"github.com/ncobase/cursorpage/ecode"
)

// Error categories. Use errors.Is to classify an error returned by this
// package; the underlying cause (e.g. a driver error) is matched as well.
var (
	ErrConfiguration = errors.New(ecode.Text(ecode.PagingConfiguration))
	ErrPointerDecode = errors.New(ecode.Text(ecode.PagingPointer))
	ErrStoreQuery    = errors.New(ecode.Text(ecode.PagingStoreQuery))
)

// Error is returned by every failing operation of this package.
type Error struct {
	Code int    // ecode value
	Op   string // operation that failed, e.g. "fetch"
	Err  error  // cause

	kind error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("paging: %s: %v", e.Op, e.kind)
	}
	return fmt.Sprintf("paging: %s: %v: %v", e.Op, e.kind, e.Err)
}

// Unwrap exposes both the category sentinel and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.Err}
}

func configError(op, format string, args ...any) error {
	return &Error{
		Code: ecode.PagingConfiguration,
		Op:   op,
		Err:  fmt.Errorf(format, args...),
		kind: ErrConfiguration,
	}
}

func pointerError(op string, err error) error {
	return &Error{Code: ecode.PagingPointer, Op: op, Err: err, kind: ErrPointerDecode}
}

func storeError(op string, err error) error {
	return &Error{Code: ecode.PagingStoreQuery, Op: op, Err: err, kind: ErrStoreQuery}
}

// Code returns the ecode carried by err, or ecode.ServerErr when err did not
// come from this package.
func Code(err error) int {
	if err == nil {
		return ecode.OK
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ecode.ServerErr
}

var errNilCursor = errors.New("store returned no cursor")
