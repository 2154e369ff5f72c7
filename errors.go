package smatch

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ErrInternal marks a heap or tree invariant violation. It is defensive:
// under correct use of MatchEngine it should never actually surface.
var ErrInternal = errors.New("smatch: internal invariant violation")

// InvalidInputError reports a malformed construction or match-call input,
// e.g. mismatched array lengths, an empty catalog, or a non-power-of-two
// nside.
type InvalidInputError struct {
	Reason string
}

func NewInvalidInputError(reason string) *InvalidInputError {
	return &InvalidInputError{Reason: reason}
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("smatch: invalid input: %s", e.Reason)
}

// InvalidCoordinateError reports a declination outside [-90, 90], or a
// HEALPix pixelization that could not resolve a pixel id for a coordinate.
type InvalidCoordinateError struct {
	Dec    float64
	Reason string
}

func NewInvalidCoordinateError(dec float64, reason string) *InvalidCoordinateError {
	return &InvalidCoordinateError{Dec: dec, Reason: reason}
}

func (e InvalidCoordinateError) Error() string {
	return fmt.Sprintf("smatch: invalid coordinate dec=%g: %s", e.Dec, e.Reason)
}

// IoError reports a failure opening, reading, or writing a match-record
// file, including a short read (fewer than three fields) in LoadMatches.
type IoError struct {
	Path  string
	cause error
}

func NewIoError(path string, cause error) *IoError {
	return &IoError{Path: path, cause: cause}
}

func (e IoError) Error() string {
	return fmt.Sprintf("smatch: io error on %q: %v", e.Path, e.cause)
}

func (e IoError) Unwrap() error {
	return e.cause
}

// wrapf mirrors grailbio-bio's encoding packages' use of github.com/pkg/errors
// to attach context to a failure while preserving the original error for
// errors.Is/errors.As.
func wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}
