// Package errors provides error handling for tubegrab.
//
// It re-exports github.com/cockroachdb/errors and adds the job error
// taxonomy used by the download supervisor and the tool installer:
//
//	if err := sup.Start(req); errors.Is(err, errors.ErrBusy) {
//	    // another job or the FFmpeg setup is running
//	}
//
// Remediation text for the user travels as hints (errors.WithHint) and is
// read back with errors.FlattenHints.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New         = crdb.New
	Newf        = crdb.Newf
	Wrap        = crdb.Wrap
	Wrapf       = crdb.Wrapf
	WithStack   = crdb.WithStack
	WithMessage = crdb.WithMessage
	Mark        = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is           = crdb.Is
	IsAny        = crdb.IsAny
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Sentinels of the job error taxonomy. Wrap them (or Mark foreign errors
// with them) so Is and KindOf keep working across package boundaries.
var (
	// ErrInvalidInput means caller-supplied parameters failed validation
	ErrInvalidInput = New("invalid input")

	// ErrBusy means a job or tool setup is already running
	ErrBusy = New("busy")

	// ErrCancelled is raised by a worker that observed a cancel request
	ErrCancelled = New("cancelled")

	// ErrToolMissing means a required external tool is not available
	ErrToolMissing = New("required tool missing")

	// ErrTransfer covers network-layer failures (connect, HTTP status, timeout)
	ErrTransfer = New("transfer failed")
)
