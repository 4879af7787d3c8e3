// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package errs defines the error kinds an evaluator or matching-engine
// operation can fail with. Every failure rolls back that single
// operation's mutations; no kind here is fatal to the core itself.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies a category of operation failure. Kind satisfies the
// error interface directly so that callers can define sentinel errors with
// `const SomeError = errs.Kind("something")`, and switch on kind identity
// with errors.Is even after the error has been wrapped with detail.
type Kind string

// Error satisfies the error interface.
func (k Kind) Error() string { return string(k) }

// The error kinds of spec.md 7. None of these is fatal to the core; each
// aborts and rolls back the single operation that raised it.
const (
	// Precondition covers issuer mismatch, wrong asset kind, insufficient
	// balance, permission not held, and size-limit violations.
	Precondition Kind = "precondition"
	// Invariant covers supply overflow, negative balance, backing-asset
	// cycles, 3-deep bitasset stacks, and symbol collisions.
	Invariant Kind = "invariant"
	// State covers an active global settlement where one is forbidden, a
	// missing price feed where one is required, or no call order existing
	// where one is required.
	State Kind = "state"
	// Overflow covers any 256-bit intermediate exceeding MaxShareSupply.
	Overflow Kind = "overflow"
	// InsufficientFeeds covers a force-settle attempted without a feed and
	// without an active settlement.
	InsufficientFeeds Kind = "insufficient feeds"
)

// detailed wraps a Kind with a specific message while preserving the
// sentinel identity for errors.Is(err, someKind).
type detailed struct {
	kind   Kind
	detail string
	cause  error
}

func (d *detailed) Error() string {
	if d.detail == "" {
		return string(d.kind)
	}
	return fmt.Sprintf("%s: %s", d.kind, d.detail)
}

func (d *detailed) Unwrap() error { return d.kind }

func (d *detailed) Cause() error {
	if d.cause != nil {
		return d.cause
	}
	return d.kind
}

// E wraps kind with a formatted detail message, retaining a stack trace via
// github.com/pkg/errors and the sentinel identity of kind for errors.Is.
func E(kind Kind, format string, args ...any) error {
	return errors.WithStack(&detailed{kind: kind, detail: fmt.Sprintf(format, args...)})
}

// Wrap attaches kind and detail to an existing error as its cause, for
// propagating an error from a lower layer (e.g. calc.ErrOverflow) while
// classifying it for the caller.
func Wrap(kind Kind, cause error, detail string) error {
	return errors.WithStack(&detailed{kind: kind, detail: detail, cause: cause})
}

// Is reports whether err was produced (directly or wrapped) from kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, kind)
}
