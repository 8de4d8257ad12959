package bfstark

import "github.com/vybium/bfstark/internal/bfstark/bferr"

// ErrorKind classifies why a proof was rejected or a request was
// malformed.
type ErrorKind = bferr.Kind

const (
	ErrUnknown           = bferr.KindUnknown
	ErrMalformedProof    = bferr.KindMalformedProof
	ErrMerkleFailure     = bferr.KindMerkleFailure
	ErrFriRejection      = bferr.KindFriRejection
	ErrAlgebraicMismatch = bferr.KindAlgebraicMismatch
	ErrConfigError       = bferr.KindConfigError
)

// Error is the typed error every exported function in this package
// returns. Use errors.As to recover the Kind of a failure.
type Error = bferr.Error
