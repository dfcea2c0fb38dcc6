package ast

import "errors"

// ErrUnknownStatement is returned by the parser when the leading token(s)
// do not select any recognized verb. Per SPEC_FULL.md §4.2 this is not a
// hard parse failure: callers map it to an empty result set, matching
// spec.md §7's unknown-statement kind.
var ErrUnknownStatement = errors.New("unknown statement")

// ErrUnknownTransactionMode is returned by the parser when BEGIN names a
// mode keyword other than DEFERRED/IMMEDIATE/EXCLUSIVE. Per spec.md §7/§4.4
// this is a transaction-state failure, not a malformed-statement one.
var ErrUnknownTransactionMode = errors.New("unknown transaction mode")
