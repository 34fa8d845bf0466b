package semantics

import "errors"

// Fatal conditions. Any of these aborts the whole call: no partial warnings,
// payments, or state changes are surfaced alongside them.
var (
	// ErrAmbiguousTimeInterval reports an environment interval that straddles
	// a When timeout, making the timeout decision undecidable.
	ErrAmbiguousTimeInterval = errors.New("ambiguous time interval straddles a timeout")

	// ErrNoMatch reports an input that matched no case of the waiting When.
	ErrNoMatch = errors.New("input does not match any case")

	// ErrHashMismatch reports a merkleized case whose disclosed continuation
	// does not hash to the recorded continuation hash. Accepting it would let
	// a caller substitute arbitrary code.
	ErrHashMismatch = errors.New("disclosed continuation does not match recorded hash")

	// ErrMissingContinuation reports a merkleized case matched by an input
	// that carries no disclosure. A variant of ErrHashMismatch for callers
	// that want to distinguish "forgot to disclose" from "disclosed wrong".
	ErrMissingContinuation = errors.New("merkleized case matched but no continuation disclosed")

	// ErrMalformedCall reports ApplyInput invoked on a contract that is not a
	// quiescent When. This is a caller contract violation.
	ErrMalformedCall = errors.New("apply requires a quiescent When contract")

	// ErrInvalidInterval reports a transaction interval with from > to.
	ErrInvalidInterval = errors.New("invalid time interval")

	// ErrIntervalInPast reports a transaction interval that ends before the
	// state's monotonic minimum time.
	ErrIntervalInPast = errors.New("time interval in the past")

	// ErrUselessTransaction reports a transaction that neither reduced the
	// contract nor applied any input.
	ErrUselessTransaction = errors.New("transaction has no effect")

	// ErrTooManySteps reports that reduction exceeded its defensive step
	// bound. Well-formed contracts never hit this; it guards callers against
	// pathological inputs.
	ErrTooManySteps = errors.New("reduction exceeded step bound")
)
