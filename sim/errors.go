package sim

import "errors"

var (
	// ErrInvalidArgument reports a non-positive sample, worker, or thread count.
	// It is returned before any work is scheduled.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDeviceUnavailable reports that no compatible accelerator exists
	// or the requested device id is out of range.
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrInternalConsistency reports that the reduced sample total differs
	// from the requested total. The run is aborted.
	ErrInternalConsistency = errors.New("internal consistency violation")

	// ErrUnitFailed reports that an execution unit did not complete.
	// No partial estimate is ever returned alongside it.
	ErrUnitFailed = errors.New("execution unit failed")

	// ErrStreamExhausted is returned by a RandomStream that cannot produce
	// another pair.
	ErrStreamExhausted = errors.New("random stream exhausted")
)
