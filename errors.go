package evremap

import "errors"

var (
	// ErrSink is wrapped by every error caused by a failing OutputSink. Once
	// it is returned the emitted key state can no longer be trusted and the
	// host should stop.
	ErrSink = errors.New("output sink failed")

	// ErrTerminated is returned by Execute when a Terminate effect was run.
	ErrTerminated = errors.New("terminated by key binding")
)
