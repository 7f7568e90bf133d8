package arx

import "errors"

var (
	// ErrInitFailed reports that a scoped session could not complete the
	// SDK handshake.
	ErrInitFailed = errors.New("failed to initialize arx control connection")

	// ErrConnectionBroken reports that the native session is gone for
	// good. The wrapper shuts the session down when the SDK signals this
	// condition; no further calls on the Control are valid.
	ErrConnectionBroken = errors.New("connection to arx control is broken")
)
