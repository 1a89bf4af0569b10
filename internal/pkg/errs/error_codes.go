/*
Package errs provides custom error types and application-level error code constants.

These error codes identify the specific failure classes the chat server can
encounter, both internally and in communication with clients.
*/
package errs

// 1xxx: Protocol Errors (recoverable; the connection stays open)
const (
	// ErrInvalidFormat indicates that an inbound frame was not parseable JSON.
	ErrInvalidFormat = 1001

	// ErrInvalidType indicates that a parsed frame carried no type discriminator.
	ErrInvalidType = 1002

	// ErrUnknownType indicates a type discriminator outside the enumerated set.
	ErrUnknownType = 1003

	// ErrFrameTooLarge indicates that an inbound frame exceeded the size limit.
	ErrFrameTooLarge = 1004
)

// 2xxx: Registry and Argument Errors
const (
	// ErrEmptyUserID indicates a registry lookup with an empty or missing user id.
	ErrEmptyUserID = 2001
)

// 3xxx: Transport and Admission Errors
const (
	// ErrRateLimitExceeded indicates that a client IP exceeded the accept-loop rate limit.
	ErrRateLimitExceeded = 3001

	// ErrTransport indicates a read or write failure on a client connection.
	ErrTransport = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
