/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize wire replies and internal error handling.
*/
package errs

// errorMap stores the detailed CustomError struct corresponding to every application
// error code. The key is the error code (int); the Reply field, where present, is
// the exact status string written back to the offending client.
var errorMap = map[int]CustomError{
	// 1xxx: Protocol Errors
	ErrInvalidFormat: {Code: ErrInvalidFormat, Message: "Inbound frame is not valid JSON.", Reply: "Invalid message format"},
	ErrInvalidType:   {Code: ErrInvalidType, Message: "Inbound frame carries no message type.", Reply: "Invalid message type"},
	ErrUnknownType:   {Code: ErrUnknownType, Message: "Inbound frame carries an unknown message type.", Reply: "Unknown message type"},
	ErrFrameTooLarge: {Code: ErrFrameTooLarge, Message: "Inbound frame exceeds the maximum frame size.", Reply: "Invalid message format"},

	// 2xxx: Registry and Argument Errors
	ErrEmptyUserID: {Code: ErrEmptyUserID, Message: "User id must not be empty."},

	// 3xxx: Transport and Admission Errors
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Connection rate limit exceeded."},
	ErrTransport:         {Code: ErrTransport, Message: "Transport read/write failure."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again."},
}
