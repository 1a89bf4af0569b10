/*
Package randx provides functions for generating unique identifiers.

It is primarily used to assign connection ids for log correlation across the
lifetime of a client connection.
*/
package randx

import "github.com/google/uuid"

// ConnID generates a standard UUID v4 string to serve as a unique identifier
// for a client connection.
func ConnID() string {
	return uuid.New().String()
}
