// Package common defines shared constants and sentinel errors used across
// peerchat components. Callers should use errors.Is to match these values.
package common

import "errors"

var (

	// repository specific errors
	ErrNotFound = errors.New("not found")

	// auth outcomes (recoverable, they drive the retry/register flow)
	ErrNoSuchUser  = errors.New("no user with this phone number")
	ErrBadPassword = errors.New("wrong password")

	// codec errors
	ErrUnknownMessageType = errors.New("unknown or missing message type")

	// operator input errors
	ErrInvalidChoice = errors.New("invalid choice")
)
