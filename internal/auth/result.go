// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package auth

// Field names used in FieldError.
const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldUnknown  = "unknown"
)

// Messages returned to callers. The texts are part of the client contract.
const (
	MsgUsernameTooShort  = "Length must be greater than 2"
	MsgPasswordTooShort  = "Length must be greater than 6"
	MsgHashFailed        = "password hashing failed"
	MsgUsernameTaken     = "The username already exists"
	MsgUsernameNotFound  = "Username does not exists"
	MsgIncorrectPassword = "Incorrect password"
	MsgSomethingWrong    = "something went wrong"
)

// FieldError reports why a specific input was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is returned by Register and Login. It holds either a User or a
// non-empty list of errors.
type Result struct {
	User   *User        `json:"user,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Failed reports whether the operation did not happen. Any error entry
// makes the result failed, even if User is set.
func (r Result) Failed() bool {
	return len(r.Errors) > 0
}

func fail(field, message string) Result {
	return Result{Errors: []FieldError{{Field: field, Message: message}}}
}
