// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

package auth

import "unicode/utf8"

// Minimum lengths, exclusive.
const (
	MinUsernameLength = 2
	MinPasswordLength = 8
)

// ValidateCredentials checks submitted credentials before any I/O.
// It stops at the first failing rule, checking the username first.
// Lengths are counted in runes.
func ValidateCredentials(username, password string) []FieldError {
	if utf8.RuneCountInString(username) <= MinUsernameLength {
		return []FieldError{{Field: FieldUsername, Message: MsgUsernameTooShort}}
	}
	if utf8.RuneCountInString(password) <= MinPasswordLength {
		return []FieldError{{Field: FieldPassword, Message: MsgPasswordTooShort}}
	}
	return nil
}
