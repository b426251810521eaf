package auth

import "errors"

var (
	// ErrLoginFailed is returned when a login attempt fails at the persistence
	// step. The transaction is rolled back and the user has to retry.
	ErrLoginFailed = errors.New("login failed")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database or directory.
	ErrUserNotFound = errors.New("user not found")

	// ErrMultipleUsersFound is returned when a query expected one user but found multiple.
	// This typically indicates a misconfigured LDAP filter or duplicate entries.
	ErrMultipleUsersFound = errors.New("multiple users found")

	// ErrNoStableID is returned when a provider's userinfo response carries
	// none of the claims usable as a stable user identifier.
	ErrNoStableID = errors.New("userinfo response contains no stable user id")

	// ErrUserinfoFailed is returned when the provider's userinfo endpoint
	// could not be queried or returned a non-success status.
	ErrUserinfoFailed = errors.New("failed to fetch userinfo from provider")
)
