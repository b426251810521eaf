package config

import "github.com/pkg/errors"

var (
	// ErrWebServerPortCanNotBeZero is returned if the webserver listening port is unset.
	ErrWebServerPortCanNotBeZero = errors.New("webserver port can not be zero")

	// ErrEmptyURL is returned if the webserver base URL is unset.
	ErrEmptyURL = errors.New("webserver url can not be empty")

	// ErrInvalidLoginType is returned if Auth.LoginType is not local, oauth or ldap.
	ErrInvalidLoginType = errors.New("auth login type must be local, oauth or ldap")
)
