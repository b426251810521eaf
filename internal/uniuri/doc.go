// Package uniuri generates cryptographically secure random strings suitable
// for use as unique identifiers, e.g. OAuth2 state tokens.
package uniuri
