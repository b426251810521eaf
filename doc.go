// Package main provides the entry point for GoShelf-Admin, a web-based
// manager for a self-hosted e-book library. It runs a Fiber web server with
// local, LDAP and OAuth2 (GitHub, Google, generic OIDC) authentication, and
// uses gorm for data persistence of users, provider configuration and
// OAuth identity bindings.
package main
