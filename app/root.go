// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/config"
)

var (
	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "go-shelf-admin",
		Short: "GoShelf-Admin is a web-based manager for a self-hosted e-book library",
		Long: `GoShelf-Admin is a web-based manager for a self-hosted e-book library
that provides an easy-to-use interface for managing books, users, and
third-party login providers (GitHub, Google, generic OAuth2/OIDC).`,
		Args: cobra.OnlyValidArgs,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
