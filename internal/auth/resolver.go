package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/oauthtoken"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/user"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

// Outcome is the terminal state of one resolver run.
type Outcome int

const (
	// OutcomeLoggedIn means the identity was already bound and its account is
	// logged in.
	OutcomeLoggedIn Outcome = iota
	// OutcomeLinked means the identity was bound to the already authenticated
	// session's account.
	OutcomeLinked
	// OutcomePromptLogin means the identity is unbound and the user has to
	// authenticate locally first to bind it.
	OutcomePromptLogin
	// OutcomeRegistered means a new local account was auto-provisioned for
	// the identity and logged in.
	OutcomeRegistered
)

// Result is what a resolver run decided. User is nil for OutcomePromptLogin.
type Result struct {
	// Outcome is the terminal state of the run.
	Outcome Outcome
	// User is the account to log in or that was linked, nil when the caller
	// has to prompt for a local login.
	User *models.User
}

// Resolve decides what a confirmed provider identity means for the local
// account database: log in the bound account, bind to the authenticated
// session, auto-provision (generic provider), or prompt for a local login.
// The token is stored in every case so a later decision finds it.
//
// The whole read-decide-write sequence runs as one transaction. A
// persistence failure rolls everything back and surfaces ErrLoginFailed, so
// no half-written binding survives a failed login attempt.
func Resolve(db *gorm.DB, bp *Blueprint, ident *Identity, token []byte, current *models.User) (*Result, error) {
	var result *Result

	err := db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = resolve(tx, bp, ident, token, current)

		return txErr
	})
	if err != nil {
		if errors.Is(err, ErrUserAccountDisabled) {
			return nil, err
		}

		log.Error().Err(err).Str("provider", bp.Provider.Name).
			Msg("identity resolution failed, rolled back")

		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	return result, nil
}

func resolve(tx *gorm.DB, bp *Blueprint, ident *Identity, token []byte, current *models.User) (*Result, error) {
	identity, err := oauthtoken.Upsert(tx, bp.Provider.ID, ident.ID, token)
	if err != nil {
		return nil, err
	}

	if identity.Bound() {
		bound, err := user.GetByID(tx, *identity.UserID)
		if err != nil {
			return nil, err
		}
		if !bound.Active {
			return nil, ErrUserAccountDisabled
		}

		return &Result{Outcome: OutcomeLoggedIn, User: bound}, nil
	}

	if current != nil {
		if err := oauthtoken.Bind(tx, identity.ID, current.ID); err != nil {
			return nil, err
		}

		return &Result{Outcome: OutcomeLinked, User: current}, nil
	}

	if !bp.AutoProvision {
		return &Result{Outcome: OutcomePromptLogin}, nil
	}

	return provision(tx, bp, ident, identity)
}

// provision binds the identity to the local account matching the claimed
// username, creating the account when none exists.
func provision(tx *gorm.DB, bp *Blueprint, ident *Identity, identity *models.OAuthIdentity) (*Result, error) {
	if ident.Username == "" {
		return nil, fmt.Errorf("provider %s returned no username to provision from", bp.Provider.Name)
	}

	existing, err := user.GetByName(tx, ident.Username)
	if err == nil {
		if !existing.Active {
			return nil, ErrUserAccountDisabled
		}

		// Addresses differing only in case are the same address.
		if ident.Email != "" && !strings.EqualFold(existing.Email, ident.Email) {
			log.Info().Str("user", existing.Name).
				Str("old_email", existing.Email).Str("new_email", ident.Email).
				Str("provider", bp.Provider.Name).
				Msg("updating email address from provider claims")

			existing.Email = ident.Email
			if err := user.Save(tx, existing); err != nil {
				return nil, err
			}
		}

		if err := oauthtoken.Bind(tx, identity.ID, existing.ID); err != nil {
			return nil, err
		}

		return &Result{Outcome: OutcomeLoggedIn, User: existing}, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}

	account := &models.User{
		Active:      true,
		Name:        ident.Username,
		Email:       ident.Email,
		Role:        models.DefaultRole,
		SidebarView: models.DefaultSidebar,
		AuthSource:  models.AuthSourceOAuth,
	}

	if ident.Admin {
		account.Role |= models.AdminRole
		account.SidebarView |= models.AdminSidebar
	}

	if _, err := user.Create(tx, account); err != nil {
		return nil, err
	}

	if err := oauthtoken.Bind(tx, identity.ID, account.ID); err != nil {
		return nil, err
	}

	log.Info().Str("user", account.Name).Str("provider", bp.Provider.Name).
		Bool("admin", ident.Admin).Msg("auto-provisioned account from provider identity")

	return &Result{Outcome: OutcomeRegistered, User: account}, nil
}
