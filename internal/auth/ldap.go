package auth

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/config"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/user"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

// ErrLDAPDisabled is returned when LDAP authentication is disabled via configuration.
var ErrLDAPDisabled = errors.New("ldap authentication is disabled")

// ldapTimeout bounds LDAP operations.
const ldapTimeout = 10 * time.Second

// LDAPProvider handles LDAP authentication.
type LDAPProvider struct {
	config config.LDAPAuth
	db     *gorm.DB
}

// NewLDAPProvider creates a new LDAP provider.
func NewLDAPProvider(cfg config.LDAPAuth, db *gorm.DB) (*LDAPProvider, error) {
	if !cfg.Enabled {
		return nil, ErrLDAPDisabled
	}

	// Set defaults
	if cfg.UsernameAttr == "" {
		cfg.UsernameAttr = "uid"
	}

	if cfg.EmailAttr == "" {
		cfg.EmailAttr = "mail"
	}

	if cfg.UserFilter == "" {
		cfg.UserFilter = "(uid={username})"
	}

	return &LDAPProvider{
		config: cfg,
		db:     db,
	}, nil
}

// Connect establishes a connection to the LDAP server.
func (p *LDAPProvider) Connect() (*ldap.Conn, error) {
	hostPort := net.JoinHostPort(p.config.Host, strconv.Itoa(p.config.Port))

	var tlsConfig *tls.Config
	if p.config.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: p.config.SkipTLSVerify, //nolint:gosec // skipping verifying tls is ok
			ServerName:         p.config.Host,
		}
	}

	conn, err := ldap.DialURL("ldap://"+hostPort, ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	if p.config.UseTLS {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			if errClose := conn.Close(); errClose != nil {
				log.Error().Err(errClose).Msg("failed to close LDAP connection")
			}

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	conn.SetTimeout(ldapTimeout)

	return conn, nil
}

// Authenticate authenticates a user against LDAP. On success the matching
// local account is created or refreshed with the directory's attributes.
func (p *LDAPProvider) Authenticate(username, password string) (*models.User, error) {
	conn, err := p.Connect()
	if err != nil {
		return nil, err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	if p.config.BindDN != "" {
		if errBind := conn.Bind(p.config.BindDN, p.config.BindPassword); errBind != nil {
			return nil, fmt.Errorf("failed to bind with service account: %w", errBind)
		}
	}

	entry, err := p.searchUserEntry(conn, username)
	if err != nil {
		return nil, err
	}

	if errBind := conn.Bind(entry.DN, password); errBind != nil {
		return nil, ErrInvalidPassword
	}

	account, err := p.upsertLDAPUser(
		entry.GetAttributeValue(p.config.UsernameAttr),
		entry.GetAttributeValue(p.config.EmailAttr),
	)
	if err != nil {
		return nil, err
	}

	if !account.Active {
		return nil, ErrUserAccountDisabled
	}

	return account, nil
}

// searchUserEntry searches LDAP for the given username and returns a single entry.
func (p *LDAPProvider) searchUserEntry(conn *ldap.Conn, username string) (*ldap.Entry, error) {
	filter := strings.ReplaceAll(p.config.UserFilter, "{username}", ldap.EscapeFilter(username))
	request := ldap.NewSearchRequest(
		p.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, // Size limit
		int(ldapTimeout.Seconds()),
		false,
		filter,
		[]string{p.config.UsernameAttr, p.config.EmailAttr, "dn"},
		nil,
	)

	result, err := conn.Search(request)
	if err != nil {
		return nil, fmt.Errorf("ldap search failed: %w", err)
	}

	switch len(result.Entries) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return result.Entries[0], nil
	default:
		return nil, ErrMultipleUsersFound
	}
}

// upsertLDAPUser creates or refreshes the local account for a directory user.
func (p *LDAPProvider) upsertLDAPUser(username, email string) (*models.User, error) {
	if username == "" {
		return nil, ErrUserNotFound
	}

	existing, err := user.GetByName(p.db, username)
	if err == nil {
		if email != "" && existing.Email != email {
			existing.Email = email
			if errSave := user.Save(p.db, existing); errSave != nil {
				return nil, errSave
			}
		}

		return existing, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}

	account := &models.User{
		Active:      true,
		Name:        username,
		Email:       email,
		Role:        models.DefaultRole,
		SidebarView: models.DefaultSidebar,
		AuthSource:  models.AuthSourceLDAP,
	}

	if _, err := user.Create(p.db, account); err != nil {
		return nil, err
	}

	return account, nil
}
