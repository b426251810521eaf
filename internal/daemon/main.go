// Package daemon wires configuration, database, session storage and the web
// service together into the running application.
package daemon

import (
	"context"
	"fmt"

	"github.com/gofiber/storage"
	sessionmysql "github.com/gofiber/storage/mysql"
	sessionpostgres "github.com/gofiber/storage/postgres"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/auth"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/config"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/oauthprovider"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/controller/setting"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/dsn"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/logger"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/web/session"
)

// schemaVersion is recorded in the settings table after migration so future
// releases can detect what they are upgrading from.
const schemaVersion = "1"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize logger")
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Setting{},
		&models.OAuthProvider{},
		&models.OAuthIdentity{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if _, err = setting.Set(db, "schema_version", []byte(schemaVersion)); err != nil {
		log.Fatal().Err(err).Msg("failed to record schema version")
	}

	seed(cfg, db)

	if err = oauthprovider.EnsureWellKnown(db); err != nil {
		log.Fatal().Err(err).Msg("failed to create well known oauth providers")
	}

	registry, err := auth.NewRegistry(context.Background(), db, cfg.Webserver.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build oauth provider registry")
	}

	session.Init(sessionStorage(cfg))

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, registry),
	}
}

// openDialector picks the GORM driver for the configured engine.
func openDialector(cfg *config.Config) gorm.Dialector {
	if cfg.DB.GormEngine == "postgres" {
		return gormpostgres.Open(dsn.Create(cfg))
	}

	return gormmysql.Open(dsn.Create(cfg))
}

// sessionStorage builds the fiber session storage on the same database engine.
func sessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DB.GormEngine == "postgres" {
		return sessionpostgres.New(sessionpostgres.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			Username: cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			Table:    "sessions",
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})
}
