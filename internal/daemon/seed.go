package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShelf-Admin/GoShelf-Admin/internal/config"
	"github.com/GoShelf-Admin/GoShelf-Admin/internal/db/models"
)

func seed(_ *config.Config, db *gorm.DB) {
	// Seed initial data if user table is empty

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		db.Create(
			&models.User{
				Name:        "admin",
				Password:    models.HashPassword("changeme"),
				Active:      true,
				Role:        models.DefaultRole | models.AdminRole,
				SidebarView: models.DefaultSidebar | models.AdminSidebar,
				AuthSource:  models.AuthSourceLocal,
			},
		)

		log.Warn().Msg("created default admin user with password 'changeme', change it after first login")
	}
}
