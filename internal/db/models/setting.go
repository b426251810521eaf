package models

import "time"

// Setting represents a single application wide key/value setting.
type Setting struct {
	// ID is the unique identifier for the setting.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique setting name.
	Name string `gorm:"unique;size:100;not null"`
	// Value is the setting value.
	Value []byte
	// CreatedAt is the timestamp when the setting was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the setting was last updated (managed by GORM).
	UpdatedAt time.Time
}
