// Package models contains data structures for the application's domain models.
package models

import "time"

// User mirrors the application's user identity in the content store.
// The social graph keeps its own node per user, merged on first interaction.
type User struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
