package models

import (
	"time"

	"github.com/google/uuid"
)

// Officer - сотрудник, которому разрешено вести инциденты
type Officer struct {
	ID          uuid.UUID `json:"id"`
	BadgeNumber string    `json:"badge_number"`
	FullName    string    `json:"full_name"`
	Rank        string    `json:"rank"`
	Station     *string   `json:"station"`
	Phone       *string   `json:"phone"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
