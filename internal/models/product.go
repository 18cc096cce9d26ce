package models

import "time"

// Product represents a product in the catalogue.
type Product struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Price        float64   `json:"price" gorm:"not null"`
	Availability bool      `json:"availability" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

// Column names of the products table, as used in ordering, omission and partial updates.
const (
	ColumnID           = "id"
	ColumnName         = "name"
	ColumnPrice        = "price"
	ColumnAvailability = "availability"
	ColumnCreatedAt    = "created_at"
	ColumnUpdatedAt    = "updated_at"
)
