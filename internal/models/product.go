package models

import "time"

// Product represents a catalog item.
//
// Description and Image are nullable columns; a nil pointer maps to SQL NULL.
// ID, CreatedAt and UpdatedAt are server-managed and never accepted from
// client input, which is why validation lives on the request DTOs rather
// than on this struct.
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;index"`
	Description *string   `json:"description" gorm:"size:1000"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);index"`
	Stock       int       `json:"stock"`
	Active      bool      `json:"active" gorm:"default:true;index"`
	Image       *string   `json:"image" gorm:"size:1000"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
