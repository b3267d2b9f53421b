package repositories

import (
	"catalog/internal/models"
)

// ListFilter carries the resolved, already-validated listing parameters down
// to the data layer. Sort and Order are trusted here because the service has
// checked them against its allow-list.
type ListFilter struct {
	Active   *bool
	MinPrice *float64
	MaxPrice *float64
	StockMin *int
	Search   string
	Sort     string
	Order    string
	Offset   int
	Limit    int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(filter ListFilter) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	// Delete removes the product only while its stock is zero; implementations
	// must enforce the guard in the same operation that deletes the row.
	Delete(id uint) error
}
