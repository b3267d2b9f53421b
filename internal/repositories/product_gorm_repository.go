package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"catalog/internal/apperrors"
	"catalog/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List retrieves the products matching the filter plus the pre-pagination
// total. All conditions are AND-ed; the search clause is itself an OR over
// name and description.
func (r *GORMProductRepository) List(filter ListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})

	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.StockMin != nil {
		query = query.Where("stock >= ?", *filter.StockMin)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			r.db.Where("LOWER(name) LIKE ?", pattern).
				Or("LOWER(description) LIKE ?", pattern),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := query.
		Order(fmt.Sprintf("%s %s", filter.Sort, filter.Order)).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Resource not found")
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database. GORM assigns the
// auto-increment ID and both timestamps.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update saves all fields of an existing product, refreshing UpdatedAt.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Resource not found")
	}
	return nil
}

// Delete hard-deletes a product, but only while its stock is zero. The guard
// sits in the WHERE clause so a concurrent stock increase between the
// service's check and this statement cannot delete stocked inventory.
func (r *GORMProductRepository) Delete(id uint) error {
	res := r.db.Where("id = ? AND stock = 0", id).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to check product %d after delete: %w", id, err)
		}
		if exists > 0 {
			return apperrors.BusinessRule("Cannot delete a product with stock greater than 0")
		}
		return apperrors.NotFound("Resource not found")
	}
	return nil
}
