package repositories

import (
	"sort"
	"strings"
	"sync"
	"time"

	"catalog/internal/apperrors"
	"catalog/internal/models"
)

// InMemoryProductRepository is an in-memory implementation of
// ProductRepository. It mirrors the SQL semantics of the GORM repository
// closely enough for unit tests and local development without a database.
type InMemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewInMemoryProductRepository creates a new InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

func matchesFilter(p models.Product, f ListFilter) bool {
	if f.Active != nil && p.Active != *f.Active {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.StockMin != nil && p.Stock < *f.StockMin {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		inName := strings.Contains(strings.ToLower(p.Name), needle)
		inDesc := p.Description != nil && strings.Contains(strings.ToLower(*p.Description), needle)
		if !inName && !inDesc {
			return false
		}
	}
	return true
}

func sortKeyLess(a, b models.Product, field string) bool {
	switch field {
	case "name":
		return a.Name < b.Name
	case "price":
		return a.Price < b.Price
	case "stock":
		return a.Stock < b.Stock
	case "created_at":
		return a.CreatedAt.Before(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Before(b.UpdatedAt)
	default:
		return a.ID < b.ID
	}
}

// List applies the filter, sort and pagination in memory.
func (r *InMemoryProductRepository) List(filter ListFilter) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchesFilter(p, filter) {
			matched = append(matched, p)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if filter.Order == "desc" {
			return sortKeyLess(matched[j], matched[i], filter.Sort)
		}
		return sortKeyLess(matched[i], matched[j], filter.Sort)
	})

	total := int64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// GetByID returns a product by its ID.
func (r *InMemoryProductRepository) GetByID(id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperrors.NotFound("Resource not found")
	}
	return &product, nil
}

// Create adds a new product, assigning the next monotonic ID and both
// timestamps.
func (r *InMemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.nextID
	r.nextID++
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product and refreshes UpdatedAt.
func (r *InMemoryProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return apperrors.NotFound("Resource not found")
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product, honoring the same stock-zero guard as the GORM
// implementation.
func (r *InMemoryProductRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return apperrors.NotFound("Resource not found")
	}
	if product.Stock > 0 {
		return apperrors.BusinessRule("Cannot delete a product with stock greater than 0")
	}
	delete(r.products, id)
	return nil
}
