package services

import (
	"log"
	"strings"

	"catalog/internal/apperrors"
	"catalog/internal/models"
	"catalog/internal/repositories"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	defaultSort  = "id"
	defaultOrder = "asc"
)

// allowedSortFields is the allow-list of real columns accepted for sorting.
// Anything else is rejected before it reaches the query builder.
var allowedSortFields = map[string]bool{
	"id":         true,
	"name":       true,
	"price":      true,
	"stock":      true,
	"created_at": true,
	"updated_at": true,
}

// ProductInput is the pre-validated payload for creating a product. The
// validation layer guards the field constraints; the service only applies
// business defaults on top.
type ProductInput struct {
	Name        string
	Description *string
	Price       float64
	Stock       int
	Image       *string
}

// ProductUpdate carries a partial update. A nil pointer means the field was
// not supplied; the Set flags distinguish "absent" from "explicitly null"
// for the nullable columns.
type ProductUpdate struct {
	Name           string
	NameSet        bool
	Description    *string
	DescriptionSet bool
	Price          float64
	PriceSet       bool
	Stock          int
	StockSet       bool
	Active         bool
	ActiveSet      bool
	Image          *string
	ImageSet       bool
}

// ListParams is the unordered bag of optional listing parameters after query
// string parsing. Zero/nil values mean "not supplied".
type ListParams struct {
	Page     int
	Limit    int
	Active   *bool
	MinPrice *float64
	MaxPrice *float64
	StockMin *int
	Search   string
	Sort     string
	Order    string
}

// ListMeta is the pagination block returned next to a product page.
type ListMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// EventPublisher publishes product lifecycle events. Satisfied by the
// rabbitmq client; nil disables publishing.
type EventPublisher interface {
	PublishProductEvent(event string, payload map[string]interface{}) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil when
// no message broker is wired in (tests, local development).
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// Create persists a new product. Products always start active regardless of
// anything the caller attempted to send.
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Active:      true,
		Image:       input.Image,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	s.publish("product.created", product)
	return product, nil
}

// Update applies a partial update: only supplied fields change, unspecified
// fields keep their prior values, and UpdatedAt is always refreshed by the
// repository save.
func (s *ProductService) Update(id uint, update ProductUpdate) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if update.NameSet {
		product.Name = update.Name
	}
	if update.DescriptionSet {
		product.Description = update.Description
	}
	if update.PriceSet {
		product.Price = update.Price
	}
	if update.StockSet {
		product.Stock = update.Stock
	}
	if update.ActiveSet {
		product.Active = update.Active
	}
	if update.ImageSet {
		product.Image = update.Image
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.publish("product.updated", product)
	return product, nil
}

// Delete removes a product, but only while its stock is exactly zero.
// Products with outstanding inventory are protected by a business-rule
// violation, no matter what the client sends.
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product.Stock > 0 {
		return apperrors.BusinessRule("Cannot delete a product with stock greater than 0")
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publish("product.deleted", product)
	return nil
}

// Get retrieves a single product by its ID.
func (s *ProductService) Get(id uint) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// List builds a filtered, sorted, paginated view over the catalog.
// Inactive products are hidden unless active=false is requested explicitly.
func (s *ProductService) List(params ListParams) ([]models.Product, ListMeta, error) {
	page := params.Page
	if page < 1 {
		page = defaultPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	active := params.Active
	if active == nil {
		defaultActive := true
		active = &defaultActive
	}

	sortField := params.Sort
	if sortField == "" {
		sortField = defaultSort
	}
	order := strings.ToLower(params.Order)
	if order == "" {
		order = defaultOrder
	}

	var details []apperrors.FieldError
	if !allowedSortFields[sortField] {
		details = append(details, apperrors.FieldError{
			Field:   "sort",
			Message: "The sort field must be one of: id, name, price, stock, created_at, updated_at",
		})
	}
	if order != "asc" && order != "desc" {
		details = append(details, apperrors.FieldError{
			Field:   "order",
			Message: "The order must be asc or desc",
		})
	}
	if len(details) > 0 {
		return nil, ListMeta{}, apperrors.Validation(details)
	}

	filter := repositories.ListFilter{
		Active:   active,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		StockMin: params.StockMin,
		Search:   params.Search,
		Sort:     sortField,
		Order:    order,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}

	products, total, err := s.repo.List(filter)
	if err != nil {
		return nil, ListMeta{}, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	meta := ListMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
	return products, meta, nil
}

// publish sends a product lifecycle event. Failures are logged and never
// surfaced: the mutation has already committed.
func (s *ProductService) publish(event string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"event":      event,
		"product_id": product.ID,
		"name":       product.Name,
		"price":      product.Price,
		"stock":      product.Stock,
		"active":     product.Active,
	}
	if err := s.publisher.PublishProductEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event for product %d: %v", event, product.ID, err)
	}
}
