package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"catalog/internal/apperrors"
	"catalog/internal/middleware"
	"catalog/internal/services"
	"catalog/internal/validation"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes. The router passed in is
// expected to already require authentication; mutations additionally require
// the admin role.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleList)
	productRoutes.Get("/:id", h.HandleGet)
	productRoutes.Post("/", middleware.AdminRequired(), h.HandleCreate)
	productRoutes.Put("/:id", middleware.AdminRequired(), h.HandleUpdate)
	productRoutes.Delete("/:id", middleware.AdminRequired(), h.HandleDelete)
}

// parseID resolves the :id path segment. Non-numeric ids are reported the
// same way as missing products.
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, apperrors.NotFound("Resource not found")
	}
	return uint(id), nil
}

// parseListParams converts the query string into typed listing parameters.
// Unparseable values are validation failures, not silent defaults.
func parseListParams(c *fiber.Ctx) (services.ListParams, error) {
	var params services.ListParams
	var details []apperrors.FieldError

	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, apperrors.FieldError{Field: "page", Message: "The page must be an integer"})
		} else {
			params.Page = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, apperrors.FieldError{Field: "limit", Message: "The limit must be an integer"})
		} else {
			params.Limit = v
		}
	}
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			details = append(details, apperrors.FieldError{Field: "active", Message: "The active filter must be a boolean"})
		} else {
			params.Active = &v
		}
	}
	if raw := c.Query("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			details = append(details, apperrors.FieldError{Field: "min_price", Message: "The min_price must be a number"})
		} else {
			params.MinPrice = &v
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			details = append(details, apperrors.FieldError{Field: "max_price", Message: "The max_price must be a number"})
		} else {
			params.MaxPrice = &v
		}
	}
	if raw := c.Query("stock_min"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, apperrors.FieldError{Field: "stock_min", Message: "The stock_min must be an integer"})
		} else {
			params.StockMin = &v
		}
	}
	params.Search = c.Query("search")
	params.Sort = c.Query("sort")
	params.Order = c.Query("order")

	if len(details) > 0 {
		return params, apperrors.Validation(details)
	}
	return params, nil
}

// HandleList returns a filtered, paginated page of the catalog.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return writeError(c, err)
	}

	products, meta, err := h.service.List(params)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data":       productCollection(products),
		"pagination": meta,
	})
}

// HandleGet returns a single product by id.
func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	product, err := h.service.Get(id)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, fiber.StatusOK, productResource(product), "")
}

// HandleCreate creates a new product.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	input, err := validation.ParseCreateProduct(c.Body())
	if err != nil {
		return writeError(c, err)
	}

	product, err := h.service.Create(input)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, fiber.StatusCreated, productResource(product), "Product created")
}

// HandleUpdate applies a partial update to a product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	update, err := validation.ParseUpdateProduct(c.Body())
	if err != nil {
		return writeError(c, err)
	}

	product, err := h.service.Update(id, update)
	if err != nil {
		return writeError(c, err)
	}
	return success(c, fiber.StatusOK, productResource(product), "")
}

// HandleDelete removes a product with zero stock.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.service.Delete(id); err != nil {
		return writeError(c, err)
	}
	return success(c, fiber.StatusOK, nil, "Product deleted")
}
