package handlers

import (
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"

	"catalog/internal/apperrors"
	"catalog/internal/models"
)

// success writes the `{data, message?}` envelope.
func success(c *fiber.Ctx, status int, data interface{}, message string) error {
	body := fiber.Map{"data": data}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

// writeError translates an application error into the
// `{error, message, details?}` envelope. Unclassified errors become 500s and
// are logged server-side only.
func writeError(c *fiber.Ctx, err error) error {
	appErr := apperrors.From(err)
	if appErr.Kind == apperrors.KindInternal {
		log.Printf("Internal error handling %s %s: %v", c.Method(), c.Path(), err)
	}
	body := fiber.Map{
		"error":   appErr.Kind,
		"message": appErr.Message,
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	return c.Status(appErr.Status()).JSON(body)
}

// productResource shapes a product for the wire: ISO-8601 UTC timestamps and
// the price rounded to 2 decimals.
func productResource(p *models.Product) fiber.Map {
	return fiber.Map{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       math.Round(p.Price*100) / 100,
		"stock":       p.Stock,
		"active":      p.Active,
		"image":       p.Image,
		"created_at":  p.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func productCollection(products []models.Product) []fiber.Map {
	out := make([]fiber.Map, 0, len(products))
	for i := range products {
		out = append(out, productResource(&products[i]))
	}
	return out
}
