// Package validation parses and validates product request bodies before the
// service layer runs. It works in two passes: a raw-body pass that rejects
// prohibited keys and tracks which fields the caller actually supplied, and
// a struct pass through go-playground/validator for the field constraints.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"catalog/internal/apperrors"
	"catalog/internal/services"
)

// priceRx enforces at most 2 fractional digits on the raw number text, so a
// value like 10.999 is rejected instead of silently rounded.
var priceRx = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

const priceMaxValue = 999999.99

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "price_format", func(fl validator.FieldLevel) bool {
		return priceRx.MatchString(fl.Field().String())
	})
	mustRegister(v, "price_positive", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && f > 0
	})
	mustRegister(v, "price_max", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && f <= priceMaxValue
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// fieldMessages maps field and failing tag to the message reported to the
// caller.
var fieldMessages = map[string]map[string]string{
	"name": {
		"required": "The name is required",
		"min":      "The name must have at least 3 characters",
		"max":      "The name cannot exceed 255 characters",
	},
	"description": {
		"max": "The description cannot exceed 1000 characters",
	},
	"price": {
		"required":       "The price is required",
		"price_format":   "The price must have at most 2 decimal places",
		"price_positive": "The price must be greater than 0",
		"price_max":      "The price cannot exceed 999999.99",
	},
	"stock": {
		"required": "The stock is required",
		"min":      "The stock cannot be negative",
	},
	"image": {
		"max": "The image cannot exceed 1000 characters",
	},
}

type prohibitedField struct {
	key     string
	message string
}

var createProhibited = []prohibitedField{
	{"id", "The id field cannot be set manually"},
	{"created_at", "The created_at field cannot be set manually"},
	{"updated_at", "The updated_at field cannot be set manually"},
	{"active", "The active field cannot be set on creation (defaults to true)"},
}

var updateProhibited = []prohibitedField{
	{"id", "The id field cannot be updated"},
	{"created_at", "The created_at field cannot be updated"},
	{"updated_at", "The updated_at field is automatically updated"},
}

type createProductPayload struct {
	Name        string      `json:"name" validate:"required,min=3,max=255"`
	Description *string     `json:"description" validate:"omitnil,max=1000"`
	Price       json.Number `json:"price" validate:"required,price_positive,price_max,price_format"`
	Stock       *int        `json:"stock" validate:"required,min=0"`
	Image       *string     `json:"image" validate:"omitnil,max=1000"`
}

type updateProductPayload struct {
	Name        *string      `json:"name" validate:"omitnil,min=3,max=255"`
	Description *string      `json:"description" validate:"omitnil,max=1000"`
	Price       *json.Number `json:"price" validate:"omitnil,price_positive,price_max,price_format"`
	Stock       *int         `json:"stock" validate:"omitnil,min=0"`
	Active      *bool        `json:"active"`
	Image       *string      `json:"image" validate:"omitnil,max=1000"`
}

func decodeBody(body []byte) (map[string]json.RawMessage, *apperrors.Error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &apperrors.Error{
			Kind:    apperrors.KindValidation,
			Message: "Malformed JSON body",
			Err:     err,
		}
	}
	return raw, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func structErrors(err error) []apperrors.FieldError {
	var details []apperrors.FieldError
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apperrors.FieldError{{Field: "body", Message: "Invalid request body"}}
	}
	for _, e := range validationErrors {
		msg := fieldMessages[e.Field()][e.Tag()]
		if msg == "" {
			msg = fmt.Sprintf("The %s field is invalid", e.Field())
		}
		details = append(details, apperrors.FieldError{Field: e.Field(), Message: msg})
	}
	return details
}

// ParseCreateProduct validates a product creation body and converts it into
// the service input. id, created_at, updated_at and active are rejected if
// present: the server owns all of them.
func ParseCreateProduct(body []byte) (services.ProductInput, error) {
	var input services.ProductInput

	raw, appErr := decodeBody(body)
	if appErr != nil {
		return input, appErr
	}

	var details []apperrors.FieldError
	for _, p := range createProhibited {
		if _, ok := raw[p.key]; ok {
			details = append(details, apperrors.FieldError{Field: p.key, Message: p.message})
		}
	}

	var payload createProductPayload
	if rawVal, ok := raw["name"]; ok && !isNull(rawVal) {
		if err := json.Unmarshal(rawVal, &payload.Name); err != nil {
			details = append(details, apperrors.FieldError{Field: "name", Message: "The name must be a string"})
		}
	}
	if rawVal, ok := raw["description"]; ok && !isNull(rawVal) {
		if err := json.Unmarshal(rawVal, &payload.Description); err != nil {
			details = append(details, apperrors.FieldError{Field: "description", Message: "The description must be a string"})
		}
	}
	if rawVal, ok := raw["price"]; ok && !isNull(rawVal) {
		if err := json.Unmarshal(rawVal, &payload.Price); err != nil {
			details = append(details, apperrors.FieldError{Field: "price", Message: "The price must be a number"})
		}
	}
	if rawVal, ok := raw["stock"]; ok && !isNull(rawVal) {
		if err := json.Unmarshal(rawVal, &payload.Stock); err != nil {
			details = append(details, apperrors.FieldError{Field: "stock", Message: "The stock must be an integer"})
		}
	}
	if rawVal, ok := raw["image"]; ok && !isNull(rawVal) {
		if err := json.Unmarshal(rawVal, &payload.Image); err != nil {
			details = append(details, apperrors.FieldError{Field: "image", Message: "The image must be a string"})
		}
	}

	if len(details) == 0 {
		if err := validate.Struct(payload); err != nil {
			details = structErrors(err)
		}
	}
	if len(details) > 0 {
		return input, apperrors.Validation(details)
	}

	price, err := payload.Price.Float64()
	if err != nil {
		return input, apperrors.Validation([]apperrors.FieldError{
			{Field: "price", Message: "The price must be a number"},
		})
	}

	input = services.ProductInput{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       price,
		Stock:       *payload.Stock,
		Image:       payload.Image,
	}
	return input, nil
}

// ParseUpdateProduct validates a partial-update body. Only supplied keys end
// up flagged in the result; an explicit null on a nullable field (description,
// image) clears it, while null on any other field is a validation error.
func ParseUpdateProduct(body []byte) (services.ProductUpdate, error) {
	var update services.ProductUpdate

	raw, appErr := decodeBody(body)
	if appErr != nil {
		return update, appErr
	}

	var details []apperrors.FieldError
	for _, p := range updateProhibited {
		if _, ok := raw[p.key]; ok {
			details = append(details, apperrors.FieldError{Field: p.key, Message: p.message})
		}
	}

	var payload updateProductPayload
	if rawVal, ok := raw["name"]; ok {
		if isNull(rawVal) {
			details = append(details, apperrors.FieldError{Field: "name", Message: "The name must be a string"})
		} else if err := json.Unmarshal(rawVal, &payload.Name); err != nil {
			details = append(details, apperrors.FieldError{Field: "name", Message: "The name must be a string"})
		}
		update.NameSet = true
	}
	if rawVal, ok := raw["description"]; ok {
		if !isNull(rawVal) {
			if err := json.Unmarshal(rawVal, &payload.Description); err != nil {
				details = append(details, apperrors.FieldError{Field: "description", Message: "The description must be a string"})
			}
		}
		update.DescriptionSet = true
	}
	if rawVal, ok := raw["price"]; ok {
		if isNull(rawVal) {
			details = append(details, apperrors.FieldError{Field: "price", Message: "The price must be a number"})
		} else if err := json.Unmarshal(rawVal, &payload.Price); err != nil {
			details = append(details, apperrors.FieldError{Field: "price", Message: "The price must be a number"})
		}
		update.PriceSet = true
	}
	if rawVal, ok := raw["stock"]; ok {
		if isNull(rawVal) {
			details = append(details, apperrors.FieldError{Field: "stock", Message: "The stock must be an integer"})
		} else if err := json.Unmarshal(rawVal, &payload.Stock); err != nil {
			details = append(details, apperrors.FieldError{Field: "stock", Message: "The stock must be an integer"})
		}
		update.StockSet = true
	}
	if rawVal, ok := raw["active"]; ok {
		if isNull(rawVal) {
			details = append(details, apperrors.FieldError{Field: "active", Message: "The active field must be a boolean"})
		} else if err := json.Unmarshal(rawVal, &payload.Active); err != nil {
			details = append(details, apperrors.FieldError{Field: "active", Message: "The active field must be a boolean"})
		}
		update.ActiveSet = true
	}
	if rawVal, ok := raw["image"]; ok {
		if !isNull(rawVal) {
			if err := json.Unmarshal(rawVal, &payload.Image); err != nil {
				details = append(details, apperrors.FieldError{Field: "image", Message: "The image must be a string"})
			}
		}
		update.ImageSet = true
	}

	if len(details) == 0 {
		if err := validate.Struct(payload); err != nil {
			details = structErrors(err)
		}
	}
	if len(details) > 0 {
		return services.ProductUpdate{}, apperrors.Validation(details)
	}

	if payload.Name != nil {
		update.Name = *payload.Name
	}
	update.Description = payload.Description
	if payload.Price != nil {
		price, err := payload.Price.Float64()
		if err != nil {
			return services.ProductUpdate{}, apperrors.Validation([]apperrors.FieldError{
				{Field: "price", Message: "The price must be a number"},
			})
		}
		update.Price = price
	}
	if payload.Stock != nil {
		update.Stock = *payload.Stock
	}
	if payload.Active != nil {
		update.Active = *payload.Active
	}
	update.Image = payload.Image
	return update, nil
}
