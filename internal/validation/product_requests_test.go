package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/internal/apperrors"
	"catalog/internal/validation"
)

func requireValidationError(t *testing.T, err error) *apperrors.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, apperrors.KindValidation, appErr.Kind)
	return appErr
}

func fieldMessage(appErr *apperrors.Error, field string) string {
	for _, d := range appErr.Details {
		if d.Field == field {
			return d.Message
		}
	}
	return ""
}

func TestParseCreateProduct_Valid(t *testing.T) {
	body := []byte(`{"name":"Test Product","description":"Test description","price":100,"stock":10}`)

	input, err := validation.ParseCreateProduct(body)
	require.NoError(t, err)
	assert.Equal(t, "Test Product", input.Name)
	require.NotNil(t, input.Description)
	assert.Equal(t, "Test description", *input.Description)
	assert.Equal(t, 100.0, input.Price)
	assert.Equal(t, 10, input.Stock)
	assert.Nil(t, input.Image)
}

func TestParseCreateProduct_TwoDecimalPrice(t *testing.T) {
	input, err := validation.ParseCreateProduct([]byte(`{"name":"Priced","price":999999.99,"stock":0}`))
	require.NoError(t, err)
	assert.Equal(t, 999999.99, input.Price)
}

func TestParseCreateProduct_MissingRequiredFields(t *testing.T) {
	appErr := requireValidationError(t, errOf(validation.ParseCreateProduct([]byte(`{}`))))
	assert.Equal(t, "The name is required", fieldMessage(appErr, "name"))
	assert.Equal(t, "The price is required", fieldMessage(appErr, "price"))
	assert.Equal(t, "The stock is required", fieldMessage(appErr, "stock"))
	// Multiple failures collapse to the generic top-level message.
	assert.Equal(t, "Validation errors", appErr.Message)
}

func TestParseCreateProduct_SingleErrorEchoesMessage(t *testing.T) {
	body := []byte(`{"name":"ab","price":10,"stock":1}`)
	appErr := requireValidationError(t, errOf(validation.ParseCreateProduct(body)))
	assert.Equal(t, "The name must have at least 3 characters", appErr.Message)
	require.Len(t, appErr.Details, 1)
}

func TestParseCreateProduct_PriceConstraints(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"three decimals", `{"name":"Product","price":10.999,"stock":1}`, "The price must have at most 2 decimal places"},
		{"zero", `{"name":"Product","price":0,"stock":1}`, "The price must be greater than 0"},
		{"negative", `{"name":"Product","price":-5,"stock":1}`, "The price must be greater than 0"},
		{"too large", `{"name":"Product","price":1000000,"stock":1}`, "The price cannot exceed 999999.99"},
		{"not a number", `{"name":"Product","price":"expensive","stock":1}`, "The price must be a number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appErr := requireValidationError(t, errOf(validation.ParseCreateProduct([]byte(tc.body))))
			assert.Equal(t, tc.message, fieldMessage(appErr, "price"))
		})
	}
}

func TestParseCreateProduct_NegativeStock(t *testing.T) {
	appErr := requireValidationError(t, errOf(validation.ParseCreateProduct([]byte(`{"name":"Product","price":10,"stock":-1}`))))
	assert.Equal(t, "The stock cannot be negative", fieldMessage(appErr, "stock"))
}

func TestParseCreateProduct_ZeroStockIsValid(t *testing.T) {
	input, err := validation.ParseCreateProduct([]byte(`{"name":"Product","price":10,"stock":0}`))
	require.NoError(t, err)
	assert.Equal(t, 0, input.Stock)
}

func TestParseCreateProduct_ProhibitedFields(t *testing.T) {
	body := []byte(`{"name":"Product","price":10,"stock":1,"active":false,"id":7,"created_at":"2024-01-01T00:00:00Z"}`)
	appErr := requireValidationError(t, errOf(validation.ParseCreateProduct(body)))
	assert.Equal(t, "The active field cannot be set on creation (defaults to true)", fieldMessage(appErr, "active"))
	assert.Equal(t, "The id field cannot be set manually", fieldMessage(appErr, "id"))
	assert.Equal(t, "The created_at field cannot be set manually", fieldMessage(appErr, "created_at"))
}

func TestParseCreateProduct_MalformedJSON(t *testing.T) {
	appErr := requireValidationError(t, errOf(validation.ParseCreateProduct([]byte(`{not json`))))
	assert.Equal(t, "Malformed JSON body", appErr.Message)
}

func TestParseUpdateProduct_PartialFieldsOnly(t *testing.T) {
	update, err := validation.ParseUpdateProduct([]byte(`{"price":250.50}`))
	require.NoError(t, err)
	assert.True(t, update.PriceSet)
	assert.Equal(t, 250.50, update.Price)
	assert.False(t, update.NameSet)
	assert.False(t, update.StockSet)
	assert.False(t, update.ActiveSet)
	assert.False(t, update.DescriptionSet)
	assert.False(t, update.ImageSet)
}

func TestParseUpdateProduct_ActiveMayBeSet(t *testing.T) {
	update, err := validation.ParseUpdateProduct([]byte(`{"active":false}`))
	require.NoError(t, err)
	assert.True(t, update.ActiveSet)
	assert.False(t, update.Active)
}

func TestParseUpdateProduct_NullClearsNullableFields(t *testing.T) {
	update, err := validation.ParseUpdateProduct([]byte(`{"description":null,"image":null}`))
	require.NoError(t, err)
	assert.True(t, update.DescriptionSet)
	assert.Nil(t, update.Description)
	assert.True(t, update.ImageSet)
	assert.Nil(t, update.Image)
}

func TestParseUpdateProduct_NullOnNonNullableField(t *testing.T) {
	appErr := requireValidationError(t, errOf(validation.ParseUpdateProduct([]byte(`{"name":null}`))))
	assert.Equal(t, "The name must be a string", fieldMessage(appErr, "name"))
}

func TestParseUpdateProduct_FieldConstraintsStillApply(t *testing.T) {
	appErr := requireValidationError(t, errOf(validation.ParseUpdateProduct([]byte(`{"name":"ab"}`))))
	assert.Equal(t, "The name must have at least 3 characters", appErr.Message)

	appErr = requireValidationError(t, errOf(validation.ParseUpdateProduct([]byte(`{"price":12.345}`))))
	assert.Equal(t, "The price must have at most 2 decimal places", fieldMessage(appErr, "price"))
}

func TestParseUpdateProduct_ProhibitedFields(t *testing.T) {
	body := []byte(`{"name":"Renamed","id":1,"updated_at":"2024-01-01T00:00:00Z"}`)
	appErr := requireValidationError(t, errOf(validation.ParseUpdateProduct(body)))
	assert.Equal(t, "The id field cannot be updated", fieldMessage(appErr, "id"))
	assert.Equal(t, "The updated_at field is automatically updated", fieldMessage(appErr, "updated_at"))
}

func TestParseUpdateProduct_EmptyBodyIsValidNoop(t *testing.T) {
	update, err := validation.ParseUpdateProduct([]byte(`{}`))
	require.NoError(t, err)
	assert.False(t, update.NameSet || update.DescriptionSet || update.PriceSet || update.StockSet || update.ActiveSet || update.ImageSet)
}

// errOf discards the parsed value so table assertions can focus on the
// error alone.
func errOf[T any](_ T, err error) error  { return err }
