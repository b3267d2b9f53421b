package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"catalog/internal/apperrors"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/services"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes. Register and login are
// public; logout needs the bearer token it is revoking.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", middleware.AuthRequired(h.authService), h.HandleLogout)
}

func userResource(user *models.User) fiber.Map {
	return fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}
}

func (h *AuthHandler) validationDetails(err error) []apperrors.FieldError {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apperrors.FieldError{{Field: "body", Message: "Invalid request body"}}
	}
	details := make([]apperrors.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, apperrors.FieldError{
			Field:   strings.ToLower(e.Field()),
			Message: fmt.Sprintf("The %s field failed on the '%s' rule", strings.ToLower(e.Field()), e.Tag()),
		})
	}
	return details
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleRegister handles new user registration. Registered accounts always
// get the ordinary user role.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return writeError(c, &apperrors.Error{
			Kind:    apperrors.KindValidation,
			Message: "Malformed JSON body",
			Err:     err,
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return writeError(c, apperrors.Validation(h.validationDetails(err)))
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := h.authService.RegisterUser(&user); err != nil {
		log.Printf("Error registering user: %v", err)
		if strings.Contains(err.Error(), "already taken") || strings.Contains(err.Error(), "already registered") {
			return writeError(c, apperrors.BusinessRule(err.Error()))
		}
		return writeError(c, err)
	}

	return success(c, fiber.StatusCreated, userResource(&user), "User registered successfully")
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates by email and password and issues a bearer token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return writeError(c, &apperrors.Error{
			Kind:    apperrors.KindValidation,
			Message: "Malformed JSON body",
			Err:     err,
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return writeError(c, apperrors.Validation(h.validationDetails(err)))
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		log.Printf("Error during login for %s: %v", req.Email, err)
		return writeError(c, err)
	}

	return success(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user":  userResource(user),
	}, "Login successful")
}

// HandleLogout revokes the presented token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	jti, _ := c.Locals(middleware.LocalTokenJTI).(string)
	expiresAt, _ := c.Locals(middleware.LocalTokenExp).(time.Time)

	if err := h.authService.Logout(jti, expiresAt); err != nil {
		return writeError(c, err)
	}
	return success(c, fiber.StatusOK, nil, "Logout successful")
}
