package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"catalog/internal/apperrors"
	"catalog/internal/auth"
	"catalog/internal/models"
	"catalog/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockTokenRepository is a mock implementation of repositories.TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Revoke(token *models.RevokedToken) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockTokenRepository) IsRevoked(jti string) (bool, error) {
	args := m.Called(jti)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) PurgeExpired(now time.Time) error {
	args := m.Called(now)
	return args.Error(0)
}

const testJWTSecret = "test_jwt_secret"

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, new(MockTokenRepository), testJWTSecret)

	user := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
		Role:     "admin", // must be ignored
	}

	mockRepo.On("GetByUsername", user.Username).Return(nil, nil).Once()
	mockRepo.On("GetByEmail", user.Email).Return(nil, nil).Once()
	mockRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		// Stored password is a hash and self-registration never grants admin.
		return u.Password != "password123" && u.Role == string(auth.RoleUser)
	})).Return(nil).Once()

	err := authService.RegisterUser(user)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Username already taken
	mockRepo.On("GetByUsername", user.Username).Return(&models.User{ID: 1}, nil).Once()
	err = authService.RegisterUser(user)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "username 'testuser' already taken")
	mockRepo.AssertExpectations(t)

	// Email already registered
	mockRepo.On("GetByUsername", user.Username).Return(nil, nil).Once()
	mockRepo.On("GetByEmail", user.Email).Return(&models.User{ID: 1}, nil).Once()
	err = authService.RegisterUser(user)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email 'test@example.com' already registered")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, new(MockTokenRepository), testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       123,
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
		Role:     string(auth.RoleAdmin),
	}

	// Successful login
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	token, loggedIn, err := authService.Login("test@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, float64(user.ID), claims["user_id"])
	assert.Equal(t, "admin", claims["role"])
	assert.NotEmpty(t, claims["jti"])
	mockRepo.AssertExpectations(t)

	// Wrong password
	mockRepo.On("GetByEmail", user.Email).Return(user, nil).Once()
	_, _, err = authService.Login("test@example.com", "wrongpassword")
	assert.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
	mockRepo.AssertExpectations(t)

	// Unknown email gets the same generic rejection
	mockRepo.On("GetByEmail", "nobody@example.com").Return(nil, fmt.Errorf("user with email nobody@example.com not found")).Once()
	_, _, err = authService.Login("nobody@example.com", "password123")
	assert.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenRepository)
	authService := services.NewAuthService(mockRepo, mockTokens, testJWTSecret)

	makeToken := func(jti string, exp time.Time) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id":  float64(123),
			"username": "testuser",
			"role":     "user",
			"jti":      jti,
			"exp":      exp.Unix(),
		})
		signed, _ := token.SignedString([]byte(testJWTSecret))
		return signed
	}

	// Valid token
	mockTokens.On("IsRevoked", "jti-valid").Return(false, nil).Once()
	claims, err := authService.ValidateToken(makeToken("jti-valid", time.Now().Add(time.Hour)))
	assert.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])

	authUser := services.AuthUserFromClaims(claims)
	assert.Equal(t, uint(123), authUser.ID)
	assert.Equal(t, auth.RoleUser, authUser.Role)

	// Revoked token
	mockTokens.On("IsRevoked", "jti-revoked").Return(true, nil).Once()
	_, err = authService.ValidateToken(makeToken("jti-revoked", time.Now().Add(time.Hour)))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "revoked")

	// Garbage token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Expired token never reaches the revocation check
	_, err = authService.ValidateToken(makeToken("jti-expired", time.Now().Add(-time.Hour)))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	mockTokens.AssertExpectations(t)
}

func TestAuthService_Logout(t *testing.T) {
	mockTokens := new(MockTokenRepository)
	authService := services.NewAuthService(new(MockUserRepository), mockTokens, testJWTSecret)

	expiresAt := time.Now().Add(time.Hour)
	mockTokens.On("Revoke", mock.MatchedBy(func(tok *models.RevokedToken) bool {
		return tok.JTI == "jti-logout" && tok.ExpiresAt.Equal(expiresAt)
	})).Return(nil).Once()

	err := authService.Logout("jti-logout", expiresAt)
	assert.NoError(t, err)
	mockTokens.AssertExpectations(t)

	// A token without a jti cannot be revoked
	err = authService.Logout("", expiresAt)
	assert.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
}

func TestAuthService_RoleHelpers(t *testing.T) {
	assert.True(t, auth.CanMutate(auth.RoleAdmin))
	assert.False(t, auth.CanMutate(auth.RoleUser))
	assert.Equal(t, auth.RoleAdmin, auth.ParseRole("admin"))
	assert.Equal(t, auth.RoleUser, auth.ParseRole("superuser"))
	assert.Equal(t, auth.RoleUser, auth.ParseRole(""))
}
