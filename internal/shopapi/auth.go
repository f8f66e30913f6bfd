package shopapi

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/saajjewels/storefront/internal/apperr"
	"github.com/saajjewels/storefront/internal/domain"
	"github.com/saajjewels/storefront/internal/guard"
	"github.com/saajjewels/storefront/internal/webserver"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgEmailTaken         = "Email already registered"
	msgUserNotFound       = "User not found"
)

type registerPayload struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone" validate:"max=32"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func registerAuthRoutes(s *webserver.Server, session echo.MiddlewareFunc) {
	g := s.Group("/auth")
	g.POST("/register", registerUser)
	g.POST("/login", loginUser)

	u := s.ApiGroup("/users", session)
	u.GET("/me", currentUser)
	u.GET("/me/orders", currentUserOrders)
}

func registerUser(c echo.Context) error {
	var payload registerPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	var count int64
	if err := GetDB(c).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return apperr.Storage(err, "Error registering user")
	}
	if count > 0 {
		return apperr.Conflict(msgEmailTaken)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &domain.User{
		Name:     strings.TrimSpace(payload.Name),
		Email:    email,
		Password: string(hashed),
		Phone:    payload.Phone,
		Role:     domain.RoleCustomer,
	}
	if err := GetDB(c).Create(user).Error; err != nil {
		return apperr.Storage(err, "Error registering user")
	}

	token, err := GetAppContext(c).Sessions().Issue(user)
	if err != nil {
		return err
	}
	return created(c, authResult{Token: token, User: user})
}

func loginUser(c echo.Context) error {
	var payload loginPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	var user domain.User
	err := GetDB(c).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Unauthorized(msgInvalidCredentials)
	case err != nil:
		return apperr.Storage(err, "Error signing in")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil {
		return apperr.Unauthorized(msgInvalidCredentials)
	}

	token, err := GetAppContext(c).Sessions().Issue(&user)
	if err != nil {
		return err
	}
	return ok(c, authResult{Token: token, User: &user})
}

// sessionUser loads the account behind the verified session token
func sessionUser(c echo.Context) (*domain.User, error) {
	claims := guard.Current(c)
	if claims == nil {
		return nil, apperr.Unauthorized(guard.MsgNotAuthenticated)
	}
	var user domain.User
	err := GetDB(c).First(&user, claims.UserID()).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound(err, msgUserNotFound)
	case err != nil:
		return nil, apperr.Storage(err, "Error fetching user")
	}
	return &user, nil
}

func currentUser(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func currentUserOrders(c echo.Context) error {
	user, err := sessionUser(c)
	if err != nil {
		return err
	}
	rows := []domain.Order{}
	if err := GetDB(c).Where("customer_id = ?", user.ID).Order("id DESC").Find(&rows).Error; err != nil {
		return apperr.Storage(err, "Error fetching orders")
	}
	return ok(c, rows)
}
