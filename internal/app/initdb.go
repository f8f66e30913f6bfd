package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/saajjewels/storefront/internal/domain"
)

// checkSuper makes sure the configured bootstrap admin account exists and
// still carries the admin role.
func (a *Application) checkSuper() {
	email := strings.ToLower(strings.TrimSpace(a.appConfig.Admin.Email))
	password := a.appConfig.Admin.Password
	if email == "" || password == "" {
		return
	}

	var user domain.User
	err := a.gormDB.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			zap.L().Error("failed to hash admin password", zap.Error(err))
			return
		}
		if err := a.gormDB.Create(&domain.User{
			Name:     "administrator",
			Email:    email,
			Password: string(hashed),
			Role:     domain.RoleAdmin,
		}).Error; err != nil {
			zap.L().Error("failed to create admin account", zap.Error(err))
		} else {
			zap.L().Info("initialized admin account", zap.String("email", email))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(user.Password) == ""
	resetRole := user.Role != domain.RoleAdmin
	if !resetPassword && !resetRole {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
		"role":       domain.RoleAdmin,
	}
	if resetPassword {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			zap.L().Error("failed to hash admin password", zap.Error(err))
			return
		}
		updates["password"] = string(hashed)
	}

	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired admin account",
		zap.String("email", email),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole))
}
