package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/codenest/platform/internal/events"
	"github.com/codenest/platform/internal/hash"
	"github.com/codenest/platform/internal/logging"
	"github.com/codenest/platform/internal/models"
	"github.com/codenest/platform/internal/service/reset"
	"github.com/codenest/platform/internal/service/token"
)

type AuthHandler struct {
	DB          *gorm.DB
	Tokens      *token.TokenService
	Reset       *reset.Service
	Producer    *events.Producer
	FrontendURL string
}

func (h *AuthHandler) publish(c echo.Context, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Password2 string `json:"password2"`
	}

	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Username == "" || req.Email == "" {
		l.Warn("register_failed", "status", 400, "reason", "missing_fields")
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Username and email are required."})
	}
	if req.Password != req.Password2 {
		l.Warn("register_failed", "status", 400, "reason", "password_mismatch")
		return c.JSON(http.StatusBadRequest, echo.Map{"password": "Passwords must match."})
	}
	if err := hash.ValidateStrength(req.Password); err != nil {
		l.Warn("register_failed", "status", 400, "reason", "weak_password")
		return c.JSON(http.StatusBadRequest, echo.Map{"password": err.Error()})
	}

	var existing models.User
	err := h.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error
	if err == nil {
		l.Warn("register_failed", "status", 400, "reason", "user_exists")
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "A user with that username or email already exists."})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register_error", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := h.DB.Create(&user).Error; err != nil {
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
		"email":    user.Email,
	})

	l.Info("register_success", "status", 201, "userID", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{"user": user})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	// Unknown username and wrong password must be indistinguishable.
	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid credentials")
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid credentials."})
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 400, "reason", "invalid credentials")
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Invalid credentials."})
	}

	now := time.Now()
	user.LastLogin = &now
	if err := h.DB.Model(&user).Update("last_login", now).Error; err != nil {
		l.Error("login_error", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pair, err := h.Tokens.IssuePair(&user)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "token_issue", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("login_success", "status", 200, "userID", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"user":  user,
		"token": pair,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "token_refresh")

	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Tokens.Rotate(req.Refresh)
	if err != nil {
		l.Warn("refresh_failed", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired refresh token"})
	}

	l.Info("refresh_success", "status", 200)
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.Bind(&req); err != nil || req.Refresh == "" {
		l.Warn("logout_failed", "status", 400, "reason", "missing_refresh")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid token or already blacklisted"})
	}

	if err := h.Tokens.Revoke(req.Refresh); err != nil {
		l.Warn("logout_failed", "status", 400, "userID", userID, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid token or already blacklisted"})
	}

	l.Info("logout_success", "status", 200, "userID", userID)
	return c.JSON(http.StatusOK, echo.Map{"detail": "Logout successful"})
}
