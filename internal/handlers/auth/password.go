package auth

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codenest/platform/internal/events"
	"github.com/codenest/platform/internal/hash"
	"github.com/codenest/platform/internal/logging"
	"github.com/codenest/platform/internal/models"
	"github.com/codenest/platform/internal/service/reset"
	"github.com/codenest/platform/internal/service/token"
)

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "change_password")

	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		OldPassword  string `json:"old_password"`
		NewPassword  string `json:"new_password"`
		NewPassword2 string `json:"new_password2"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("change_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		l.Error("change_password_error", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if !hash.CheckPassword(user.PasswordHash, req.OldPassword) {
		l.Warn("change_password_failed", "status", 400, "reason", "wrong_current", "userID", userID)
		return c.JSON(http.StatusBadRequest, echo.Map{"old_password": "Current password is incorrect."})
	}
	if req.NewPassword != req.NewPassword2 {
		l.Warn("change_password_failed", "status", 400, "reason", "password_mismatch", "userID", userID)
		return c.JSON(http.StatusBadRequest, echo.Map{"new_password": "Passwords must match."})
	}
	if err := hash.ValidateStrength(req.NewPassword); err != nil {
		l.Warn("change_password_failed", "status", 400, "reason", "weak_password", "userID", userID)
		return c.JSON(http.StatusBadRequest, echo.Map{"new_password": err.Error()})
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		l.Error("change_password_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.DB.Model(&user).Update("password_hash", pwHash).Error; err != nil {
		l.Error("change_password_error", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   "password_changed",
		"userID": user.ID,
	})

	l.Info("change_password_success", "status", 200, "userID", userID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "request_password_reset")

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("reset_request_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		l.Warn("reset_request_failed", "status", 400, "reason", "unknown_email")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User with this email does not exist"})
	}

	uid := reset.EncodeUID(user.ID)
	tok := h.Reset.Make(&user)
	link := fmt.Sprintf("%s/reset-password/%s/%s/", h.FrontendURL, uid, tok)

	// Delivery is fire-and-forget: a failed dispatch never rolls back
	// token issuance.
	h.publish(c, events.TopicNotificationEvents, fmt.Sprint(user.ID), map[string]any{
		"type":       "password_reset_requested",
		"userID":     user.ID,
		"email":      user.Email,
		"reset_link": link,
	})

	l.Info("reset_request_success", "status", 200, "userID", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset link sent"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reset_password")

	uid := c.Param("uid")
	tok := c.Param("token")

	var req struct {
		NewPassword  string `json:"new_password"`
		NewPassword2 string `json:"new_password2"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("reset_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	userID, err := reset.DecodeUID(uid)
	if err != nil {
		l.Warn("reset_failed", "status", 400, "reason", "bad_uid")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired token"})
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		l.Warn("reset_failed", "status", 400, "reason", "unknown_user")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired token"})
	}

	if err := h.Reset.Verify(&user, tok); err != nil {
		l.Warn("reset_failed", "status", 400, "reason", "bad_token", "userID", user.ID)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired token"})
	}

	if req.NewPassword != req.NewPassword2 {
		l.Warn("reset_failed", "status", 400, "reason", "password_mismatch", "userID", user.ID)
		return c.JSON(http.StatusBadRequest, echo.Map{"new_password": "Passwords must match."})
	}
	if err := hash.ValidateStrength(req.NewPassword); err != nil {
		l.Warn("reset_failed", "status", 400, "reason", "weak_password", "userID", user.ID)
		return c.JSON(http.StatusBadRequest, echo.Map{"new_password": err.Error()})
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		l.Error("reset_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// Updating the hash also invalidates every other outstanding token
	// for this user.
	if err := h.DB.Model(&user).Update("password_hash", pwHash).Error; err != nil {
		l.Error("reset_error", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":   "password_reset",
		"userID": user.ID,
	})

	l.Info("reset_success", "status", 200, "userID", user.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successful"})
}
