package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codenest/platform/internal/models"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken covers every refresh-credential failure: malformed,
// expired, unknown, or revoked. Callers map it to a 400 without telling
// the client which case it hit.
var ErrInvalidToken = errors.New("invalid token")

type TokenService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// IssuePair mints an access/refresh credential pair and persists the
// refresh credential's JTI so it can be revoked later.
func (t *TokenService) IssuePair(user *models.User) (*Pair, error) {
	access, err := SignAccessToken(user.ID, user.Role, t.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	jti := uuid.NewString()
	exp := time.Now().Add(RefreshTokenTTL)
	refresh, err := SignRefreshToken(user.ID, user.Role, jti, t.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	row := models.RefreshToken{
		JTI:       jti,
		UserID:    user.ID,
		ExpiresAt: exp.Unix(),
		Revoked:   false,
	}
	if err := t.DB.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &Pair{Access: access, Refresh: refresh}, nil
}

// Rotate validates a refresh credential and returns a fresh access
// credential. The refresh credential itself is not rotated: the caller
// gets the same one back until it expires or is revoked.
func (t *TokenService) Rotate(rawRefresh string) (*Pair, error) {
	claims, err := t.ValidateRefresh(rawRefresh)
	if err != nil {
		return nil, err
	}

	userID := uint(claims["sub"].(float64))
	role, _ := claims["role"].(string)

	access, err := SignAccessToken(userID, role, t.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &Pair{Access: access, Refresh: rawRefresh}, nil
}

// Revoke durably blacklists a refresh credential. Revoking twice is an
// error, not a no-op.
func (t *TokenService) Revoke(rawRefresh string) error {
	claims, err := parseRefresh(rawRefresh, t.RefreshSecret)
	if err != nil {
		return ErrInvalidToken
	}

	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return ErrInvalidToken
	}

	res := t.DB.Model(&models.RefreshToken{}).
		Where("jti = ? AND revoked = ?", jti, false).
		Update("revoked", true)
	if res.Error != nil {
		return fmt.Errorf("db error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInvalidToken
	}

	return nil
}

// ValidateRefresh checks signature, typ claim, and the persisted row
// (existence, revocation, expiry).
func (t *TokenService) ValidateRefresh(rawRefresh string) (jwt.MapClaims, error) {
	claims, err := parseRefresh(rawRefresh, t.RefreshSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return nil, ErrInvalidToken
	}

	var stored models.RefreshToken
	if err := t.DB.Where("jti = ?", jti).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if stored.Revoked {
		return nil, ErrInvalidToken
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func parseRefresh(rawToken string, secret []byte) (jwt.MapClaims, error) {
	tkn, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := tkn.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}

	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return nil, errors.New("not a refresh token")
	}

	return claims, nil
}

func SignAccessToken(userID uint, role string, accessSecret []byte) (string, error) {
	exp := time.Now().Add(AccessTokenTTL)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(accessSecret)
}

func SignRefreshToken(userID uint, role, jti string, refreshSecret []byte) (string, error) {
	exp := time.Now().Add(RefreshTokenTTL)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"typ":  "refresh",
		"jti":  jti,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(refreshSecret)
}
