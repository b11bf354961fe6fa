package reset

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/codenest/platform/internal/models"
)

// Password reset tokens are stateful one-time proofs: the HMAC is keyed
// over the user's current password hash and last-login timestamp, so any
// password change or login invalidates every outstanding token without a
// server-side store.

const DefaultTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

type Service struct {
	Secret []byte
	TTL    time.Duration
}

func New(secret []byte) *Service {
	return &Service{Secret: secret, TTL: DefaultTTL}
}

// EncodeUID makes the identity reference part of the reset link. It is
// self-describing, not secret: alone it grants nothing.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

func DecodeUID(s string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// Make issues a token for the user's current state.
func (s *Service) Make(user *models.User) string {
	ts := time.Now().Unix()
	return fmt.Sprintf("%x-%s", ts, s.proof(user, ts))
}

// Verify checks the signature and TTL against the user's current state.
func (s *Service) Verify(user *models.User, token string) error {
	tsHex, mac, ok := strings.Cut(token, "-")
	if !ok {
		return ErrInvalidToken
	}

	ts, err := strconv.ParseInt(tsHex, 16, 64)
	if err != nil {
		return ErrInvalidToken
	}

	issued := time.Unix(ts, 0)
	if issued.After(time.Now()) || time.Since(issued) > s.ttl() {
		return ErrInvalidToken
	}

	if !hmac.Equal([]byte(mac), []byte(s.proof(user, ts))) {
		return ErrInvalidToken
	}
	return nil
}

func (s *Service) proof(user *models.User, ts int64) string {
	var lastLogin int64
	if user.LastLogin != nil {
		lastLogin = user.LastLogin.Unix()
	}

	h := hmac.New(sha256.New, s.Secret)
	fmt.Fprintf(h, "%d|%s|%d|%d", user.ID, user.PasswordHash, lastLogin, ts)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Service) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultTTL
	}
	return s.TTL
}
