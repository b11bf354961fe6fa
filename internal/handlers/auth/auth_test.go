package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codenest/platform/internal/events"
	"github.com/codenest/platform/internal/models"
	"github.com/codenest/platform/internal/service/reset"
	"github.com/codenest/platform/internal/service/token"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	db := initTestDB(t)
	tokens := &token.TokenService{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	h := &AuthHandler{
		DB:          db,
		Tokens:      tokens,
		Reset:       reset.New([]byte("test-reset-secret")),
		Producer:    &events.Producer{},
		FrontendURL: "http://localhost:3000",
	}
	return h, db
}

func jsonContext(t *testing.T, e *echo.Echo, method, path string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func registerAlice(t *testing.T, e *echo.Echo, h *AuthHandler) {
	c, rec := jsonContext(t, e, http.MethodPost, "/register", map[string]string{
		"username":  "alice",
		"email":     "a@x.com",
		"password":  "Str0ng!Pass",
		"password2": "Str0ng!Pass",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegister(t *testing.T) {
	h, db := newHandler(t)
	e := echo.New()

	c, rec := jsonContext(t, e, http.MethodPost, "/register", map[string]string{
		"username":  "alice",
		"email":     "a@x.com",
		"password":  "Str0ng!Pass",
		"password2": "Str0ng!Pass",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "alice", resp.User.Username)
	require.Equal(t, "a@x.com", resp.User.Email)
	require.NotEmpty(t, resp.User.ID)

	var stored models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&stored).Error)
	require.NotEqual(t, "Str0ng!Pass", stored.PasswordHash)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	h, _ := newHandler(t)
	e := echo.New()

	c, rec := jsonContext(t, e, http.MethodPost, "/register", map[string]string{
		"username":  "alice",
		"email":     "a@x.com",
		"password":  "Str0ng!Pass",
		"password2": "Different1",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Passwords must match.", resp["password"])
}

func TestRegisterWeakPassword(t *testing.T) {
	h, _ := newHandler(t)
	e := echo.New()

	c, rec := jsonContext(t, e, http.MethodPost, "/register", map[string]string{
		"username":  "alice",
		"email":     "a@x.com",
		"password":  "short",
		"password2": "short",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	h, _ := newHandler(t)
	e := echo.New()

	registerAlice(t, e, h)

	c, rec := jsonContext(t, e, http.MethodPost, "/register", map[string]string{
		"username":  "alice",
		"email":     "other@x.com",
		"password":  "Str0ng!Pass",
		"password2": "Str0ng!Pass",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	h, db := newHandler(t)
	e := echo.New()

	registerAlice(t, e, h)

	c, rec := jsonContext(t, e, http.MethodPost, "/login", map[string]string{
		"username": "alice",
		"password": "Str0ng!Pass",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User  models.User `json:"user"`
		Token struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "alice", resp.User.Username)
	require.NotEmpty(t, resp.Token.Access)
	require.NotEmpty(t, resp.Token.Refresh)

	var stored models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&stored).Error)
	require.NotNil(t, stored.LastLogin)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h, _ := newHandler(t)
	e := echo.New()

	registerAlice(t, e, h)

	// Wrong password and unknown username must be indistinguishable.
	for _, load := range []map[string]string{
		{"username": "alice", "password": "WrongPass1"},
		{"username": "nobody", "password": "Str0ng!Pass"},
	} {
		c, rec := jsonContext(t, e, http.MethodPost, "/login", load)
		require.NoError(t, h.Login(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "Invalid credentials.", resp["detail"])
	}
}

func loginAlice(t *testing.T, e *echo.Echo, h *AuthHandler) (access, refresh string) {
	c, rec := jsonContext(t, e, http.MethodPost, "/login", map[string]string{
		"username": "alice",
		"password": "Str0ng!Pass",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token.Access, resp.Token.Refresh
}

func TestRefresh(t *testing.T) {
	h, _ := newHandler(t)
	e := echo.New()

	registerAlice(t, e, h)
	_, refresh := loginAlice(t, e, h)

	c, rec := jsonContext(t, e, http.MethodPost, "/token/refresh", map[string]string{
		"refresh": refresh,
	})
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Access)
	require.Equal(t, refresh, resp.Refresh)
}

func TestRefreshInvalidToken(t *testing.T) {
	h, _ := newHandler(t)
	e := echo.New()

	c, rec := jsonContext(t, e, http.MethodPost, "/token/refresh", map[string]string{
		"refresh": "not-a-token",
	})
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout(t *testing.T) {
	h, _ := newHandler(t)
	e := echo.New()

	registerAlice(t, e, h)
	_, refresh := loginAlice(t, e, h)

	c, rec := jsonContext(t, e, http.MethodPost, "/logout", map[string]string{"refresh": refresh})
	c.Set("userID", uint(1))
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Logout successful", resp["detail"])

	// Revoked refresh must not mint new access credentials.
	cRefresh, recRefresh := jsonContext(t, e, http.MethodPost, "/token/refresh", map[string]string{
		"refresh": refresh,
	})
	require.NoError(t, h.Refresh(cRefresh))
	require.Equal(t, http.StatusBadRequest, recRefresh.Code)

	// Revoking twice is an error, not a no-op.
	cAgain, recAgain := jsonContext(t, e, http.MethodPost, "/logout", map[string]string{"refresh": refresh})
	cAgain.Set("userID", uint(1))
	require.NoError(t, h.Logout(cAgain))
	require.Equal(t, http.StatusBadRequest, recAgain.Code)
}

func TestChangePassword(t *testing.T) {
	h, _ := newHandler(t)
	e := echo.New()

	registerAlice(t, e, h)

	c, rec := jsonContext(t, e, http.MethodPost, "/change-password", map[string]string{
		"old_password":  "Str0ng!Pass",
		"new_password":  "N3w!Password",
		"new_password2": "N3w!Password",
	})
	c.Set("userID", uint(1))
	require.NoError(t, h.ChangePassword(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Old password no longer works.
	cOld, recOld := jsonContext(t, e, http.MethodPost, "/login", map[string]string{
		"username": "alice",
		"password": "Str0ng!Pass",
	})
	require.NoError(t, h.Login(cOld))
	require.Equal(t, http.StatusBadRequest, recOld.Code)

	cNew, recNew := jsonContext(t, e, http.MethodPost, "/login", map[string]string{
		"username": "alice",
		"password": "N3w!Password",
	})
	require.NoError(t, h.Login(cNew))
	require.Equal(t, http.StatusOK, recNew.Code)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	h, _ := newHandler(t)
	e := echo.New()

	registerAlice(t, e, h)

	c, rec := jsonContext(t, e, http.MethodPost, "/change-password", map[string]string{
		"old_password":  "WrongPass1",
		"new_password":  "N3w!Password",
		"new_password2": "N3w!Password",
	})
	c.Set("userID", uint(1))
	require.NoError(t, h.ChangePassword(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
