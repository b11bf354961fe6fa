package blog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codenest/platform/internal/events"
	"github.com/codenest/platform/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.BlogPost{},
	)
	if err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newHandler(t *testing.T) (*BlogHandler, *gorm.DB) {
	db := initTestDB(t)
	return &BlogHandler{DB: db, Producer: &events.Producer{}}, db
}

func jsonContext(t *testing.T, e *echo.Echo, method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func seedPost(t *testing.T, db *gorm.DB, title, slug, status string) *models.BlogPost {
	post := models.BlogPost{
		Title:    title,
		Slug:     slug,
		Content:  "content",
		AuthorID: 1,
		Status:   status,
	}
	require.NoError(t, db.Create(&post).Error)
	return &post
}

func TestGetPostsPublishedOnly(t *testing.T) {
	h, db := newHandler(t)
	e := echo.New()

	seedPost(t, db, "Published", "published", models.PostStatusPublished)
	seedPost(t, db, "Draft", "draft", models.PostStatusDraft)

	c, rec := jsonContext(t, e, http.MethodGet, "/blog-posts", nil)
	require.NoError(t, h.GetPosts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.BlogPost `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
			Page  int   `json:"page"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "Published", resp.Data[0].Title)
	require.Equal(t, int64(1), resp.Meta.Total)
}

func TestGetPostsPagination(t *testing.T) {
	h, db := newHandler(t)
	e := echo.New()

	for i := 0; i < 15; i++ {
		seedPost(t, db, "Post", "post-"+strconv.Itoa(i), models.PostStatusPublished)
	}

	c, rec := jsonContext(t, e, http.MethodGet, "/blog-posts?page=2&size=10", nil)
	require.NoError(t, h.GetPosts(c))

	var resp struct {
		Data []models.BlogPost `json:"data"`
		Meta struct {
			Total      int64 `json:"total"`
			TotalPages int64 `json:"total_pages"`
			HasPrev    bool  `json:"has_prev"`
			HasNext    bool  `json:"has_next"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 5)
	require.Equal(t, int64(15), resp.Meta.Total)
	require.Equal(t, int64(2), resp.Meta.TotalPages)
	require.True(t, resp.Meta.HasPrev)
	require.False(t, resp.Meta.HasNext)
}

func TestGetPostIncrementsViews(t *testing.T) {
	h, db := newHandler(t)
	e := echo.New()

	post := seedPost(t, db, "Go Basics", "go-basics", models.PostStatusPublished)

	for i := 1; i <= 2; i++ {
		c, rec := jsonContext(t, e, http.MethodGet, "/blog-posts/go-basics", nil)
		c.SetParamNames("slug")
		c.SetParamValues("go-basics")
		require.NoError(t, h.GetPost(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var stored models.BlogPost
		require.NoError(t, db.First(&stored, post.ID).Error)
		require.Equal(t, uint(i), stored.Views)
	}
}

func TestGetPostDraftHidden(t *testing.T) {
	h, db := newHandler(t)
	e := echo.New()

	seedPost(t, db, "Secret", "secret", models.PostStatusDraft)

	c, _ := jsonContext(t, e, http.MethodGet, "/blog-posts/secret", nil)
	c.SetParamNames("slug")
	c.SetParamValues("secret")
	err := h.GetPost(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestCreatePostSlugDedupe(t *testing.T) {
	h, _ := newHandler(t)
	e := echo.New()

	slugs := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		c, rec := jsonContext(t, e, http.MethodPost, "/admin/blog-posts", map[string]any{
			"title":   "Go Basics",
			"content": "content",
			"status":  models.PostStatusPublished,
		})
		c.Set("userID", uint(1))
		c.Set("role", "admin")
		require.NoError(t, h.CreatePost(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		var post models.BlogPost
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
		slugs = append(slugs, post.Slug)
	}

	require.Equal(t, []string{"go-basics", "go-basics-1", "go-basics-2"}, slugs)
}

func TestCreatePostInvalidStatus(t *testing.T) {
	h, _ := newHandler(t)
	e := echo.New()

	c, _ := jsonContext(t, e, http.MethodPost, "/admin/blog-posts", map[string]any{
		"title":   "Go Basics",
		"content": "content",
		"status":  "archived",
	})
	c.Set("userID", uint(1))
	c.Set("role", "admin")
	err := h.CreatePost(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestPatchPostStatusTransition(t *testing.T) {
	h, db := newHandler(t)
	e := echo.New()

	post := seedPost(t, db, "Draft Post", "draft-post", models.PostStatusDraft)

	c, rec := jsonContext(t, e, http.MethodPatch, "/admin/blog-posts/1", map[string]string{
		"status": models.PostStatusPublished,
	})
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(post.ID)))
	require.NoError(t, h.PatchPost(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.BlogPost
	require.NoError(t, db.First(&stored, post.ID).Error)
	require.Equal(t, models.PostStatusPublished, stored.Status)
}

func TestDeletePost(t *testing.T) {
	h, db := newHandler(t)
	e := echo.New()

	post := seedPost(t, db, "Gone", "gone", models.PostStatusPublished)

	c, rec := jsonContext(t, e, http.MethodDelete, "/admin/blog-posts/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(post.ID)))
	require.NoError(t, h.DeletePost(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.BlogPost{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestCreateCategory(t *testing.T) {
	h, db := newHandler(t)
	e := echo.New()

	c, rec := jsonContext(t, e, http.MethodPost, "/admin/categories", map[string]string{
		"name":        "Web Development",
		"description": "Frontend and backend",
	})
	require.NoError(t, h.CreateCategory(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var category models.Category
	require.NoError(t, db.Where("name = ?", "Web Development").First(&category).Error)
	require.Equal(t, "web-development", category.Slug)
}

func TestGetCategories(t *testing.T) {
	h, db := newHandler(t)
	e := echo.New()

	require.NoError(t, db.Create(&models.Category{Name: "Go", Slug: "go"}).Error)
	require.NoError(t, db.Create(&models.Category{Name: "Databases", Slug: "databases"}).Error)

	c, rec := jsonContext(t, e, http.MethodGet, "/categories", nil)
	require.NoError(t, h.GetCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.Len(t, categories, 2)
	require.Equal(t, "Databases", categories[0].Name)
}
