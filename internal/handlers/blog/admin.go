package blog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/codenest/platform/internal/models"
	"github.com/codenest/platform/internal/service/token"
	"github.com/codenest/platform/internal/util"
)

func (h *BlogHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	slug, err := util.UniqueSlug(h.DB, "categories", req.Name)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	category := models.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "category already exists")
	}

	return c.JSON(http.StatusCreated, category)
}

type postRequest struct {
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	CategoryID *uint  `json:"category_id"`
	Status     string `json:"status"`
	ReadTime   uint   `json:"read_time"`
	IsFeatured bool   `json:"is_featured"`
}

func (h *BlogHandler) CreatePost(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req postRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" || req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and content are required")
	}

	status := req.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if status != models.PostStatusDraft && status != models.PostStatusPublished {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	slug, err := util.UniqueSlug(h.DB, "blog_posts", req.Title)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	post := models.BlogPost{
		Title:       req.Title,
		Slug:        slug,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		CategoryID:  req.CategoryID,
		AuthorID:    userID,
		Status:      status,
		ReadTime:    req.ReadTime,
		IsFeatured:  req.IsFeatured,
		PublishedAt: time.Now(),
	}
	if err := h.DB.Create(&post).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":   "post_created",
		"postID": post.ID,
		"title":  post.Title,
	})
	h.indexPost(c, &post)

	return c.JSON(http.StatusCreated, post)
}

func (h *BlogHandler) PatchPost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req postRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var post models.BlogPost
	if err := h.DB.First(&post, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Excerpt != "" {
		post.Excerpt = req.Excerpt
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.CategoryID != nil {
		post.CategoryID = req.CategoryID
	}
	if req.Status != "" {
		if req.Status != models.PostStatusDraft && req.Status != models.PostStatusPublished {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		post.Status = req.Status
	}
	if req.ReadTime != 0 {
		post.ReadTime = req.ReadTime
	}

	if err := h.DB.Save(&post).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":   "post_updated",
		"postID": post.ID,
		"title":  post.Title,
	})
	h.indexPost(c, &post)

	return c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) DeletePost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.Delete(&models.BlogPost{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, map[string]any{
		"type":   "post_deleted",
		"postID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
