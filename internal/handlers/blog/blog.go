package blog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/codenest/platform/internal/events"
	"github.com/codenest/platform/internal/models"
	searchsvc "github.com/codenest/platform/internal/service/search"
	"github.com/codenest/platform/internal/util"
)

type BlogHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *BlogHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicContentEvents, fmt.Sprint(event["postID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *BlogHandler) indexPost(c echo.Context, post *models.BlogPost) {
	if h.ES == nil || post.Status != models.PostStatusPublished {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	doc := searchsvc.Document{
		Type:    "post",
		ID:      post.ID,
		Title:   post.Title,
		Slug:    post.Slug,
		Excerpt: post.Excerpt,
	}
	if err := searchsvc.IndexDocument(ctx, h.ES, h.Index, doc); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *BlogHandler) GetCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Order("name ASC").Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *BlogHandler) GetPosts(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	base := h.DB.Model(&models.BlogPost{}).Where("status = ?", models.PostStatusPublished)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var posts []models.BlogPost
	if err := h.DB.
		Preload("Category").
		Preload("Tags").
		Where("status = ?", models.PostStatusPublished).
		Order("published_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": posts,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *BlogHandler) GetPost(c echo.Context) error {
	slug := c.Param("slug")

	var post models.BlogPost
	if err := h.DB.
		Preload("Category").
		Preload("Tags").
		Where("slug = ? AND status = ?", slug, models.PostStatusPublished).
		First(&post).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}

	post.Views++
	if err := h.DB.Model(&post).Update("views", post.Views).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Blog post retrieved and view count incremented successfully.",
		"data":    post,
	})
}
