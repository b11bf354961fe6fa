package tutorial

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/codenest/platform/internal/events"
	"github.com/codenest/platform/internal/models"
	"github.com/codenest/platform/internal/util"
)

func (h *TutorialHandler) CreateTutorial(c echo.Context) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Thumbnail   string `json:"thumbnail"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	slug, err := util.UniqueSlug(h.DB, "tutorials", req.Title)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	tutorial := models.Tutorial{
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
	}
	if err := h.DB.Create(&tutorial).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, events.TopicContentEvents, map[string]any{
		"type":       "tutorial_created",
		"tutorialID": tutorial.ID,
		"title":      tutorial.Title,
	})

	return c.JSON(http.StatusCreated, tutorial)
}

func (h *TutorialHandler) PatchTutorial(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var tutorial models.Tutorial
	if err := h.DB.First(&tutorial, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "tutorial not found")
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Thumbnail   string `json:"thumbnail"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Title != "" {
		tutorial.Title = req.Title
	}
	if req.Description != "" {
		tutorial.Description = req.Description
	}
	if req.Thumbnail != "" {
		tutorial.Thumbnail = req.Thumbnail
	}

	if err := h.DB.Save(&tutorial).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, tutorial)
}

func (h *TutorialHandler) DeleteTutorial(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.Delete(&models.Tutorial{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, events.TopicContentEvents, map[string]any{
		"type":       "tutorial_deleted",
		"tutorialID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *TutorialHandler) CreateTopic(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var tutorial models.Tutorial
	if err := h.DB.First(&tutorial, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "tutorial not found")
	}

	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		VideoURL string `json:"video_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	slug, err := util.UniqueSlug(h.DB, "topics", req.Title)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	topic := models.Topic{
		TutorialID: tutorial.ID,
		Title:      req.Title,
		Slug:       slug,
		Content:    req.Content,
		VideoURL:   req.VideoURL,
	}
	if err := h.DB.Create(&topic).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, events.TopicContentEvents, map[string]any{
		"type":    "topic_created",
		"topicID": topic.ID,
		"title":   topic.Title,
	})
	h.indexTopic(c, &topic)

	return c.JSON(http.StatusCreated, topic)
}

func (h *TutorialHandler) PatchTopic(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var topic models.Topic
	if err := h.DB.First(&topic, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "topic not found")
	}

	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		VideoURL string `json:"video_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Title != "" {
		topic.Title = req.Title
	}
	if req.Content != "" {
		topic.Content = req.Content
	}
	if req.VideoURL != "" {
		topic.VideoURL = req.VideoURL
	}

	if err := h.DB.Save(&topic).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	h.indexTopic(c, &topic)
	return c.JSON(http.StatusOK, topic)
}

func (h *TutorialHandler) DeleteTopic(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.DB.Delete(&models.Topic{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.publish(c, events.TopicContentEvents, map[string]any{
		"type":    "topic_deleted",
		"topicID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
