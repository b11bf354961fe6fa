package tutorial

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
)

type TutorialHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *TutorialHandler) publish(c echo.Context, topic string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, topic, fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *TutorialHandler) indexTopic(c echo.Context, topic *models.Topic) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	doc := searchsvc.Document{
		Type:    "topic",
		ID:      topic.ID,
		Title:   topic.Title,
		Slug:    topic.Slug,
		Excerpt: topic.Content,
	}
	if err := searchsvc.IndexDocument(ctx, h.ES, h.Index, doc); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

type topicTitle struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type tutorialPayload struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"`
	Thumbnail   string       `json:"thumbnail"`
	Topics      []topicTitle `json:"topics"`
	TotalTopics int          `json:"total_topics"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func tutorialToPayload(t *models.Tutorial) tutorialPayload {
	topics := make([]topicTitle, len(t.Topics))
	for i, tp := range t.Topics {
		topics[i] = topicTitle{ID: tp.ID, Title: tp.Title, Slug: tp.Slug}
	}
	return tutorialPayload{
		ID:          t.ID,
		Title:       t.Title,
		Slug:        t.Slug,
		Description: t.Description,
		Thumbnail:   t.Thumbnail,
		Topics:      topics,
		TotalTopics: len(topics),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (h *TutorialHandler) GetTutorials(c echo.Context) error {
	var tutorials []models.Tutorial
	if err := h.DB.Preload("Topics").Find(&tutorials).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	payload := make([]tutorialPayload, len(tutorials))
	for i := range tutorials {
		payload[i] = tutorialToPayload(&tutorials[i])
	}
	return c.JSON(http.StatusOK, payload)
}

func (h *TutorialHandler) GetTutorial(c echo.Context) error {
	var tutorial models.Tutorial
	if err := h.DB.Preload("Topics").Where("slug = ?", c.Param("tutorial_slug")).First(&tutorial).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "tutorial not found")
	}
	return c.JSON(http.StatusOK, tutorialToPayload(&tutorial))
}

func (h *TutorialHandler) GetTopics(c echo.Context) error {
	var tutorial models.Tutorial
	if err := h.DB.Where("slug = ?", c.Param("tutorial_slug")).First(&tutorial).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "tutorial not found")
	}

	var topics []models.Topic
	if err := h.DB.Where("tutorial_id = ?", tutorial.ID).Find(&topics).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	payload := make([]topicTitle, len(topics))
	for i, tp := range topics {
		payload[i] = topicTitle{ID: tp.ID, Title: tp.Title, Slug: tp.Slug}
	}
	return c.JSON(http.StatusOK, payload)
}

type topicPayload struct {
	ID         uint             `json:"id"`
	TutorialID uint             `json:"tutorial_id"`
	Title      string           `json:"title"`
	Slug       string           `json:"slug"`
	Content    string           `json:"content"`
	VideoURL   string           `json:"video_url"`
	Views      uint             `json:"views"`
	Comments   []commentPayload `json:"comments"`
	Reactions  reactionCounts   `json:"reactions"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (h *TutorialHandler) GetTopic(c echo.Context) error {
	var topic models.Topic
	if err := h.DB.Where("slug = ?", c.Param("topic_slug")).First(&topic).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "topic not found")
	}

	topic.Views++
	if err := h.DB.Model(&topic).Update("views", topic.Views).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	comments, err := h.commentsForTopic(topic.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	counts, err := h.topicCounts(topic.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, topicPayload{
		ID:         topic.ID,
		TutorialID: topic.TutorialID,
		Title:      topic.Title,
		Slug:       topic.Slug,
		Content:    topic.Content,
		VideoURL:   topic.VideoURL,
		Views:      topic.Views,
		Comments:   comments,
		Reactions:  counts,
		CreatedAt:  topic.CreatedAt,
		UpdatedAt:  topic.UpdatedAt,
	})
}
