package tutorial

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/codenest/platform/internal/events"
	"github.com/codenest/platform/internal/logging"
	"github.com/codenest/platform/internal/models"
	"github.com/codenest/platform/internal/service/token"
)

type commentPayload struct {
	ID            uint      `json:"id"`
	User          string    `json:"user"`
	Content       string    `json:"content"`
	TotalLikes    int64     `json:"total_likes"`
	TotalDislikes int64     `json:"total_dislikes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (h *TutorialHandler) commentToPayload(comment *models.Comment) (commentPayload, error) {
	var username string
	if err := h.DB.Model(&models.User{}).
		Select("username").
		Where("id = ?", comment.UserID).
		Scan(&username).Error; err != nil {
		return commentPayload{}, err
	}

	var likes, dislikes int64
	if err := h.DB.Model(&models.CommentReaction{}).
		Where("comment_id = ? AND is_like = ?", comment.ID, true).
		Count(&likes).Error; err != nil {
		return commentPayload{}, err
	}
	if err := h.DB.Model(&models.CommentReaction{}).
		Where("comment_id = ? AND is_like = ?", comment.ID, false).
		Count(&dislikes).Error; err != nil {
		return commentPayload{}, err
	}

	return commentPayload{
		ID:            comment.ID,
		User:          username,
		Content:       comment.Content,
		TotalLikes:    likes,
		TotalDislikes: dislikes,
		CreatedAt:     comment.CreatedAt,
		UpdatedAt:     comment.UpdatedAt,
	}, nil
}

func (h *TutorialHandler) commentsForTopic(topicID uint) ([]commentPayload, error) {
	var comments []models.Comment
	if err := h.DB.Where("topic_id = ?", topicID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}

	payload := make([]commentPayload, len(comments))
	for i := range comments {
		p, err := h.commentToPayload(&comments[i])
		if err != nil {
			return nil, err
		}
		payload[i] = p
	}
	return payload, nil
}

func (h *TutorialHandler) ListComments(c echo.Context) error {
	var topic models.Topic
	if err := h.DB.Where("slug = ?", c.Param("topic_slug")).First(&topic).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "topic not found")
	}

	payload, err := h.commentsForTopic(topic.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, payload)
}

func (h *TutorialHandler) CreateComment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment_create")

	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var topic models.Topic
	if err := h.DB.Where("slug = ?", c.Param("topic_slug")).First(&topic).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "topic not found")
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil || req.Content == "" {
		l.Warn("comment_create_failed", "status", 400, "reason", "empty_content")
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}

	comment := models.Comment{
		TopicID: topic.ID,
		UserID:  userID,
		Content: req.Content,
	}
	if err := h.DB.Create(&comment).Error; err != nil {
		l.Error("comment_create_error", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	activity := models.UserActivity{
		UserID:       userID,
		CommentID:    &comment.ID,
		ActivityType: models.ActivityComment,
	}
	if err := h.DB.Create(&activity).Error; err != nil {
		l.Warn("activity_record_failed", "error", err)
	}

	h.publish(c, events.TopicContentEvents, map[string]any{
		"type":      "comment_created",
		"userID":    userID,
		"topicID":   topic.ID,
		"commentID": comment.ID,
	})

	payload, err := h.commentToPayload(&comment)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("comment_create_success", "status", 201, "commentID", comment.ID)
	return c.JSON(http.StatusCreated, payload)
}

func (h *TutorialHandler) GetComment(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var comment models.Comment
	if err := h.DB.First(&comment, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "comment not found")
	}

	payload, err := h.commentToPayload(&comment)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, payload)
}

func (h *TutorialHandler) PatchComment(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var comment models.Comment
	if err := h.DB.First(&comment, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "comment not found")
	}

	if comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "you can only edit your own comments")
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil || req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}

	comment.Content = req.Content
	if err := h.DB.Save(&comment).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	payload, err := h.commentToPayload(&comment)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, payload)
}

func (h *TutorialHandler) DeleteComment(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var comment models.Comment
	if err := h.DB.First(&comment, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "comment not found")
	}

	if comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "you can only delete your own comments")
	}

	if err := h.DB.Delete(&comment).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TutorialHandler) MyComments(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var comments []models.Comment
	if err := h.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&comments).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	payload := make([]commentPayload, len(comments))
	for i := range comments {
		p, err := h.commentToPayload(&comments[i])
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		payload[i] = p
	}
	return c.JSON(http.StatusOK, payload)
}
