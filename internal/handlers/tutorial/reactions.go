package tutorial

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm/clause"

	"github.com/codenest/platform/internal/events"
	"github.com/codenest/platform/internal/logging"
	"github.com/codenest/platform/internal/models"
	"github.com/codenest/platform/internal/service/token"
)

type reactionCounts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

func parseAction(action string) (isLike bool, ok bool) {
	switch action {
	case "like":
		return true, true
	case "dislike":
		return false, true
	}
	return false, false
}

func (h *TutorialHandler) topicCounts(topicID uint) (reactionCounts, error) {
	var counts reactionCounts
	if err := h.DB.Model(&models.TopicReaction{}).
		Where("topic_id = ? AND is_like = ?", topicID, true).
		Count(&counts.Likes).Error; err != nil {
		return counts, err
	}
	if err := h.DB.Model(&models.TopicReaction{}).
		Where("topic_id = ? AND is_like = ?", topicID, false).
		Count(&counts.Dislikes).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

// ReactToComment upserts the caller's single reaction row for the
// comment. Re-sending the same action is a no-op; switching flips the
// existing row, so an actor is never in both sets at once.
func (h *TutorialHandler) ReactToComment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "comment_reaction")

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

	var req struct {
		Action string `json:"action"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	isLike, ok := parseAction(req.Action)
	if !ok {
		l.Warn("comment_reaction_failed", "status", 400, "reason", "invalid_action", "action", req.Action)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid action"})
	}

	reaction := models.CommentReaction{
		CommentID: comment.ID,
		UserID:    userID,
		IsLike:    isLike,
	}
	// The unique index on (comment_id, user_id) serializes racing
	// writers; the loser becomes an update.
	if err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "comment_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_like": isLike}),
	}).Create(&reaction).Error; err != nil {
		l.Error("comment_reaction_error", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.recordReactionActivity(c, userID, &comment.ID, isLike)

	payload, err := h.commentToPayload(&comment)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("comment_reaction_success", "status", 200, "commentID", comment.ID, "action", req.Action)
	return c.JSON(http.StatusOK, payload)
}

// ReactToTopic upserts the caller's single reaction row for the topic
// and returns the updated aggregate counts.
func (h *TutorialHandler) ReactToTopic(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "topic_reaction")

	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var topic models.Topic
	if err := h.DB.Where("slug = ?", c.Param("topic_slug")).First(&topic).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "topic not found")
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	isLike, ok := parseAction(req.Action)
	if !ok {
		l.Warn("topic_reaction_failed", "status", 400, "reason", "invalid_action", "action", req.Action)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid action"})
	}

	reaction := models.TopicReaction{
		TopicID: topic.ID,
		UserID:  userID,
		IsLike:  isLike,
	}
	if err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "topic_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_like": isLike}),
	}).Create(&reaction).Error; err != nil {
		l.Error("topic_reaction_error", "status", 500, "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.recordReactionActivity(c, userID, nil, isLike)

	counts, err := h.topicCounts(topic.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("topic_reaction_success", "status", 200, "topicID", topic.ID, "action", req.Action)
	return c.JSON(http.StatusOK, counts)
}

func (h *TutorialHandler) recordReactionActivity(c echo.Context, userID uint, commentID *uint, isLike bool) {
	activityType := models.ActivityDislike
	if isLike {
		activityType = models.ActivityLike
	}
	activity := models.UserActivity{
		UserID:       userID,
		CommentID:    commentID,
		ActivityType: activityType,
	}
	if err := h.DB.Create(&activity).Error; err != nil {
		c.Logger().Errorf("activity record error: %v", err)
	}

	h.publish(c, events.TopicContentEvents, map[string]any{
		"type":   "reaction",
		"userID": userID,
		"action": activityType,
	})
}
