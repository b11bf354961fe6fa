package models

import (
	"time"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string     `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	Role         string     `gorm:"not null;default:user"    json:"role"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	JTI       string `gorm:"uniqueIndex;not null" json:"jti"`
	UserID    uint   `gorm:"index;not null"       json:"user_id"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
	Revoked   bool   `gorm:"default:false"        json:"revoked"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey"           json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Tag struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

type BlogPost struct {
	ID            uint      `gorm:"primaryKey"             json:"id"`
	Title         string    `gorm:"not null"               json:"title"`
	Slug          string    `gorm:"uniqueIndex;not null"   json:"slug"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `gorm:"not null"               json:"content"`
	FeaturedImage string    `json:"featured_image"`
	CategoryID    *uint     `gorm:"index"                  json:"-"`
	Category      *Category `json:"category,omitempty"`
	Tags          []Tag     `gorm:"many2many:blog_post_tags" json:"tags"`
	AuthorID      uint      `gorm:"not null"               json:"-"`
	Status        string    `gorm:"index;default:draft"    json:"status"`
	Views         uint      `gorm:"default:0"              json:"views"`
	ReadTime      uint      `json:"read_time"`
	IsFeatured    bool      `gorm:"default:false"          json:"is_featured"`
	PublishedAt   time.Time `gorm:"index"                  json:"published_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Tutorial struct {
	ID          uint      `gorm:"primaryKey"           json:"id"`
	Title       string    `gorm:"not null"             json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	Topics      []Topic   `json:"topics,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Topic struct {
	ID         uint      `gorm:"primaryKey"           json:"id"`
	TutorialID uint      `gorm:"index;not null"       json:"tutorial_id"`
	Title      string    `gorm:"not null"             json:"title"`
	Slug       string    `gorm:"uniqueIndex;not null" json:"slug"`
	Content    string    `json:"content"`
	VideoURL   string    `json:"video_url"`
	Views      uint      `gorm:"default:0"            json:"views"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	TopicID   uint      `gorm:"index;not null" json:"topic_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"not null"       json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// One reaction row per (comment, user). Switching like<->dislike mutates
// the existing row; the unique index serializes concurrent writers.
type CommentReaction struct {
	ID        uint `gorm:"primaryKey"                            json:"id"`
	CommentID uint `gorm:"uniqueIndex:idx_comment_user;not null" json:"comment_id"`
	UserID    uint `gorm:"uniqueIndex:idx_comment_user;not null" json:"user_id"`
	IsLike    bool `gorm:"not null"                              json:"is_like"`
}

type TopicReaction struct {
	ID      uint `gorm:"primaryKey"                          json:"id"`
	TopicID uint `gorm:"uniqueIndex:idx_topic_user;not null" json:"topic_id"`
	UserID  uint `gorm:"uniqueIndex:idx_topic_user;not null" json:"user_id"`
	IsLike  bool `gorm:"not null"                            json:"is_like"`
}

const (
	ActivityComment = "comment"
	ActivityLike    = "like"
	ActivityDislike = "dislike"
)

type UserActivity struct {
	ID           uint      `gorm:"primaryKey"     json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	CommentID    *uint     `json:"comment_id,omitempty"`
	ActivityType string    `gorm:"not null"       json:"activity_type"`
	CreatedAt    time.Time `json:"created_at"`
}
