package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus represents the moderation/visibility status of a travel post.
type PostStatus string

const (
	// PostStatusActive indicates a normally visible post.
	PostStatusActive PostStatus = "active"
	// PostStatusArchived indicates a post hidden by its owner.
	PostStatusArchived PostStatus = "archived"
	// PostStatusReported indicates a post under moderation review.
	PostStatusReported PostStatus = "reported"
	// PostStatusHidden indicates a post removed from feeds by moderation.
	PostStatusHidden PostStatus = "hidden"
)

// Destination identifies the place a post or trip is about.
type Destination struct {
	Name      string   `gorm:"index" json:"name"`
	Country   string   `gorm:"index" json:"country"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Enrichment is AI-derived post metadata, attached at creation time and
// immutable afterwards.
type Enrichment struct {
	Sentiment            string   `json:"sentiment"`
	Topics               []string `gorm:"serializer:json" json:"topics"`
	ReadabilityScore     float64  `json:"readability_score"`
	EngagementPrediction float64  `json:"engagement_prediction"`
}

// TravelPost represents a user's post about a destination.
type TravelPost struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"not null;index" json:"user_id"`
	User        *UserProfile `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Destination Destination  `gorm:"embedded;embeddedPrefix:dest_" json:"destination"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	Tags        []string     `gorm:"serializer:json" json:"tags"`
	Rating      float64      `json:"rating"`

	// Engagement counters. All are non-negative; likes can go down only via
	// an explicit unlike toggle, the rest are monotonic.
	Likes     int `gorm:"default:0;index" json:"likes"`
	Comments  int `gorm:"default:0" json:"comments"`
	Shares    int `gorm:"default:0" json:"shares"`
	Bookmarks int `gorm:"default:0" json:"bookmarks"`
	Views     int `gorm:"default:0" json:"views"`

	Status     PostStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`
	Enrichment Enrichment `gorm:"embedded;embeddedPrefix:ai_" json:"enrichment"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (TravelPost) TableName() string {
	return "travel_posts"
}

// ReactionKind distinguishes like from bookmark reactions.
type ReactionKind string

const (
	// ReactionLike is a like reaction.
	ReactionLike ReactionKind = "like"
	// ReactionBookmark is a bookmark reaction.
	ReactionBookmark ReactionKind = "bookmark"
)

// PostReaction records a user's like or bookmark on a post. One row per
// (user, post, kind); toggling removes the row.
type PostReaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_reaction_user_post_kind" json:"user_id"`
	PostID    uint         `gorm:"not null;uniqueIndex:idx_reaction_user_post_kind" json:"post_id"`
	Kind      ReactionKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_reaction_user_post_kind" json:"kind"`
	CreatedAt time.Time    `json:"created_at"`
}

// TableName specifies the table name for GORM
func (PostReaction) TableName() string {
	return "post_reactions"
}
