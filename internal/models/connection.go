package models

import "time"

// ConnectionType represents the kind of directed social edge.
type ConnectionType string

const (
	// ConnectionFollow is a follow edge.
	ConnectionFollow ConnectionType = "follow"
	// ConnectionFriend is a mutual friend edge.
	ConnectionFriend ConnectionType = "friend"
	// ConnectionBlock is a block edge.
	ConnectionBlock ConnectionType = "block"
	// ConnectionMute is a mute edge.
	ConnectionMute ConnectionType = "mute"
)

// SocialConnection is a directed edge from follower to following. The unique
// index keeps at most one active edge per (follower, following, type).
type SocialConnection struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	FollowerID  uint           `gorm:"not null;uniqueIndex:idx_connection_pair_type" json:"follower_id"`
	FollowingID uint           `gorm:"not null;uniqueIndex:idx_connection_pair_type;index" json:"following_id"`
	Type        ConnectionType `gorm:"type:varchar(16);not null;default:'follow';uniqueIndex:idx_connection_pair_type" json:"type"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM
func (SocialConnection) TableName() string {
	return "social_connections"
}
