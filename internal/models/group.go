package models

import (
	"time"

	"gorm.io/gorm"
)

// GroupPrivacy controls whether a travel group is discoverable.
type GroupPrivacy string

const (
	// GroupPrivacyPublic indicates a discoverable, joinable group.
	GroupPrivacyPublic GroupPrivacy = "public"
	// GroupPrivacyPrivate indicates an invite-only group.
	GroupPrivacyPrivate GroupPrivacy = "private"
)

// GroupRole defines a member's role in a travel group.
type GroupRole string

const (
	// GroupRoleAdmin is the group admin role.
	GroupRoleAdmin GroupRole = "admin"
	// GroupRoleModerator is the group moderator role.
	GroupRoleModerator GroupRole = "moderator"
	// GroupRoleMember is the default member role.
	GroupRoleMember GroupRole = "member"
)

// TravelGroup is a persistent traveler community, not a single trip. Its tag
// set and country drive the groups recommendation strategy.
type TravelGroup struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"not null;index" json:"name"`
	Description    string       `gorm:"type:text" json:"description"`
	Category       string       `gorm:"index" json:"category"`
	Country        string       `gorm:"index" json:"country"`
	Tags           []string     `gorm:"serializer:json" json:"tags"`
	Privacy        GroupPrivacy `gorm:"type:varchar(16);default:'public';index" json:"privacy"`
	MemberCount    int          `gorm:"default:0" json:"member_count"`
	LastActivityAt time.Time    `gorm:"index" json:"last_activity_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (TravelGroup) TableName() string {
	return "travel_groups"
}

// GroupMembership maps users to travel groups and tracks role.
type GroupMembership struct {
	GroupID   uint         `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
	Group     *TravelGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	UserID    uint         `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Role      GroupRole    `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (GroupMembership) TableName() string {
	return "group_memberships"
}
