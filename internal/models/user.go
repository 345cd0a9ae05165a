// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. Authentication-only concerns live
// here; everything the recommendation engine cares about lives on UserProfile.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// ProfileStats holds counters derived from posts and connections. They are
// recomputed from source data, never incremented ad hoc by clients.
type ProfileStats struct {
	FollowersCount   int      `gorm:"default:0" json:"followers_count"`
	FollowingCount   int      `gorm:"default:0" json:"following_count"`
	PostCount        int      `gorm:"default:0" json:"post_count"`
	TravelScore      int      `gorm:"default:0;index" json:"travel_score"`
	VisitedCountries []string `gorm:"serializer:json" json:"visited_countries"`
}

// ProfilePreferences holds the tag sets used for compatibility matching.
type ProfilePreferences struct {
	TravelStyles []string `gorm:"serializer:json" json:"travel_styles"`
	Interests    []string `gorm:"serializer:json" json:"interests"`
	Languages    []string `gorm:"serializer:json" json:"languages"`
}

// UserProfile is the travel-facing profile for a user. Profiles are created
// lazily on first access, so a missing row is never an error to callers.
type UserProfile struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	UserID      uint     `gorm:"uniqueIndex;not null" json:"user_id"`
	Handle      string   `gorm:"uniqueIndex;not null" json:"handle"`
	DisplayName string   `json:"display_name"`
	Bio         string   `gorm:"type:text" json:"bio"`
	HomeCountry string   `gorm:"index" json:"home_country"`
	Age         *int     `json:"age,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`

	Stats       ProfileStats       `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
	Preferences ProfilePreferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`

	IsPrivate bool `gorm:"default:false" json:"is_private"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (UserProfile) TableName() string {
	return "user_profiles"
}

// HasCoordinates reports whether the profile carries a usable location.
func (p *UserProfile) HasCoordinates() bool {
	return p != nil && p.Latitude != nil && p.Longitude != nil
}

// ExperienceTier buckets a travel score into the tiers used by trip
// requirements: beginner >= 0, intermediate >= 500, advanced >= 1500.
func (p *UserProfile) ExperienceTier() ExperienceLevel {
	switch {
	case p.Stats.TravelScore >= 1500:
		return ExperienceAdvanced
	case p.Stats.TravelScore >= 500:
		return ExperienceIntermediate
	default:
		return ExperienceBeginner
	}
}
