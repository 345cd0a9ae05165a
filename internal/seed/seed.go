// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"wayfare/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumTrips    int
	ShouldClean bool
}

type place struct {
	name    string
	country string
	lat     float64
	lon     float64
}

var (
	places = []place{
		{"Lisbon", "Portugal", 38.7223, -9.1393},
		{"Porto", "Portugal", 41.1579, -8.6291},
		{"Ericeira", "Portugal", 38.9631, -9.4170},
		{"Barcelona", "Spain", 41.3874, 2.1686},
		{"Rome", "Italy", 41.9028, 12.4964},
		{"Kyoto", "Japan", 35.0116, 135.7681},
		{"Tokyo", "Japan", 35.6762, 139.6503},
		{"Hanoi", "Vietnam", 21.0278, 105.8342},
		{"Bangkok", "Thailand", 13.7563, 100.5018},
		{"Cusco", "Peru", -13.5320, -71.9675},
		{"Reykjavik", "Iceland", 64.1466, -21.9426},
		{"Marrakesh", "Morocco", 31.6295, -7.9811},
		{"Cape Town", "South Africa", -33.9249, 18.4241},
		{"Queenstown", "New Zealand", -45.0312, 168.6626},
		{"Oaxaca", "Mexico", 17.0732, -96.7266},
	}

	travelStyles = []string{
		"backpacking", "luxury", "budget", "slow travel", "road trip",
		"solo", "digital nomad", "family", "adventure",
	}

	interests = []string{
		"hiking", "surfing", "street food", "photography", "museums",
		"architecture", "diving", "history", "nightlife", "wildlife",
		"coffee", "cycling", "climbing", "markets", "festivals",
	}

	languages = []string{
		"English", "Spanish", "Portuguese", "French", "German",
		"Japanese", "Mandarin", "Italian",
	}

	groupSeeds = []models.TravelGroup{
		{Name: "Atlantic Surf Collective", Category: "adventure", Country: "Portugal", Tags: []string{"surfing", "beach", "camping"}},
		{Name: "Slow Food Wanderers", Category: "food", Country: "Italy", Tags: []string{"street food", "markets", "cooking"}},
		{Name: "Andes Trekking Club", Category: "adventure", Country: "Peru", Tags: []string{"hiking", "climbing", "photography"}},
		{Name: "Nomads of Southeast Asia", Category: "nomad", Country: "Thailand", Tags: []string{"coworking", "coffee", "street food"}},
		{Name: "Ryokan and Rail", Category: "culture", Country: "Japan", Tags: []string{"history", "architecture", "museums"}},
	}
)

// Seed populates the database with test data. All generated users share the
// password "password123".
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users, %d posts, %d trips...", opts.NumUsers, opts.NumPosts, opts.NumTrips)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db)

	profiles, err := f.CreateUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users with profiles", len(profiles))

	if err := f.CreatePosts(profiles, opts.NumPosts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", opts.NumPosts)

	if err := f.CreateGroups(profiles); err != nil {
		return fmt.Errorf("failed to create groups: %w", err)
	}
	log.Printf("created %d groups", len(groupSeeds))

	if err := f.CreateTrips(profiles, opts.NumTrips); err != nil {
		return fmt.Errorf("failed to create trips: %w", err)
	}
	log.Printf("created %d trips", opts.NumTrips)

	log.Println("Database seeding completed")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE trip_expenses, trip_messages, trip_poll_votes, trip_polls,
		trip_participants, group_trips, group_memberships, travel_groups,
		post_reactions, travel_posts, user_connections, user_profiles, users
		RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for seed data
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (f *Factory) pick(options []string) string {
	return options[f.r.Intn(len(options))]
}

func (f *Factory) sample(options []string, n int) []string {
	idx := f.r.Perm(len(options))
	if n > len(options) {
		n = len(options)
	}
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, options[i])
	}
	return out
}

// CreateUsers persists n users with travel profiles and returns the profiles.
func (f *Factory) CreateUsers(n int) ([]models.UserProfile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.UserProfile, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))
		user := models.User{
			Username:     username,
			Email:        gofakeit.Email(),
			PasswordHash: string(hash),
		}
		if err := f.db.Create(&user).Error; err != nil {
			return nil, err
		}

		home := places[f.r.Intn(len(places))]
		age := 18 + f.r.Intn(45)
		lat := home.lat + f.r.Float64()*0.2 - 0.1
		lon := home.lon + f.r.Float64()*0.2 - 0.1
		profile := models.UserProfile{
			UserID:      user.ID,
			Handle:      username,
			DisplayName: gofakeit.Name(),
			Bio:         gofakeit.Sentence(12),
			HomeCountry: home.country,
			Age:         &age,
			Latitude:    &lat,
			Longitude:   &lon,
			Preferences: models.ProfilePreferences{
				TravelStyles: f.sample(travelStyles, 1+f.r.Intn(3)),
				Interests:    f.sample(interests, 2+f.r.Intn(4)),
				Languages:    f.sample(languages, 1+f.r.Intn(3)),
			},
		}
		if err := f.db.Create(&profile).Error; err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// CreatePosts persists n travel posts spread across the given profiles with
// a realistic created_at spread over the last 60 days.
func (f *Factory) CreatePosts(profiles []models.UserProfile, n int) error {
	if len(profiles) == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		author := profiles[f.r.Intn(len(profiles))]
		dest := places[f.r.Intn(len(places))]
		lat, lon := dest.lat, dest.lon
		post := models.TravelPost{
			UserID: author.UserID,
			Destination: models.Destination{
				Name:      dest.name,
				Country:   dest.country,
				Latitude:  &lat,
				Longitude: &lon,
			},
			Content: gofakeit.Paragraph(1, 3, 12, "\n"),
			Tags:    f.sample(interests, 1+f.r.Intn(3)),
			Rating:  float64(2+f.r.Intn(7)) / 2.0,
			Likes:   f.r.Intn(120),
			Views:   f.r.Intn(2000),
			Status:  models.PostStatusActive,
			Enrichment: models.Enrichment{
				Sentiment: f.pick([]string{"positive", "neutral", "negative"}),
				Topics:    f.sample(interests, 1+f.r.Intn(2)),
			},
			CreatedAt: time.Now().Add(-time.Duration(f.r.Intn(60*24)) * time.Hour),
		}
		if err := f.db.Create(&post).Error; err != nil {
			return err
		}
	}
	return nil
}

// CreateGroups persists the built-in travel groups with a few random members.
func (f *Factory) CreateGroups(profiles []models.UserProfile) error {
	for _, g := range groupSeeds {
		group := g
		group.Privacy = models.GroupPrivacyPublic
		group.LastActivityAt = time.Now()
		if err := f.db.Create(&group).Error; err != nil {
			return err
		}
		for _, p := range f.sampleProfiles(profiles, 1+f.r.Intn(5)) {
			membership := models.GroupMembership{
				GroupID: group.ID,
				UserID:  p.UserID,
				Role:    models.GroupRoleMember,
			}
			if err := f.db.Create(&membership).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateTrips persists n planning-phase group trips with their creators as
// confirmed admin participants.
func (f *Factory) CreateTrips(profiles []models.UserProfile, n int) error {
	if len(profiles) == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		creator := profiles[f.r.Intn(len(profiles))]
		dest := places[f.r.Intn(len(places))]
		start := time.Now().AddDate(0, 1+f.r.Intn(6), 0)
		end := start.AddDate(0, 0, 3+f.r.Intn(14))
		trip := models.GroupTrip{
			CreatorID:   creator.UserID,
			Title:       fmt.Sprintf("%s %s", f.pick([]string{"Exploring", "Two weeks in", "Surf trip to", "Food tour of"}), dest.name),
			Description: gofakeit.Sentence(20),
			Destination: models.Destination{Name: dest.name, Country: dest.country},
			StartDate:   &start,
			EndDate:     &end,
			BudgetMin:   float64(300 + f.r.Intn(700)),
			BudgetMax:   float64(1500 + f.r.Intn(3000)),

			CapacityMin:     2,
			CapacityMax:     4 + f.r.Intn(8),
			CapacityCurrent: 1,
			Phase:           models.TripPhasePlanning,
		}
		if err := f.db.Create(&trip).Error; err != nil {
			return err
		}
		participant := models.TripParticipant{
			TripID: trip.ID,
			UserID: creator.UserID,
			Status: models.ParticipantConfirmed,
			Role:   models.TripRoleAdmin,
		}
		if err := f.db.Create(&participant).Error; err != nil {
			return err
		}
	}
	return nil
}

func (f *Factory) sampleProfiles(profiles []models.UserProfile, n int) []models.UserProfile {
	if n > len(profiles) {
		n = len(profiles)
	}
	idx := f.r.Perm(len(profiles))
	out := make([]models.UserProfile, 0, n)
	for _, i := range idx[:n] {
		out = append(out, profiles[i])
	}
	return out
}
