// Package service contains the business logic for recommendations, trending
// aggregation and group trip coordination.
package service

import (
	"fmt"
	"math"
	"strings"

	"wayfare/internal/models"
)

// Factor weights for the compatibility score. The weighted sum is divided by
// 100, so with all five factors present the score spans [0, 1]; when a factor
// cannot participate (missing coordinates) the achievable maximum shrinks.
const (
	weightTravelStyle = 30.0
	weightInterests   = 25.0
	weightLanguages   = 20.0
	weightExperience  = 15.0
	weightProximity   = 10.0

	proximityRangeKm = 5000.0
	experienceRange  = 1000.0
	maxMatchReasons  = 3
	earthRadiusKm    = 6371.0
)

// CompatibilityScorer computes the multi-factor compatibility between two
// traveler profiles. It is a pure function of its inputs: no network or
// persistence calls.
type CompatibilityScorer struct{}

// NewCompatibilityScorer returns a new CompatibilityScorer.
func NewCompatibilityScorer() *CompatibilityScorer {
	return &CompatibilityScorer{}
}

// Score returns a compatibility value in [0, 1] between a and b, using a's
// post history to widen a's interest set. Because only a's posts participate,
// Score(a, b, aPosts) and Score(b, a, bPosts) may differ; the shared factors
// themselves are symmetric.
func (s *CompatibilityScorer) Score(a, b *models.UserProfile, aPosts []models.TravelPost) float64 {
	if a == nil || b == nil {
		return 0
	}

	aInterests := interestsWithPostTopics(a, aPosts)

	sum := weightTravelStyle * Overlap(a.Preferences.TravelStyles, b.Preferences.TravelStyles)
	sum += weightInterests * Overlap(aInterests, b.Preferences.Interests)
	sum += weightLanguages * Overlap(a.Preferences.Languages, b.Preferences.Languages)
	sum += weightExperience * experienceSimilarity(a.Stats.TravelScore, b.Stats.TravelScore)

	if a.HasCoordinates() && b.HasCoordinates() {
		km := haversineKm(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
		sum += weightProximity * math.Max(0, 1-km/proximityRangeKm)
	}

	return sum / 100
}

// MatchReasons returns up to three human-readable reasons describing why a
// and b match. Reasons are descriptive only and never feed back into Score.
func (s *CompatibilityScorer) MatchReasons(a, b *models.UserProfile, aPosts []models.TravelPost) []string {
	if a == nil || b == nil {
		return nil
	}

	reasons := make([]string, 0, maxMatchReasons)

	if shared := intersect(a.Preferences.TravelStyles, b.Preferences.TravelStyles); len(shared) > 0 {
		reasons = append(reasons, fmt.Sprintf("You both enjoy %s travel", strings.Join(shared, ", ")))
	}

	aInterests := interestsWithPostTopics(a, aPosts)
	if shared := intersect(aInterests, b.Preferences.Interests); len(shared) > 0 {
		reasons = append(reasons, fmt.Sprintf("Shared interests: %s", strings.Join(shared, ", ")))
	}

	if shared := intersect(a.Preferences.Languages, b.Preferences.Languages); len(shared) > 0 {
		reasons = append(reasons, fmt.Sprintf("You both speak %s", strings.Join(shared, ", ")))
	}

	if len(reasons) < maxMatchReasons {
		diff := a.Stats.TravelScore - b.Stats.TravelScore
		if diff < 0 {
			diff = -diff
		}
		if diff <= 200 {
			reasons = append(reasons, "Similar travel experience levels")
		}
	}

	if len(reasons) < maxMatchReasons && a.HasCoordinates() && b.HasCoordinates() {
		km := haversineKm(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
		if km < 500 {
			reasons = append(reasons, fmt.Sprintf("Only %.0f km apart", km))
		}
	}

	if len(reasons) > maxMatchReasons {
		reasons = reasons[:maxMatchReasons]
	}
	return reasons
}

// Overlap is the Jaccard overlap of two tag sets: |intersection| / |union|,
// case-insensitive, 0 when either set is empty.
func Overlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := normalizeSet(a)
	setB := normalizeSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tag := range setA {
		if _, ok := setB[tag]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func experienceSimilarity(scoreA, scoreB int) float64 {
	diff := float64(scoreA - scoreB)
	if diff < 0 {
		diff = -diff
	}
	return math.Max(0, 1-diff/experienceRange)
}

// haversineKm computes the great-circle distance between two coordinates.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func interestsWithPostTopics(p *models.UserProfile, posts []models.TravelPost) []string {
	if len(posts) == 0 {
		return p.Preferences.Interests
	}
	merged := make([]string, 0, len(p.Preferences.Interests)+len(posts))
	merged = append(merged, p.Preferences.Interests...)
	for i := range posts {
		merged = append(merged, posts[i].Enrichment.Topics...)
	}
	return merged
}

func normalizeSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

func intersect(a, b []string) []string {
	setB := normalizeSet(b)
	seen := make(map[string]struct{})
	var out []string
	for _, t := range a {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" {
			continue
		}
		if _, ok := setB[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func intersects(a, b []string) bool {
	return len(intersect(a, b)) > 0
}
