package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"wayfare/internal/cache"
	"wayfare/internal/models"
	"wayfare/internal/observability"
	"wayfare/internal/repository"
)

// RecommendationKind selects a recommendation strategy.
type RecommendationKind string

const (
	// KindPosts recommends travel posts matching the requester's interests.
	KindPosts RecommendationKind = "posts"
	// KindUsers recommends travelers with overlapping style or countries.
	KindUsers RecommendationKind = "users"
	// KindDestinations recommends trending destinations re-ranked by interest.
	KindDestinations RecommendationKind = "destinations"
	// KindCompanions recommends compatible travel companions.
	KindCompanions RecommendationKind = "travel_companions"
	// KindGroups recommends public travel groups worth joining.
	KindGroups RecommendationKind = "groups"
)

// ParseRecommendationKind validates a caller-supplied kind string. A bad
// kind is a caller error and is rejected before any data access.
func ParseRecommendationKind(s string) (RecommendationKind, error) {
	switch RecommendationKind(s) {
	case KindPosts, KindUsers, KindDestinations, KindCompanions, KindGroups:
		return RecommendationKind(s), nil
	default:
		return "", models.NewValidationError(fmt.Sprintf("Unknown recommendation kind %q", s))
	}
}

const (
	postRecommendationCap      = 20
	userRecommendationCap      = 10
	companionRecommendationCap = 20
	groupRecommendationCap     = 10
	candidateFetchLimit        = 200
	companionScoreThreshold    = 0.6
	companionScoreSlack        = 100
)

// CompanionMatch is a scored travel companion recommendation.
type CompanionMatch struct {
	User               models.UserProfile `json:"user"`
	CompatibilityScore float64            `json:"compatibility_score"`
	MatchReasons       []string           `json:"match_reasons"`
}

// GroupMatch is a relevance-ranked travel group recommendation.
type GroupMatch struct {
	Group     models.TravelGroup `json:"group"`
	Relevance float64            `json:"relevance"`
}

// RecommendationResult is the output of a single recommendation run. Exactly
// one of the list fields is populated, matching Kind.
type RecommendationResult struct {
	Kind         RecommendationKind    `json:"kind"`
	Posts        []models.TravelPost   `json:"posts,omitempty"`
	Users        []models.UserProfile  `json:"users,omitempty"`
	Destinations []TrendingDestination `json:"destinations,omitempty"`
	Companions   []CompanionMatch      `json:"companions,omitempty"`
	Groups       []GroupMatch          `json:"groups,omitempty"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// RecommendationService generates ranked recommendations behind a TTL cache.
// The generator path is advisory: any data-access failure degrades to an
// empty list instead of an error, since a thin recommendation beats a failed
// request.
type RecommendationService struct {
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	groupRepo   repository.GroupRepository
	profiles    *ProfileService
	scorer      *CompatibilityScorer
	trending    *TrendingService
	store       *cache.TTLStore
}

// NewRecommendationService returns a new RecommendationService.
func NewRecommendationService(
	profileRepo repository.ProfileRepository,
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	profiles *ProfileService,
	scorer *CompatibilityScorer,
	trending *TrendingService,
	store *cache.TTLStore,
) *RecommendationService {
	return &RecommendationService{
		profileRepo: profileRepo,
		postRepo:    postRepo,
		groupRepo:   groupRepo,
		profiles:    profiles,
		scorer:      scorer,
		trending:    trending,
		store:       store,
	}
}

// Recommend returns recommendations of the given kind for userID, serving a
// cached result when one is fresh (inserted within the TTL).
func (s *RecommendationService) Recommend(ctx context.Context, userID uint, kind RecommendationKind) (*RecommendationResult, error) {
	key := fmt.Sprintf("%d:%s", userID, kind)
	if cached, ok := s.store.Get(key); ok {
		if result, ok := cached.(*RecommendationResult); ok {
			observability.RecommendationRequests.WithLabelValues(string(kind), "hit").Inc()
			return result, nil
		}
	}
	observability.RecommendationRequests.WithLabelValues(string(kind), "miss").Inc()

	start := time.Now()
	result, err := s.generate(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	observability.RecommendationLatency.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	s.store.Set(key, result)
	return result, nil
}

// ClearCache empties the recommendation cache. Idempotent and safe against
// concurrent reads.
func (s *RecommendationService) ClearCache() {
	s.store.Clear()
}

// CacheStats exposes the recommendation cache counters.
func (s *RecommendationService) CacheStats() cache.Stats {
	return s.store.Stats()
}

func (s *RecommendationService) generate(ctx context.Context, userID uint, kind RecommendationKind) (*RecommendationResult, error) {
	requester, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &RecommendationResult{Kind: kind, GeneratedAt: time.Now()}
	switch kind {
	case KindPosts:
		result.Posts = s.recommendPosts(ctx, requester)
	case KindUsers:
		result.Users = s.recommendUsers(ctx, requester)
	case KindDestinations:
		result.Destinations = s.recommendDestinations(ctx, requester)
	case KindCompanions:
		result.Companions = s.recommendCompanions(ctx, requester)
	case KindGroups:
		result.Groups = s.recommendGroups(ctx, requester)
	default:
		return nil, models.NewValidationError(fmt.Sprintf("Unknown recommendation kind %q", kind))
	}
	return result, nil
}

// recommendPosts keeps active posts by other users whose tags, declared
// travel style or AI topics intersect the requester's interests/style.
// Ordering (likes desc, createdAt desc) comes from the store query.
func (s *RecommendationService) recommendPosts(ctx context.Context, requester *models.UserProfile) []models.TravelPost {
	candidates, err := s.postRepo.ListActiveByOthers(ctx, requester.UserID, candidateFetchLimit)
	if err != nil {
		slog.WarnContext(ctx, "post recommendation degraded to empty", "user_id", requester.UserID, "err", err)
		return []models.TravelPost{}
	}

	wanted := append([]string{}, requester.Preferences.Interests...)
	wanted = append(wanted, requester.Preferences.TravelStyles...)

	matched := make([]models.TravelPost, 0, postRecommendationCap)
	for i := range candidates {
		post := &candidates[i]
		if intersects(post.Tags, wanted) || intersects(post.Enrichment.Topics, wanted) {
			matched = append(matched, *post)
			if len(matched) == postRecommendationCap {
				break
			}
		}
	}
	return matched
}

// recommendUsers keeps profiles sharing a travel style with the requester or
// having visited a country the requester has posted about, ranked by travel
// score.
func (s *RecommendationService) recommendUsers(ctx context.Context, requester *models.UserProfile) []models.UserProfile {
	candidates, err := s.profileRepo.ListCandidates(ctx, requester.UserID, candidateFetchLimit)
	if err != nil {
		slog.WarnContext(ctx, "user recommendation degraded to empty", "user_id", requester.UserID, "err", err)
		return []models.UserProfile{}
	}

	postedCountries, err := s.postRepo.DistinctCountriesByUser(ctx, requester.UserID)
	if err != nil {
		slog.WarnContext(ctx, "user recommendation missing posted countries", "user_id", requester.UserID, "err", err)
		postedCountries = nil
	}

	matched := make([]models.UserProfile, 0, userRecommendationCap)
	for i := range candidates {
		candidate := &candidates[i]
		if intersects(candidate.Preferences.TravelStyles, requester.Preferences.TravelStyles) ||
			intersects(candidate.Stats.VisitedCountries, postedCountries) {
			matched = append(matched, *candidate)
			if len(matched) == userRecommendationCap {
				break
			}
		}
	}
	return matched
}

// recommendDestinations re-ranks the trending list by the requester's
// interest overlap with each destination's associated tags. Destinations
// without tags keep their trending order behind the matched ones.
func (s *RecommendationService) recommendDestinations(ctx context.Context, requester *models.UserProfile) []TrendingDestination {
	trending := s.trending.TrendingDestinations(ctx)
	if len(trending) == 0 {
		return []TrendingDestination{}
	}

	ranked := make([]TrendingDestination, len(trending))
	copy(ranked, trending)
	overlaps := make([]float64, len(ranked))
	for i := range ranked {
		overlaps[i] = Overlap(ranked[i].Tags, requester.Preferences.Interests)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return overlaps[i] > overlaps[j]
	})
	return ranked
}

// recommendCompanions scores every candidate sharing at least one style,
// interest or language whose travel score is within slack of the requester's,
// keeping scores above the threshold. The requester's own posts provide the
// scoring context, so the pairing is intentionally asymmetric.
func (s *RecommendationService) recommendCompanions(ctx context.Context, requester *models.UserProfile) []CompanionMatch {
	minScore := requester.Stats.TravelScore - companionScoreSlack
	if minScore < 0 {
		minScore = 0
	}
	candidates, err := s.profileRepo.ListByMinScore(ctx, minScore, requester.UserID, candidateFetchLimit)
	if err != nil {
		slog.WarnContext(ctx, "companion recommendation degraded to empty", "user_id", requester.UserID, "err", err)
		return []CompanionMatch{}
	}

	requesterPosts, err := s.postRepo.ListByUser(ctx, requester.UserID, 0)
	if err != nil {
		slog.WarnContext(ctx, "companion recommendation missing requester posts", "user_id", requester.UserID, "err", err)
		requesterPosts = nil
	}

	matches := make([]CompanionMatch, 0, companionRecommendationCap)
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.UserID == requester.UserID {
			continue
		}
		if !intersects(candidate.Preferences.TravelStyles, requester.Preferences.TravelStyles) &&
			!intersects(candidate.Preferences.Interests, requester.Preferences.Interests) &&
			!intersects(candidate.Preferences.Languages, requester.Preferences.Languages) {
			continue
		}
		score := s.scorer.Score(requester, candidate, requesterPosts)
		if score <= companionScoreThreshold {
			continue
		}
		matches = append(matches, CompanionMatch{
			User:               *candidate,
			CompatibilityScore: score,
			MatchReasons:       s.scorer.MatchReasons(requester, candidate, requesterPosts),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CompatibilityScore > matches[j].CompatibilityScore
	})
	if len(matches) > companionRecommendationCap {
		matches = matches[:companionRecommendationCap]
	}
	return matches
}

// recommendGroups ranks public groups the requester has not joined by tag,
// category and home-country affinity plus recency and size.
func (s *RecommendationService) recommendGroups(ctx context.Context, requester *models.UserProfile) []GroupMatch {
	candidates, err := s.groupRepo.ListPublicNotJoined(ctx, requester.UserID, candidateFetchLimit)
	if err != nil {
		slog.WarnContext(ctx, "group recommendation degraded to empty", "user_id", requester.UserID, "err", err)
		return []GroupMatch{}
	}

	wanted := append([]string{}, requester.Preferences.Interests...)
	wanted = append(wanted, requester.Preferences.TravelStyles...)

	now := time.Now()
	matches := make([]GroupMatch, 0, len(candidates))
	for i := range candidates {
		group := &candidates[i]
		matchingTags := len(intersect(group.Tags, wanted))
		if group.Category != "" && intersects([]string{group.Category}, wanted) {
			matchingTags++
		}
		countryMatch := group.Country != "" && group.Country == requester.HomeCountry
		if matchingTags == 0 && !countryMatch {
			continue
		}

		relevance := 10 * float64(matchingTags)
		if countryMatch {
			relevance += 15
		}
		days := now.Sub(group.LastActivityAt).Hours() / 24
		if recency := 10 - days; recency > 0 {
			relevance += recency
		}
		size := 0.5 * float64(group.MemberCount)
		if size > 20 {
			size = 20
		}
		relevance += size

		matches = append(matches, GroupMatch{Group: *group, Relevance: relevance})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Relevance > matches[j].Relevance
	})
	if len(matches) > groupRecommendationCap {
		matches = matches[:groupRecommendationCap]
	}
	return matches
}
