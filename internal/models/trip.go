package models

import (
	"time"

	"gorm.io/gorm"
)

// TripPhase is the administrative lifecycle phase of a group trip.
type TripPhase string

const (
	// TripPhasePlanning is the initial phase after creation.
	TripPhasePlanning TripPhase = "planning"
	// TripPhaseBooking indicates bookings are being made.
	TripPhaseBooking TripPhase = "booking"
	// TripPhaseConfirmed indicates the trip is locked in.
	TripPhaseConfirmed TripPhase = "confirmed"
	// TripPhaseInProgress indicates the trip is underway.
	TripPhaseInProgress TripPhase = "in_progress"
	// TripPhaseCompleted is a terminal phase.
	TripPhaseCompleted TripPhase = "completed"
	// TripPhaseCancelled is reachable from any non-terminal phase.
	TripPhaseCancelled TripPhase = "cancelled"
)

// ParticipantStatus is the membership state of a user on a trip.
type ParticipantStatus string

const (
	// ParticipantPending indicates a join awaiting organizer confirmation.
	ParticipantPending ParticipantStatus = "pending"
	// ParticipantConfirmed indicates a confirmed participant.
	ParticipantConfirmed ParticipantStatus = "confirmed"
	// ParticipantDeclined indicates a declined or withdrawn participant.
	ParticipantDeclined ParticipantStatus = "declined"
)

// ParticipantRole is a participant's role on a trip.
type ParticipantRole string

const (
	// TripRoleAdmin is the trip creator/admin role.
	TripRoleAdmin ParticipantRole = "admin"
	// TripRoleCoOrganizer may manage polls alongside the admin.
	TripRoleCoOrganizer ParticipantRole = "co_organizer"
	// TripRoleParticipant is the default role.
	TripRoleParticipant ParticipantRole = "participant"
)

// ExperienceLevel is the minimum traveler tier a trip may require.
type ExperienceLevel string

const (
	// ExperienceBeginner requires travel score >= 0.
	ExperienceBeginner ExperienceLevel = "beginner"
	// ExperienceIntermediate requires travel score >= 500.
	ExperienceIntermediate ExperienceLevel = "intermediate"
	// ExperienceAdvanced requires travel score >= 1500.
	ExperienceAdvanced ExperienceLevel = "advanced"
)

// MinScore returns the minimum travel score for the experience level.
func (e ExperienceLevel) MinScore() int {
	switch e {
	case ExperienceAdvanced:
		return 1500
	case ExperienceIntermediate:
		return 500
	default:
		return 0
	}
}

// TripRequirements gates who may join a trip.
type TripRequirements struct {
	MinAge     *int            `json:"min_age,omitempty"`
	MaxAge     *int            `json:"max_age,omitempty"`
	Experience ExperienceLevel `gorm:"type:varchar(16)" json:"experience,omitempty"`
	Languages  []string        `gorm:"serializer:json" json:"languages,omitempty"`
}

// TripSuggestions holds non-binding AI itinerary suggestions. All fields may
// be empty when the suggestion service was unavailable at creation time.
type TripSuggestions struct {
	Activities     []string `gorm:"serializer:json" json:"activities,omitempty"`
	Accommodation  []string `gorm:"serializer:json" json:"accommodation,omitempty"`
	Itinerary      []string `gorm:"serializer:json" json:"itinerary,omitempty"`
	Dining         []string `gorm:"serializer:json" json:"dining,omitempty"`
	Transportation []string `gorm:"serializer:json" json:"transportation,omitempty"`
}

// GroupTrip is a collaboratively planned trip. CapacityCurrent must always
// equal the number of non-declined participants and never exceed CapacityMax;
// every mutation re-validates this before commit.
type GroupTrip struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	CreatorID     uint        `gorm:"not null;index" json:"creator_id"`
	Title         string      `gorm:"not null" json:"title"`
	Description   string      `gorm:"type:text" json:"description"`
	Destination   Destination `gorm:"embedded;embeddedPrefix:dest_" json:"destination"`
	StartDate     *time.Time  `json:"start_date,omitempty"`
	EndDate       *time.Time  `json:"end_date,omitempty"`
	DatesFlexible bool        `gorm:"default:false" json:"dates_flexible"`

	BudgetMin      float64 `json:"budget_min"`
	BudgetMax      float64 `json:"budget_max"`
	BudgetCurrency string  `gorm:"type:varchar(8);default:'USD'" json:"budget_currency"`

	CapacityMin     int `gorm:"default:1" json:"capacity_min"`
	CapacityMax     int `gorm:"default:10" json:"capacity_max"`
	CapacityCurrent int `gorm:"default:0" json:"capacity_current"`

	Phase        TripPhase        `gorm:"type:varchar(20);default:'planning';index" json:"phase"`
	Requirements TripRequirements `gorm:"embedded;embeddedPrefix:req_" json:"requirements"`
	Suggestions  TripSuggestions  `gorm:"embedded;embeddedPrefix:sugg_" json:"suggestions"`

	Participants []TripParticipant `gorm:"foreignKey:TripID" json:"participants,omitempty"`
	Polls        []TripPoll        `gorm:"foreignKey:TripID" json:"polls,omitempty"`
	Messages     []TripMessage     `gorm:"foreignKey:TripID" json:"messages,omitempty"`
	Expenses     []TripExpense     `gorm:"foreignKey:TripID" json:"expenses,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (GroupTrip) TableName() string {
	return "group_trips"
}

// Participant returns the participant entry for userID, or nil.
func (t *GroupTrip) Participant(userID uint) *TripParticipant {
	for i := range t.Participants {
		if t.Participants[i].UserID == userID {
			return &t.Participants[i]
		}
	}
	return nil
}

// NonDeclinedCount counts participants whose status is not declined. The
// capacity invariant requires CapacityCurrent to equal this at all times.
func (t *GroupTrip) NonDeclinedCount() int {
	n := 0
	for i := range t.Participants {
		if t.Participants[i].Status != ParticipantDeclined {
			n++
		}
	}
	return n
}

// CanTransitionTo reports whether the trip phase may move to next.
func (t *GroupTrip) CanTransitionTo(next TripPhase) bool {
	if t.Phase == TripPhaseCompleted || t.Phase == TripPhaseCancelled {
		return false
	}
	if next == TripPhaseCancelled {
		return true
	}
	order := map[TripPhase]int{
		TripPhasePlanning:   0,
		TripPhaseBooking:    1,
		TripPhaseConfirmed:  2,
		TripPhaseInProgress: 3,
		TripPhaseCompleted:  4,
	}
	cur, ok := order[t.Phase]
	nxt, ok2 := order[next]
	return ok && ok2 && nxt == cur+1
}

// TripParticipant is a user's membership on a group trip.
type TripParticipant struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	TripID      uint              `gorm:"not null;uniqueIndex:idx_trip_participant" json:"trip_id"`
	UserID      uint              `gorm:"not null;uniqueIndex:idx_trip_participant" json:"user_id"`
	Status      ParticipantStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Role        ParticipantRole   `gorm:"type:varchar(20);not null;default:'participant'" json:"role"`
	Preferences string            `gorm:"type:text" json:"preferences,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (TripParticipant) TableName() string {
	return "trip_participants"
}

// TripPoll is a deadline-bound poll embedded in a trip's planning space.
// IsActive is cleared only by an explicit close, never by the clock alone.
type TripPoll struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TripID    uint           `gorm:"not null;index" json:"trip_id"`
	CreatorID uint           `gorm:"not null" json:"creator_id"`
	Question  string         `gorm:"not null" json:"question"`
	Options   []string       `gorm:"serializer:json" json:"options"`
	Deadline  time.Time      `json:"deadline"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	Votes     []TripPollVote `gorm:"foreignKey:PollID" json:"votes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (TripPoll) TableName() string {
	return "trip_polls"
}

// HasOption reports whether option is one of the poll's options.
func (p *TripPoll) HasOption(option string) bool {
	for _, o := range p.Options {
		if o == option {
			return true
		}
	}
	return false
}

// TripPollVote is one user's vote on a poll. The unique index enforces one
// row per (poll, user); re-voting updates the row (last write wins).
type TripPollVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PollID    uint      `gorm:"not null;uniqueIndex:idx_poll_vote_user" json:"poll_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_poll_vote_user" json:"user_id"`
	Option    string    `gorm:"not null" json:"option"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (TripPollVote) TableName() string {
	return "trip_poll_votes"
}

// TripMessage is an append-only discussion message on a trip. Messages are
// never edited or deleted; replies reference the parent message.
type TripMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UID       string    `gorm:"type:varchar(36);uniqueIndex" json:"uid"`
	TripID    uint      `gorm:"not null;index" json:"trip_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	ReplyToID *uint     `gorm:"index" json:"reply_to_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (TripMessage) TableName() string {
	return "trip_messages"
}

// TripExpense is a shared-expense ledger row on a trip.
type TripExpense struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TripID      uint      `gorm:"not null;index" json:"trip_id"`
	PayerID     uint      `gorm:"not null" json:"payer_id"`
	Description string    `gorm:"not null" json:"description"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Currency    string    `gorm:"type:varchar(8);default:'USD'" json:"currency"`
	SplitAmong  []uint    `gorm:"serializer:json" json:"split_among"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (TripExpense) TableName() string {
	return "trip_expenses"
}
