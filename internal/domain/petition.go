package domain

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
)

// Petition statuses
const (
	PetitionActive   = "active"
	PetitionApproved = "approved"
	PetitionRejected = "rejected"
	PetitionPending  = "pending"
)

// Vote choices
const (
	VoteYes = "yes"
	VoteNo  = "no"
)

// VoteOutcome describes what a vote did
type VoteOutcome string

const (
	VoteCreated     VoteOutcome = "created"
	VoteChanged     VoteOutcome = "changed"
	VoteAlreadyCast VoteOutcome = "already_voted"
)

// MoviePetition is a user proposal to add a movie to the catalog
type MoviePetition struct {
	ID               uuid.UUID `json:"id" db:"id"`
	CreatorID        uuid.UUID `json:"creator_id" db:"creator_id"`
	MovieTitle       string    `json:"movie_title" db:"movie_title" validate:"required,min=1,max=200"`
	MovieDescription string    `json:"movie_description" db:"movie_description" validate:"required,min=1,max=5000"`
	Reason           string    `json:"reason" db:"reason" validate:"required,min=1,max=5000"`
	Director         string    `json:"director" db:"director" validate:"max=100"`
	ReleaseYear      *int      `json:"release_year,omitempty" db:"release_year" validate:"omitempty,min=1888,max=2100"`
	Genre            string    `json:"genre" db:"genre" validate:"max=100"`
	Status           string    `json:"status" db:"status" validate:"oneof=active approved rejected pending"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// PetitionVote is one user's vote on a petition
type PetitionVote struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	PetitionID uuid.UUID `json:"petition_id" db:"petition_id"`
	VoteType   string    `json:"vote_type" db:"vote_type"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// VoteTally aggregates the votes of a petition
type VoteTally struct {
	Yes int `json:"yes_votes" db:"yes_votes"`
	No  int `json:"no_votes" db:"no_votes"`
}

// Total returns the number of votes cast
func (t VoteTally) Total() int {
	return t.Yes + t.No
}

// YesPercentage returns the share of yes votes rounded to one decimal, 0 without votes
func (t VoteTally) YesPercentage() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return math.Round(float64(t.Yes)/float64(total)*1000) / 10
}

// PetitionView is a petition with its tally and, when known, the viewer's vote
type PetitionView struct {
	*MoviePetition
	TotalVotes    int     `json:"total_votes"`
	YesVotes      int     `json:"yes_votes"`
	NoVotes       int     `json:"no_votes"`
	YesPercentage float64 `json:"yes_percentage"`
	UserVote      *string `json:"user_vote,omitempty"`
}

// NewPetitionView combines a petition with its tally
func NewPetitionView(p *MoviePetition, tally VoteTally) *PetitionView {
	return &PetitionView{
		MoviePetition: p,
		TotalVotes:    tally.Total(),
		YesVotes:      tally.Yes,
		NoVotes:       tally.No,
		YesPercentage: tally.YesPercentage(),
	}
}

// PetitionRepository defines the interface for petition data access
type PetitionRepository interface {
	// Create creates a new petition
	Create(ctx context.Context, petition *MoviePetition) error

	// GetByID retrieves a petition by ID
	GetByID(ctx context.Context, id uuid.UUID) (*MoviePetition, error)

	// List retrieves petitions newest first
	List(ctx context.Context, limit, offset int) ([]*MoviePetition, error)

	// Count returns the total number of petitions
	Count(ctx context.Context) (int, error)

	// ListByCreator retrieves petitions created by a user, newest first
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*MoviePetition, error)

	// Tally counts yes and no votes of a petition
	Tally(ctx context.Context, petitionID uuid.UUID) (VoteTally, error)

	// GetVote retrieves a user's vote on a petition
	GetVote(ctx context.Context, petitionID, userID uuid.UUID) (*PetitionVote, error)

	// UpsertVote records a vote, updating an existing different vote in place
	UpsertVote(ctx context.Context, petitionID, userID uuid.UUID, choice string) (VoteOutcome, error)
}
