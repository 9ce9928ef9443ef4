package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/movie_store/internal/domain"
)

const petitionColumns = `id, creator_id, movie_title, movie_description, reason, director, release_year, genre, status, created_at, updated_at`

// PetitionRepository implements domain.PetitionRepository for PostgreSQL
type PetitionRepository struct {
	db *sqlx.DB
}

// NewPetitionRepository creates a new PostgreSQL petition repository
func NewPetitionRepository(db *sqlx.DB) *PetitionRepository {
	return &PetitionRepository{db: db}
}

// Create creates a new petition
func (r *PetitionRepository) Create(ctx context.Context, p *domain.MoviePetition) error {
	query := `
		INSERT INTO movie_petitions
			(creator_id, movie_title, movie_description, reason, director, release_year, genre, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	return r.db.QueryRowxContext(
		ctx,
		query,
		p.CreatorID,
		p.MovieTitle,
		p.MovieDescription,
		p.Reason,
		p.Director,
		p.ReleaseYear,
		p.Genre,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID retrieves a petition by ID
func (r *PetitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MoviePetition, error) {
	var p domain.MoviePetition
	err := r.db.GetContext(ctx, &p, `SELECT `+petitionColumns+` FROM movie_petitions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List retrieves petitions newest first
func (r *PetitionRepository) List(ctx context.Context, limit, offset int) ([]*domain.MoviePetition, error) {
	query := `
		SELECT ` + petitionColumns + `
		FROM movie_petitions
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	petitions := []*domain.MoviePetition{}
	if err := r.db.SelectContext(ctx, &petitions, query, limit, offset); err != nil {
		return nil, err
	}
	return petitions, nil
}

// Count returns the total number of petitions
func (r *PetitionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM movie_petitions`); err != nil {
		return 0, err
	}
	return count, nil
}

// ListByCreator retrieves petitions created by a user
func (r *PetitionRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.MoviePetition, error) {
	query := `
		SELECT ` + petitionColumns + `
		FROM movie_petitions
		WHERE creator_id = $1
		ORDER BY created_at DESC, id
	`

	petitions := []*domain.MoviePetition{}
	if err := r.db.SelectContext(ctx, &petitions, query, creatorID); err != nil {
		return nil, err
	}
	return petitions, nil
}

// Tally counts the yes and no votes of a petition
func (r *PetitionRepository) Tally(ctx context.Context, petitionID uuid.UUID) (domain.VoteTally, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE vote_type = 'yes') AS yes_votes,
			COUNT(*) FILTER (WHERE vote_type = 'no')  AS no_votes
		FROM petition_votes
		WHERE petition_id = $1
	`

	var tally domain.VoteTally
	if err := r.db.GetContext(ctx, &tally, query, petitionID); err != nil {
		return domain.VoteTally{}, err
	}
	return tally, nil
}

// GetVote retrieves a user's vote on a petition
func (r *PetitionRepository) GetVote(ctx context.Context, petitionID, userID uuid.UUID) (*domain.PetitionVote, error) {
	query := `
		SELECT id, user_id, petition_id, vote_type, created_at
		FROM petition_votes
		WHERE petition_id = $1 AND user_id = $2
	`

	var vote domain.PetitionVote
	if err := r.db.GetContext(ctx, &vote, query, petitionID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &vote, nil
}

// UpsertVote records a vote in one statement. A repeated identical vote touches no row;
// a different vote replaces the previous one.
func (r *PetitionRepository) UpsertVote(ctx context.Context, petitionID, userID uuid.UUID, choice string) (domain.VoteOutcome, error) {
	query := `
		INSERT INTO petition_votes (user_id, petition_id, vote_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, petition_id) DO UPDATE
			SET vote_type = EXCLUDED.vote_type, updated_at = NOW()
			WHERE petition_votes.vote_type <> EXCLUDED.vote_type
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.QueryRowxContext(ctx, query, userID, petitionID, choice).Scan(&inserted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.VoteAlreadyCast, nil
		}
		return "", err
	}

	if inserted {
		return domain.VoteCreated, nil
	}
	return domain.VoteChanged, nil
}
