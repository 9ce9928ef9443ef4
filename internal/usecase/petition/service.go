package petition

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
	validatorpkg "github.com/Pesokrava/movie_store/internal/pkg/validator"
)

// Service handles movie petitions and their votes
type Service struct {
	repo     domain.PetitionRepository
	validate *validator.Validate
	logger   *logger.Logger
}

// NewService creates a new petition service
func NewService(repo domain.PetitionRepository, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validatorpkg.Get(),
		logger:   log,
	}
}

// Create opens a new petition. A missing status defaults to active.
func (s *Service) Create(ctx context.Context, p *domain.MoviePetition) error {
	if p.Status == "" {
		p.Status = domain.PetitionActive
	}

	if err := s.validate.Struct(p); err != nil {
		s.logger.Error("Petition validation failed", err)
		return domain.ErrInvalidInput
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create petition", err)
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"petition_id": p.ID,
		"creator_id":  p.CreatorID,
		"movie_title": p.MovieTitle,
	}).Info("Petition created successfully")

	return nil
}

// List returns petitions newest first with their tallies
func (s *Service) List(ctx context.Context, limit, offset int) ([]*domain.PetitionView, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	petitions, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list petitions", err)
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count petitions", err)
		return nil, 0, err
	}

	views, err := s.withTallies(ctx, petitions)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListByCreator returns the petitions a user created
func (s *Service) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.PetitionView, error) {
	petitions, err := s.repo.ListByCreator(ctx, creatorID)
	if err != nil {
		s.logger.Error("Failed to list petitions by creator", err)
		return nil, err
	}
	return s.withTallies(ctx, petitions)
}

// GetByID returns a petition with its tally and, for a known viewer, the viewer's vote
func (s *Service) GetByID(ctx context.Context, id, viewer uuid.UUID) (*domain.PetitionView, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Petition not found: %s", id)
		} else {
			s.logger.Error("Failed to get petition", err)
		}
		return nil, err
	}

	tally, err := s.repo.Tally(ctx, id)
	if err != nil {
		s.logger.Error("Failed to tally petition votes", err)
		return nil, err
	}
	view := domain.NewPetitionView(p, tally)

	if viewer != uuid.Nil {
		vote, err := s.repo.GetVote(ctx, id, viewer)
		switch {
		case err == nil:
			view.UserVote = &vote.VoteType
		case !errors.Is(err, domain.ErrNotFound):
			s.logger.Error("Failed to get viewer vote", err)
			return nil, err
		}
	}

	return view, nil
}

// Vote records the user's yes/no vote. Voting again with the same choice changes nothing
// and reports domain.VoteAlreadyCast; a different choice replaces the earlier vote.
func (s *Service) Vote(ctx context.Context, petitionID, userID uuid.UUID, choice string) (domain.VoteOutcome, error) {
	choice = strings.ToLower(strings.TrimSpace(choice))
	if choice != domain.VoteYes && choice != domain.VoteNo {
		return "", domain.ErrInvalidVote
	}

	if _, err := s.repo.GetByID(ctx, petitionID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to get petition", err)
		}
		return "", err
	}

	outcome, err := s.repo.UpsertVote(ctx, petitionID, userID, choice)
	if err != nil {
		s.logger.Error("Failed to record vote", err)
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"petition_id": petitionID,
		"user_id":     userID,
		"vote":        choice,
		"outcome":     outcome,
	}).Info("Petition vote processed")

	return outcome, nil
}

func (s *Service) withTallies(ctx context.Context, petitions []*domain.MoviePetition) ([]*domain.PetitionView, error) {
	views := make([]*domain.PetitionView, 0, len(petitions))
	for _, p := range petitions {
		tally, err := s.repo.Tally(ctx, p.ID)
		if err != nil {
			s.logger.Error("Failed to tally petition votes", err)
			return nil, err
		}
		views = append(views, domain.NewPetitionView(p, tally))
	}
	return views, nil
}
