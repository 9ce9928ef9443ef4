package review

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/mocks"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

type fixture struct {
	service   *Service
	repo      *mocks.ReviewRepository
	cache     *mocks.Cache
	publisher *mocks.EventPublisher
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(mocks.ReviewRepository),
		cache:     new(mocks.Cache),
		publisher: new(mocks.EventPublisher),
	}
	f.publisher.On("Publish", mock.Anything, Subject, mock.Anything).Return(nil).Maybe()
	f.service = NewService(f.repo, f.cache, f.publisher, logger.New("test"))
	return f
}

func TestService_Create_Success(t *testing.T) {
	f := newFixture()
	userID, movieID := uuid.New(), uuid.New()
	review := &domain.Review{UserID: userID, MovieID: movieID, Content: "Great movie!", Rating: 5}

	f.repo.On("GetByUserAndMovie", mock.Anything, userID, movieID).Return(nil, domain.ErrNotFound)
	f.repo.On("Create", mock.Anything, review).Return(nil)
	f.cache.On("InvalidateMovie", mock.Anything, movieID).Return(nil)

	err := f.service.Create(context.Background(), review)

	assert.NoError(t, err)
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestService_Create_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		review *domain.Review
	}{
		{"empty content", &domain.Review{UserID: uuid.New(), MovieID: uuid.New(), Content: "", Rating: 3}},
		{"rating too high", &domain.Review{UserID: uuid.New(), MovieID: uuid.New(), Content: "ok", Rating: 6}},
		{"rating zero", &domain.Review{UserID: uuid.New(), MovieID: uuid.New(), Content: "ok", Rating: 0}},
		{"content too long", &domain.Review{UserID: uuid.New(), MovieID: uuid.New(), Content: strings.Repeat("x", 5001), Rating: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			err := f.service.Create(context.Background(), tt.review)

			assert.Equal(t, domain.ErrInvalidInput, err)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Create_DuplicateRejected(t *testing.T) {
	f := newFixture()
	userID, movieID := uuid.New(), uuid.New()
	existing := &domain.Review{ID: uuid.New(), UserID: userID, MovieID: movieID, Content: "First", Rating: 4}

	f.repo.On("GetByUserAndMovie", mock.Anything, userID, movieID).Return(existing, nil)

	err := f.service.Create(context.Background(), &domain.Review{UserID: userID, MovieID: movieID, Content: "Second", Rating: 2})

	assert.ErrorIs(t, err, domain.ErrDuplicateReview)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_ConcurrentDuplicateNormalized(t *testing.T) {
	f := newFixture()
	review := &domain.Review{UserID: uuid.New(), MovieID: uuid.New(), Content: "Race", Rating: 3}

	f.repo.On("GetByUserAndMovie", mock.Anything, review.UserID, review.MovieID).Return(nil, domain.ErrNotFound)
	f.repo.On("Create", mock.Anything, review).Return(domain.ErrDuplicateReview)

	err := f.service.Create(context.Background(), review)

	assert.ErrorIs(t, err, domain.ErrDuplicateReview)
	f.cache.AssertNotCalled(t, "InvalidateMovie", mock.Anything, mock.Anything)
}

func TestService_Create_MovieMissing(t *testing.T) {
	f := newFixture()
	review := &domain.Review{UserID: uuid.New(), MovieID: uuid.New(), Content: "Hmm", Rating: 3}

	f.repo.On("GetByUserAndMovie", mock.Anything, review.UserID, review.MovieID).Return(nil, domain.ErrNotFound)
	f.repo.On("Create", mock.Anything, review).Return(domain.ErrNotFound)

	assert.ErrorIs(t, f.service.Create(context.Background(), review), domain.ErrNotFound)
}

func TestService_Create_CacheInvalidationFailureIsIgnored(t *testing.T) {
	f := newFixture()
	review := &domain.Review{UserID: uuid.New(), MovieID: uuid.New(), Content: "Fine", Rating: 3}

	f.repo.On("GetByUserAndMovie", mock.Anything, review.UserID, review.MovieID).Return(nil, domain.ErrNotFound)
	f.repo.On("Create", mock.Anything, review).Return(nil)
	f.cache.On("InvalidateMovie", mock.Anything, review.MovieID).Return(errors.New("redis down"))

	assert.NoError(t, f.service.Create(context.Background(), review))
}

func TestService_Update_ByOwner(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	review := &domain.Review{ID: uuid.New(), UserID: owner, MovieID: uuid.New(), Content: "Old", Rating: 2}

	f.repo.On("GetByID", mock.Anything, review.ID).Return(review, nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.Review) bool {
		return r.Content == "New" && r.Rating == 4
	})).Return(nil)
	f.cache.On("InvalidateMovie", mock.Anything, review.MovieID).Return(nil)

	updated, err := f.service.Update(context.Background(), owner, review.ID, "New", 4)

	require.NoError(t, err)
	assert.Equal(t, "New", updated.Content)
	f.repo.AssertExpectations(t)
}

func TestService_Update_ByOtherUserForbidden(t *testing.T) {
	f := newFixture()
	review := &domain.Review{ID: uuid.New(), UserID: uuid.New(), MovieID: uuid.New(), Content: "Mine", Rating: 2}

	f.repo.On("GetByID", mock.Anything, review.ID).Return(review, nil)

	_, err := f.service.Update(context.Background(), uuid.New(), review.ID, "Hijack", 1)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_Update_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	f.repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	_, err := f.service.Update(context.Background(), uuid.New(), id, "x", 1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Delete_ByOwner(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	review := &domain.Review{ID: uuid.New(), UserID: owner, MovieID: uuid.New(), Content: "Bye", Rating: 1}

	f.repo.On("GetByID", mock.Anything, review.ID).Return(review, nil)
	f.repo.On("Delete", mock.Anything, review.ID).Return(nil)
	f.cache.On("InvalidateMovie", mock.Anything, review.MovieID).Return(nil)

	assert.NoError(t, f.service.Delete(context.Background(), owner, review.ID))
	f.repo.AssertExpectations(t)
}

func TestService_Delete_ByOtherUserForbidden(t *testing.T) {
	f := newFixture()
	review := &domain.Review{ID: uuid.New(), UserID: uuid.New(), MovieID: uuid.New()}

	f.repo.On("GetByID", mock.Anything, review.ID).Return(review, nil)

	assert.ErrorIs(t, f.service.Delete(context.Background(), uuid.New(), review.ID), domain.ErrForbidden)
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_ListByMovie_CacheHit(t *testing.T) {
	f := newFixture()
	movieID := uuid.New()
	cached := []*domain.Review{{ID: uuid.New(), MovieID: movieID}}

	f.cache.On("GetReviewsList", mock.Anything, movieID, 20, 0).Return(cached, nil)
	f.repo.On("CountByMovieID", mock.Anything, movieID).Return(1, nil)

	reviews, total, err := f.service.ListByMovie(context.Background(), movieID, 0, 0)

	assert.NoError(t, err)
	assert.Equal(t, cached, reviews)
	assert.Equal(t, 1, total)
	f.repo.AssertNotCalled(t, "GetByMovieID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ListByMovie_CacheMiss(t *testing.T) {
	f := newFixture()
	movieID := uuid.New()
	fromDB := []*domain.Review{{ID: uuid.New(), MovieID: movieID}, {ID: uuid.New(), MovieID: movieID}}

	f.cache.On("GetReviewsList", mock.Anything, movieID, 10, 5).Return(nil, domain.ErrNotFound)
	f.repo.On("GetByMovieID", mock.Anything, movieID, 10, 5).Return(fromDB, nil)
	f.cache.On("SetReviewsList", mock.Anything, movieID, 10, 5, fromDB).Return(nil)
	f.repo.On("CountByMovieID", mock.Anything, movieID).Return(7, nil)

	reviews, total, err := f.service.ListByMovie(context.Background(), movieID, 10, 5)

	assert.NoError(t, err)
	assert.Len(t, reviews, 2)
	assert.Equal(t, 7, total)
	f.cache.AssertExpectations(t)
}

func TestService_ToggleLike(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	review := &domain.Review{ID: uuid.New(), UserID: uuid.New(), MovieID: uuid.New()}

	f.repo.On("GetByID", mock.Anything, review.ID).Return(review, nil)
	f.repo.On("ToggleLike", mock.Anything, userID, review.ID).
		Return(&domain.LikeResult{ReviewID: review.ID, Liked: true, LikeCount: 3}, nil)
	f.cache.On("InvalidateReviewsList", mock.Anything, review.MovieID).Return(nil)

	result, err := f.service.ToggleLike(context.Background(), userID, review.ID)

	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 3, result.LikeCount)
	f.cache.AssertExpectations(t)
}

func TestService_ToggleLike_ReviewMissing(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	f.repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	_, err := f.service.ToggleLike(context.Background(), uuid.New(), id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.repo.AssertNotCalled(t, "ToggleLike", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_GetForUser_None(t *testing.T) {
	f := newFixture()
	userID, movieID := uuid.New(), uuid.New()

	f.repo.On("GetByUserAndMovie", mock.Anything, userID, movieID).Return(nil, domain.ErrNotFound)

	review, err := f.service.GetForUser(context.Background(), userID, movieID)

	assert.Nil(t, review)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
