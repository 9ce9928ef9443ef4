package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/movie_store/internal/domain"
	"github.com/Pesokrava/movie_store/internal/mocks"
	"github.com/Pesokrava/movie_store/internal/pkg/logger"
)

func newTestService() (*Service, *mocks.MovieRepository, *mocks.SessionStore) {
	repo := new(mocks.MovieRepository)
	store := mocks.NewSessionStore()
	return NewService(repo, store, logger.New("test")), repo, store
}

func movie(price string) *domain.Movie {
	return &domain.Movie{ID: uuid.New(), Title: "Movie " + price, Price: decimal.RequireFromString(price)}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 1, false},
		{"  ", 1, false},
		{"3", 3, false},
		{" 12 ", 12, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
		{"1000", 1000, false},
		{"1001", 0, true},
		{"9223372036854775807", 0, true},
		{"99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseQuantity(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Add_AccumulatesQuantity(t *testing.T) {
	service, repo, _ := newTestService()
	m := movie("4.99")
	cart := domain.NewCart()

	repo.On("GetByID", mock.Anything, m.ID).Return(m, nil)

	require.NoError(t, service.Add(context.Background(), cart, m.ID, 2))
	require.NoError(t, service.Add(context.Background(), cart, m.ID, 3))

	assert.Equal(t, 5, cart.Quantity(m.ID.String()))
	assert.Len(t, cart.Entries, 1)
}

func TestService_Add_InvalidQuantityLeavesCartUnchanged(t *testing.T) {
	service, repo, _ := newTestService()
	cart := domain.NewCart()
	cart.Add("existing", 1)

	for _, q := range []int{0, -1} {
		err := service.Add(context.Background(), cart, uuid.New(), q)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	assert.Equal(t, []domain.CartEntry{{MovieID: "existing", Quantity: 1}}, cart.Entries)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestService_Add_RejectsQuantityAboveCap(t *testing.T) {
	service, repo, _ := newTestService()
	id := uuid.New()
	cart := domain.NewCart()
	cart.Add(id.String(), domain.MaxQuantity-5)

	err := service.Add(context.Background(), cart, id, 6)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	err = service.Add(context.Background(), cart, id, math.MaxInt)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assert.Equal(t, domain.MaxQuantity-5, cart.Quantity(id.String()))
	assert.Len(t, cart.Entries, 1)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestService_Add_FillsUpToCap(t *testing.T) {
	service, repo, _ := newTestService()
	id := uuid.New()
	cart := domain.NewCart()
	cart.Add(id.String(), domain.MaxQuantity-5)

	repo.On("GetByID", mock.Anything, id).Return(movie("4.00"), nil)

	err := service.Add(context.Background(), cart, id, 5)

	require.NoError(t, err)
	assert.Equal(t, domain.MaxQuantity, cart.Quantity(id.String()))
}

func TestService_Add_UnknownMovie(t *testing.T) {
	service, repo, _ := newTestService()
	cart := domain.NewCart()
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	err := service.Add(context.Background(), cart, id, 1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, cart.IsEmpty())
}

func TestService_View_SkipsDeletedMoviesAndIsRestartable(t *testing.T) {
	service, repo, _ := newTestService()
	a, b := movie("2.50"), movie("10.00")
	gone := uuid.New()

	cart := domain.NewCart()
	cart.Add(a.ID.String(), 2)
	cart.Add(gone.String(), 1)
	cart.Add("not-a-uuid", 4)
	cart.Add(b.ID.String(), 1)

	repo.On("GetByIDs", mock.Anything, []uuid.UUID{a.ID, gone, b.ID}).Return([]*domain.Movie{b, a}, nil).Once()

	lines, err := service.View(context.Background(), cart)
	require.NoError(t, err)

	var first, second []domain.CartLine
	for line := range lines {
		first = append(first, line)
	}
	for line := range lines {
		second = append(second, line)
	}

	require.Len(t, first, 2)
	assert.Equal(t, a.ID, first[0].Movie.ID)
	assert.True(t, decimal.RequireFromString("5.00").Equal(first[0].LineTotal))
	assert.Equal(t, b.ID, first[1].Movie.ID)
	assert.Equal(t, first, second)
	repo.AssertExpectations(t)
}

func TestService_View_EarlyBreak(t *testing.T) {
	service, repo, _ := newTestService()
	a, b := movie("1.00"), movie("2.00")
	cart := domain.NewCart()
	cart.Add(a.ID.String(), 1)
	cart.Add(b.ID.String(), 1)

	repo.On("GetByIDs", mock.Anything, mock.Anything).Return([]*domain.Movie{a, b}, nil)

	lines, err := service.View(context.Background(), cart)
	require.NoError(t, err)

	count := 0
	for range lines {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestService_Total(t *testing.T) {
	service, repo, _ := newTestService()
	a, b := movie("4.99"), movie("0.01")
	cart := domain.NewCart()
	cart.Add(a.ID.String(), 3)
	cart.Add(b.ID.String(), 2)
	cart.Add(uuid.NewString(), 5)

	repo.On("GetByIDs", mock.Anything, mock.Anything).Return([]*domain.Movie{a, b}, nil)

	total, err := service.Total(context.Background(), cart)

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("14.99").Equal(total), total.String())
}

func TestService_Total_EmptyCart(t *testing.T) {
	service, repo, _ := newTestService()

	repo.On("GetByIDs", mock.Anything, []uuid.UUID{}).Return([]*domain.Movie{}, nil)

	total, err := service.Total(context.Background(), domain.NewCart())

	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestService_Summary(t *testing.T) {
	service, repo, _ := newTestService()
	a := movie("3.00")
	cart := domain.NewCart()
	cart.Add(a.ID.String(), 2)

	repo.On("GetByIDs", mock.Anything, mock.Anything).Return([]*domain.Movie{a}, nil)

	summary, err := service.Summary(context.Background(), cart)

	require.NoError(t, err)
	assert.Len(t, summary.Lines, 1)
	assert.Equal(t, 2, summary.ItemCount)
	assert.True(t, decimal.RequireFromString("6.00").Equal(summary.Total))
}

func TestService_View_RepositoryError(t *testing.T) {
	service, repo, _ := newTestService()
	cart := domain.NewCart()
	cart.Add(uuid.NewString(), 1)

	repo.On("GetByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	lines, err := service.View(context.Background(), cart)

	assert.Nil(t, lines)
	assert.Error(t, err)
}

func TestService_AddToSessionAndClear(t *testing.T) {
	service, repo, store := newTestService()
	m := movie("9.99")

	repo.On("GetByID", mock.Anything, m.ID).Return(m, nil)

	_, err := service.AddToSession(context.Background(), "sess", m.ID, 2)
	require.NoError(t, err)

	stored, err := store.LoadCart(context.Background(), "sess")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity(m.ID.String()))

	require.NoError(t, service.ClearSession(context.Background(), "sess"))

	stored, err = store.LoadCart(context.Background(), "sess")
	require.NoError(t, err)
	assert.True(t, stored.IsEmpty())
}

func TestService_Clear(t *testing.T) {
	service, _, _ := newTestService()
	cart := domain.NewCart()
	cart.Add("a", 1)

	service.Clear(cart)
	service.Clear(cart)

	assert.True(t, cart.IsEmpty())
}
