package usecase_watchlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/cinematheque/internal/model"
	gateway_mocks "github.com/humanbelnik/cinematheque/mocks/watchlist/gateway"
	observer_mocks "github.com/humanbelnik/cinematheque/mocks/watchlist/observer"
	store_mocks "github.com/humanbelnik/cinematheque/mocks/watchlist/store"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type UsecaseWatchlistSuite struct {
	suite.Suite
}

type resources struct {
	usecase  *Usecase
	gateway  *gateway_mocks.Gateway
	store    *store_mocks.Store
	observer *observer_mocks.Observer
	ctx      context.Context
}

var fixedNow = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

const (
	addFailedMessage     = "حدث خطأ أثناء جلب بيانات الفيلم."
	similarFailedMessage = "خطأ في جلب الأفلام المشابهة"
)

func initResources(t provider.T, opts ...Option) *resources {
	gateway := gateway_mocks.NewGateway(t)
	store := store_mocks.NewStore(t)
	observer := observer_mocks.NewObserver(t)
	observer.On("OnStateChange", mock.Anything).Maybe()

	opts = append([]Option{
		WithObserver(observer),
		WithClock(func() time.Time { return fixedNow }),
		WithLanguage("Arabic"),
	}, opts...)

	return &resources{
		usecase:  New(gateway, store, opts...),
		gateway:  gateway,
		store:    store,
		observer: observer,
		ctx:      context.Background(),
	}
}

func (r *resources) start(records ...model.Movie) {
	r.store.On("Load", r.ctx).Return(append([]model.Movie{}, records...)).Once()
	r.usecase.Start(r.ctx)
}

/*
'Object Mother' helpers.
*/
func validDetails() model.MovieDetails {
	return model.MovieDetails{
		PosterURL:   "https://image.tmdb.org/x.jpg",
		Year:        "2010",
		Genre:       "Sci-Fi",
		IMDbRating:  "8.8/10",
		Description: "A thief enters dreams to plant an idea.",
	}
}

func placeholderDetails() model.MovieDetails {
	return model.MovieDetails{
		PosterURL:   "https://placehold.co/600x900/1e293b/ffffff?text=Some%20Movie",
		Year:        "2026",
		Genre:       "Movie",
		IMDbRating:  "N/A",
		Description: "جاري تحميل تفاصيل الفيلم...",
	}
}

func validMovie(title string) model.Movie {
	return model.NewMovie(title, validDetails(), fixedNow.Add(-time.Hour))
}

func transportErr() error {
	return fmt.Errorf("%w: dial tcp: connection refused", model.ErrTransport)
}

func savedTitles(titles ...string) any {
	return mock.MatchedBy(func(records []model.Movie) bool {
		if len(records) != len(titles) {
			return false
		}
		for i := range records {
			if records[i].Title != titles[i] {
				return false
			}
		}
		return true
	})
}

func (s *UsecaseWatchlistSuite) TestNotReady(t provider.T) {
	t.Parallel()
	r := initResources(t)
	r.usecase.SetDraft("Inception")

	_, err := r.usecase.Add(r.ctx)
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = r.usecase.AddTitle(r.ctx, "Inception")
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = r.usecase.RefreshPoster(r.ctx, uuid.New(), "Inception")
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = r.usecase.FindSimilar(r.ctx, "Inception")
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, r.usecase.Delete(r.ctx, uuid.New()), ErrNotReady)
}

func (s *UsecaseWatchlistSuite) TestStart(t provider.T) {
	t.Parallel()

	t.Run("Should start with empty collection when storage is empty", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.start()

		snap := r.usecase.Snapshot()
		assert.NotNil(t, snap.Movies)
		assert.Empty(t, snap.Movies)
		assert.False(t, snap.Busy)
	})

	t.Run("Should expose saved movies in order", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		a, b := validMovie("Heat"), validMovie("Ronin")
		r.start(a, b)

		assert.Equal(t, []model.Movie{a, b}, r.usecase.Snapshot().Movies)
	})
}

func (s *UsecaseWatchlistSuite) TestAdd(t provider.T) {
	t.Parallel()

	t.Run("Should prepend enriched movie and clear the draft", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		existing := validMovie("Heat")
		r.start(existing)
		r.usecase.SetDraft("  Inception ")
		r.gateway.On("FetchDetails", r.ctx, "Inception").Return(validDetails(), nil).Once()
		r.store.On("Save", mock.Anything, savedTitles("Inception", "Heat")).Return(nil).Once()

		movie, err := r.usecase.Add(r.ctx)

		require.NoError(t, err)
		snap := r.usecase.Snapshot()
		require.Len(t, snap.Movies, 2)
		assert.Equal(t, movie, snap.Movies[0])
		assert.Equal(t, existing, snap.Movies[1])
		assert.Equal(t, "Inception", movie.Title)
		assert.Equal(t, "https://image.tmdb.org/x.jpg", movie.PosterURL)
		assert.Equal(t, "2010", movie.Year)
		assert.Equal(t, "Sci-Fi", movie.Genre)
		assert.Equal(t, "8.8/10", movie.Rating)
		assert.Equal(t, fixedNow.UnixMilli(), movie.AddedAt)
		assert.NotEqual(t, uuid.Nil, movie.ID)
		assert.NotEqual(t, existing.ID, movie.ID)
		assert.Empty(t, snap.Draft)
		assert.False(t, snap.Busy)
	})

	t.Run("Should fail with notice and keep draft when service is unreachable", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.start()
		r.usecase.SetDraft("Some Movie")
		r.gateway.On("FetchDetails", r.ctx, "Some Movie").Return(placeholderDetails(), transportErr()).Once()
		r.observer.On("OnNotice", model.Notice{
			Kind:    model.NoticeAddFailed,
			Title:   "Some Movie",
			Message: addFailedMessage,
		}).Once()

		_, err := r.usecase.Add(r.ctx)

		assert.ErrorIs(t, err, ErrAddFailed)
		assert.ErrorIs(t, err, model.ErrTransport)
		snap := r.usecase.Snapshot()
		assert.Empty(t, snap.Movies)
		assert.Equal(t, "Some Movie", snap.Draft)
		assert.False(t, snap.Busy)
		r.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Should add placeholder movie when transport is lenient", func(t provider.T) {
		t.Parallel()
		r := initResources(t, WithLenientTransport(true))
		r.start()
		r.gateway.On("FetchDetails", r.ctx, "Some Movie").Return(placeholderDetails(), transportErr()).Once()
		r.store.On("Save", mock.Anything, savedTitles("Some Movie")).Return(nil).Once()

		movie, err := r.usecase.AddTitle(r.ctx, "Some Movie")

		require.NoError(t, err)
		assert.Equal(t, placeholderDetails().PosterURL, movie.PosterURL)
		assert.Equal(t, "N/A", movie.Rating)
	})

	t.Run("Should add placeholder movie when answer was unusable", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.start()
		r.gateway.On("FetchDetails", r.ctx, "Some Movie").Return(placeholderDetails(), nil).Once()
		r.store.On("Save", mock.Anything, savedTitles("Some Movie")).Return(nil).Once()

		movie, err := r.usecase.AddTitle(r.ctx, "Some Movie")

		require.NoError(t, err)
		assert.Equal(t, "Movie", movie.Genre)
	})

	t.Run("Should reject blank title without notice", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.start()
		r.usecase.SetDraft("   ")

		_, err := r.usecase.Add(r.ctx)

		assert.ErrorIs(t, err, ErrInvalidInput)
		r.gateway.AssertNotCalled(t, "FetchDetails", mock.Anything, mock.Anything)
		r.observer.AssertNotCalled(t, "OnNotice", mock.Anything)
	})

	t.Run("Should keep draft and clear suggestion when adding a suggestion", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.start()
		r.usecase.SetDraft("Inception")
		r.gateway.On("FetchSimilar", r.ctx, "Inception").Return([]string{"Interstellar", "Tenet"}, nil).Once()
		_, err := r.usecase.FindSimilar(r.ctx, "Inception")
		require.NoError(t, err)

		r.gateway.On("FetchDetails", r.ctx, "Tenet").Return(validDetails(), nil).Once()
		r.store.On("Save", mock.Anything, savedTitles("Tenet")).Return(nil).Once()

		_, err = r.usecase.AddTitle(r.ctx, "Tenet")

		require.NoError(t, err)
		snap := r.usecase.Snapshot()
		assert.Equal(t, "Inception", snap.Draft)
		assert.Nil(t, snap.Suggestion)
	})

	t.Run("Should keep movie in memory when save fails", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.start()
		r.gateway.On("FetchDetails", r.ctx, "Inception").Return(validDetails(), nil).Once()
		r.store.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

		_, err := r.usecase.AddTitle(r.ctx, "Inception")

		assert.NoError(t, err)
		assert.Len(t, r.usecase.Snapshot().Movies, 1)
	})
}

func (s *UsecaseWatchlistSuite) TestBusy(t provider.T) {
	t.Parallel()
	r := initResources(t)
	r.start()

	started := make(chan struct{})
	release := make(chan struct{})
	r.gateway.On("FetchDetails", r.ctx, "Inception").Return(validDetails(), nil).Once().Run(func(args mock.Arguments) {
		close(started)
		<-release
	})
	r.store.On("Save", mock.Anything, savedTitles("Inception")).Return(nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	var addErr error
	go func() {
		defer wg.Done()
		_, addErr = r.usecase.AddTitle(r.ctx, "Inception")
	}()
	<-started

	assert.True(t, r.usecase.Snapshot().Busy)
	_, err := r.usecase.AddTitle(r.ctx, "Heat")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = r.usecase.FindSimilar(r.ctx, "Heat")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	wg.Wait()
	assert.NoError(t, addErr)
	assert.False(t, r.usecase.Snapshot().Busy)
}

func (s *UsecaseWatchlistSuite) TestRefreshPoster(t provider.T) {
	t.Parallel()

	t.Run("Should replace only the poster", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		target, other := validMovie("Inception"), validMovie("Heat")
		r.start(target, other)
		fresh := validDetails()
		fresh.PosterURL = "https://m.media-amazon.com/new.jpg"
		fresh.Year = "1999"
		r.gateway.On("FetchDetails", r.ctx, "Inception", mock.Anything, mock.Anything).Return(fresh, nil).Once()
		r.store.On("Save", mock.Anything, savedTitles("Inception", "Heat")).Return(nil).Once()

		updated, err := r.usecase.RefreshPoster(r.ctx, target.ID, "Inception")

		require.NoError(t, err)
		assert.True(t, updated)
		want := target
		want.PosterURL = "https://m.media-amazon.com/new.jpg"
		assert.Equal(t, []model.Movie{want, other}, r.usecase.Snapshot().Movies)
	})

	t.Run("Should use stored title when none is given", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		target := validMovie("Inception")
		r.start(target)
		r.gateway.On("FetchDetails", r.ctx, "Inception", mock.Anything, mock.Anything).Return(validDetails(), nil).Once()
		r.store.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		updated, err := r.usecase.RefreshPoster(r.ctx, target.ID, "")

		assert.NoError(t, err)
		assert.True(t, updated)
	})

	t.Run("Should be a silent no-op when the movie was deleted meanwhile", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		target, other := validMovie("Inception"), validMovie("Heat")
		r.start(target, other)
		r.store.On("Save", mock.Anything, savedTitles("Heat")).Return(nil).Once()
		r.gateway.On("FetchDetails", r.ctx, "Inception", mock.Anything, mock.Anything).Return(validDetails(), nil).Once().Run(func(args mock.Arguments) {
			require.NoError(t, r.usecase.Delete(r.ctx, target.ID))
		})

		updated, err := r.usecase.RefreshPoster(r.ctx, target.ID, "Inception")

		assert.NoError(t, err)
		assert.False(t, updated)
		assert.Equal(t, []model.Movie{other}, r.usecase.Snapshot().Movies)
	})

	t.Run("Should keep the record when service is unreachable", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		target := validMovie("Inception")
		r.start(target)
		r.gateway.On("FetchDetails", r.ctx, "Inception", mock.Anything, mock.Anything).Return(placeholderDetails(), transportErr()).Once()

		updated, err := r.usecase.RefreshPoster(r.ctx, target.ID, "Inception")

		assert.NoError(t, err)
		assert.False(t, updated)
		assert.Equal(t, []model.Movie{target}, r.usecase.Snapshot().Movies)
		r.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		r.observer.AssertNotCalled(t, "OnNotice", mock.Anything)
	})

	t.Run("Should reject a second refresh of the same movie", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		target, other := validMovie("Inception"), validMovie("Heat")
		r.start(target, other)

		started := make(chan struct{})
		release := make(chan struct{})
		r.gateway.On("FetchDetails", r.ctx, "Inception", mock.Anything, mock.Anything).Return(validDetails(), nil).Once().Run(func(args mock.Arguments) {
			close(started)
			<-release
		})
		r.gateway.On("FetchDetails", r.ctx, "Heat", mock.Anything, mock.Anything).Return(validDetails(), nil).Once()
		r.store.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.usecase.RefreshPoster(r.ctx, target.ID, "Inception")
		}()
		<-started

		assert.Equal(t, []uuid.UUID{target.ID}, r.usecase.Snapshot().Refreshing)
		_, err := r.usecase.RefreshPoster(r.ctx, target.ID, "Inception")
		assert.ErrorIs(t, err, ErrBusy)
		updated, err := r.usecase.RefreshPoster(r.ctx, other.ID, "Heat")
		assert.NoError(t, err)
		assert.True(t, updated)

		close(release)
		wg.Wait()
		assert.Empty(t, r.usecase.Snapshot().Refreshing)
	})
}

func (s *UsecaseWatchlistSuite) TestFindSimilar(t provider.T) {
	t.Parallel()

	t.Run("Should hold exactly the suggested titles", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.start()
		titles := []string{"Interstellar", "The Prestige", "Memento", "Tenet", "Shutter Island"}
		r.gateway.On("FetchSimilar", r.ctx, "Inception").Return(titles, nil).Once()

		suggestion, err := r.usecase.FindSimilar(r.ctx, "Inception")

		require.NoError(t, err)
		assert.Equal(t, model.Suggestion{Title: "Inception", Titles: titles}, suggestion)
		assert.Equal(t, &suggestion, r.usecase.Snapshot().Suggestion)

		for _, title := range titles {
			r.gateway.On("FetchDetails", r.ctx, title).Return(validDetails(), nil).Once()
		}
		r.store.On("Save", mock.Anything, mock.Anything).Return(nil).Times(len(titles))
		for _, title := range titles {
			_, err := r.usecase.AddTitle(r.ctx, title)
			require.NoError(t, err)
		}
		assert.Len(t, r.usecase.Snapshot().Movies, len(titles))
	})

	t.Run("Should keep previous suggestion and notify on failure", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.start()
		r.gateway.On("FetchSimilar", r.ctx, "Heat").Return([]string{"Ronin"}, nil).Once()
		_, err := r.usecase.FindSimilar(r.ctx, "Heat")
		require.NoError(t, err)

		r.gateway.On("FetchSimilar", r.ctx, "Inception").Return(nil, errors.New("similar movies unavailable")).Once()
		r.observer.On("OnNotice", model.Notice{
			Kind:    model.NoticeSimilarFailed,
			Title:   "Inception",
			Message: similarFailedMessage,
		}).Once()

		_, err = r.usecase.FindSimilar(r.ctx, "Inception")

		assert.ErrorIs(t, err, ErrSimilarFailed)
		assert.Equal(t, &model.Suggestion{Title: "Heat", Titles: []string{"Ronin"}}, r.usecase.Snapshot().Suggestion)
		assert.False(t, r.usecase.Snapshot().Busy)
	})

	t.Run("Should dismiss suggestion", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.start()
		r.gateway.On("FetchSimilar", r.ctx, "Heat").Return([]string{"Ronin"}, nil).Once()
		_, err := r.usecase.FindSimilar(r.ctx, "Heat")
		require.NoError(t, err)

		r.usecase.DismissSuggestion()

		assert.Nil(t, r.usecase.Snapshot().Suggestion)
	})
}

func (s *UsecaseWatchlistSuite) TestDelete(t provider.T) {
	t.Parallel()

	t.Run("Should remove and persist", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		a, b := validMovie("Heat"), validMovie("Ronin")
		r.start(a, b)
		r.store.On("Save", mock.Anything, savedTitles("Ronin")).Return(nil).Once()

		assert.NoError(t, r.usecase.Delete(r.ctx, a.ID))
		assert.Equal(t, []model.Movie{b}, r.usecase.Snapshot().Movies)
	})

	t.Run("Should ignore unknown id without writing", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		a := validMovie("Heat")
		r.start(a)

		assert.NoError(t, r.usecase.Delete(r.ctx, uuid.New()))
		assert.Equal(t, []model.Movie{a}, r.usecase.Snapshot().Movies)
		r.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func (s *UsecaseWatchlistSuite) TestIDsStayUnique(t provider.T) {
	t.Parallel()
	r := initResources(t)
	r.start()
	r.gateway.On("FetchDetails", r.ctx, mock.AnythingOfType("string")).Return(validDetails(), nil)
	r.store.On("Save", mock.Anything, mock.Anything).Return(nil)

	for i := range 6 {
		m, err := r.usecase.AddTitle(r.ctx, fmt.Sprintf("Movie %d", i))
		require.NoError(t, err)
		if i%2 == 0 {
			require.NoError(t, r.usecase.Delete(r.ctx, m.ID))
		}
	}

	seen := make(map[uuid.UUID]struct{})
	for _, m := range r.usecase.Snapshot().Movies {
		_, dup := seen[m.ID]
		assert.False(t, dup)
		seen[m.ID] = struct{}{}
	}
	assert.Len(t, seen, 3)
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseWatchlistSuite))
}
