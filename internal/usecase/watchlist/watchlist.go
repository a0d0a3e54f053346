package usecase_watchlist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/cinematheque/internal/locale"
	"github.com/humanbelnik/cinematheque/internal/model"
	service_enrichment "github.com/humanbelnik/cinematheque/internal/service/enrichment"
	storage_watchlist "github.com/humanbelnik/cinematheque/internal/storage/watchlist"
	"github.com/rs/zerolog"
)

var (
	ErrNotReady      = errors.New("watchlist is not loaded yet")
	ErrBusy          = errors.New("another lookup is in progress")
	ErrInvalidInput  = errors.New("invalid input")
	ErrAddFailed     = errors.New("failed to add movie")
	ErrSimilarFailed = errors.New("failed to find similar movies")
)

//go:generate mockery --name=Gateway --output=../../../mocks/watchlist/gateway --filename=Gateway.go
type Gateway interface {
	FetchDetails(ctx context.Context, title string, opts ...service_enrichment.FetchOption) (model.MovieDetails, error)
	FetchSimilar(ctx context.Context, title string) ([]string, error)
}

//go:generate mockery --name=Store --output=../../../mocks/watchlist/store --filename=Store.go
type Store interface {
	Load(ctx context.Context) []model.Movie
	Save(ctx context.Context, records []model.Movie) error
}

//go:generate mockery --name=Observer --output=../../../mocks/watchlist/observer --filename=Observer.go
type Observer interface {
	OnStateChange(s model.Snapshot)
	OnNotice(n model.Notice)
}

type Usecase struct {
	gateway   Gateway
	store     Store
	observers []Observer
	messages  locale.Messages
	lenient   bool
	now       func() time.Time
	logger    zerolog.Logger

	mu         sync.Mutex
	ready      bool
	records    []model.Movie
	suggestion *model.Suggestion
	draft      string
	busy       bool
	refreshing map[uuid.UUID]struct{}
	version    uint64

	emitMu      sync.Mutex
	lastEmitted uint64
}

type Option func(*Usecase)

func WithObserver(o Observer) Option {
	return func(u *Usecase) {
		u.observers = append(u.observers, o)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

// WithLenientTransport keeps a placeholder movie when the details lookup
// could not reach the service at all, instead of failing the add.
func WithLenientTransport(lenient bool) Option {
	return func(u *Usecase) {
		u.lenient = lenient
	}
}

func WithLanguage(language string) Option {
	return func(u *Usecase) {
		u.messages = locale.For(language)
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func New(
	gateway Gateway,
	store Store,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		gateway:    gateway,
		store:      store,
		messages:   locale.For(""),
		now:        time.Now,
		logger:     zerolog.Nop(),
		refreshing: make(map[uuid.UUID]struct{}),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Start loads the saved watchlist. Every other operation that touches
// the collection returns ErrNotReady until Start has run.
func (u *Usecase) Start(ctx context.Context) {
	records := u.store.Load(ctx)

	u.mu.Lock()
	u.records = records
	u.ready = true
	snap := u.publishLocked()
	u.mu.Unlock()

	u.logger.Info().Int("movies", len(records)).Msg("watchlist loaded")
	u.emitState(snap)
}

func (u *Usecase) SetDraft(text string) {
	u.mu.Lock()
	u.draft = text
	snap := u.publishLocked()
	u.mu.Unlock()

	u.emitState(snap)
}

func (u *Usecase) Draft() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.draft
}

// Add creates a movie from the draft and clears the draft on success.
func (u *Usecase) Add(ctx context.Context) (model.Movie, error) {
	return u.add(ctx, "", true)
}

// AddTitle creates a movie from a given title, typically a suggestion.
// The draft is left as is.
func (u *Usecase) AddTitle(ctx context.Context, title string) (model.Movie, error) {
	return u.add(ctx, title, false)
}

func (u *Usecase) add(ctx context.Context, title string, fromDraft bool) (model.Movie, error) {
	u.mu.Lock()
	if fromDraft {
		title = u.draft
	}
	title = strings.TrimSpace(title)
	if err := u.beginLocked(title); err != nil {
		u.mu.Unlock()
		return model.Movie{}, err
	}
	snap := u.publishLocked()
	u.mu.Unlock()
	u.emitState(snap)

	details, err := u.gateway.FetchDetails(ctx, title)
	if err != nil {
		if !u.lenient {
			u.mu.Lock()
			u.busy = false
			snap := u.publishLocked()
			u.mu.Unlock()

			u.notify(model.Notice{Kind: model.NoticeAddFailed, Title: title, Message: u.messages.AddFailed})
			u.emitState(snap)
			return model.Movie{}, fmt.Errorf("%w: %w", ErrAddFailed, err)
		}
		u.logger.Warn().Err(err).Str("title", title).Msg("details unreachable, adding placeholder movie")
	}

	movie := model.NewMovie(title, details, u.now())

	u.mu.Lock()
	u.busy = false
	u.records = storage_watchlist.Prepend(u.records, movie)
	u.suggestion = nil
	if fromDraft {
		u.draft = ""
	}
	u.saveLocked(ctx)
	snap = u.publishLocked()
	u.mu.Unlock()

	u.logger.Info().Str("movie_id", movie.ID.String()).Str("title", title).Msg("movie added")
	u.emitState(snap)
	return movie, nil
}

// RefreshPoster looks the poster up again, bypassing cached answers.
// It reports false without an error when the movie is gone or the
// service was unreachable.
func (u *Usecase) RefreshPoster(ctx context.Context, id uuid.UUID, title string) (bool, error) {
	u.mu.Lock()
	if !u.ready {
		u.mu.Unlock()
		return false, ErrNotReady
	}
	if strings.TrimSpace(title) == "" {
		m, ok := storage_watchlist.Find(u.records, id)
		if !ok {
			u.mu.Unlock()
			return false, nil
		}
		title = m.Title
	}
	if _, ok := u.refreshing[id]; ok {
		u.mu.Unlock()
		return false, ErrBusy
	}
	u.refreshing[id] = struct{}{}
	snap := u.publishLocked()
	u.mu.Unlock()
	u.emitState(snap)

	details, err := u.gateway.FetchDetails(ctx, strings.TrimSpace(title),
		service_enrichment.WithSuffix(service_enrichment.PosterSuffix),
		service_enrichment.WithoutCache(),
	)

	u.mu.Lock()
	delete(u.refreshing, id)
	updated := false
	if err != nil {
		u.logger.Warn().Err(err).Str("movie_id", id.String()).Msg("poster refresh failed, keeping current poster")
	} else {
		records, ok, uerr := storage_watchlist.UpdateField(u.records, id, storage_watchlist.FieldPosterURL, details.PosterURL)
		if uerr != nil {
			u.mu.Unlock()
			return false, uerr
		}
		if ok {
			u.records = records
			u.saveLocked(ctx)
			updated = true
		}
	}
	snap = u.publishLocked()
	u.mu.Unlock()

	u.emitState(snap)
	return updated, nil
}

// FindSimilar replaces the current suggestion. It shares the busy gate
// with Add.
func (u *Usecase) FindSimilar(ctx context.Context, title string) (model.Suggestion, error) {
	title = strings.TrimSpace(title)

	u.mu.Lock()
	if err := u.beginLocked(title); err != nil {
		u.mu.Unlock()
		return model.Suggestion{}, err
	}
	snap := u.publishLocked()
	u.mu.Unlock()
	u.emitState(snap)

	titles, err := u.gateway.FetchSimilar(ctx, title)

	u.mu.Lock()
	u.busy = false
	if err != nil {
		snap := u.publishLocked()
		u.mu.Unlock()

		u.notify(model.Notice{Kind: model.NoticeSimilarFailed, Title: title, Message: u.messages.SimilarFailed})
		u.emitState(snap)
		return model.Suggestion{}, fmt.Errorf("%w: %w", ErrSimilarFailed, err)
	}
	u.suggestion = &model.Suggestion{Title: title, Titles: titles}
	out := *u.suggestion.Clone()
	snap = u.publishLocked()
	u.mu.Unlock()

	u.emitState(snap)
	return out, nil
}

func (u *Usecase) DismissSuggestion() {
	u.mu.Lock()
	u.suggestion = nil
	snap := u.publishLocked()
	u.mu.Unlock()

	u.emitState(snap)
}

// Delete removes the movie and persists the change. Unknown ids are a no-op.
func (u *Usecase) Delete(ctx context.Context, id uuid.UUID) error {
	u.mu.Lock()
	if !u.ready {
		u.mu.Unlock()
		return ErrNotReady
	}
	records, ok := storage_watchlist.Remove(u.records, id)
	if !ok {
		u.mu.Unlock()
		return nil
	}
	u.records = records
	u.saveLocked(ctx)
	snap := u.publishLocked()
	u.mu.Unlock()

	u.logger.Info().Str("movie_id", id.String()).Msg("movie deleted")
	u.emitState(snap)
	return nil
}

func (u *Usecase) Snapshot() model.Snapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.snapshotLocked()
}

func (u *Usecase) beginLocked(title string) error {
	if !u.ready {
		return ErrNotReady
	}
	if title == "" {
		return fmt.Errorf("%w: title is empty", ErrInvalidInput)
	}
	if u.busy {
		return ErrBusy
	}
	u.busy = true
	return nil
}

// saveLocked writes the whole collection while the lock is held, so
// writes land in mutation order. A failed write keeps the in-memory state.
func (u *Usecase) saveLocked(ctx context.Context) {
	if err := u.store.Save(context.WithoutCancel(ctx), u.records); err != nil {
		u.logger.Error().Err(err).Int("movies", len(u.records)).Msg("failed to persist watchlist")
	}
}

// publishLocked marks a state change and returns the snapshot to emit.
func (u *Usecase) publishLocked() model.Snapshot {
	u.version++
	return u.snapshotLocked()
}

func (u *Usecase) snapshotLocked() model.Snapshot {
	refreshing := make([]uuid.UUID, 0, len(u.refreshing))
	for id := range u.refreshing {
		refreshing = append(refreshing, id)
	}
	slices.SortFunc(refreshing, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})

	return model.Snapshot{
		Version:    u.version,
		Movies:     append(make([]model.Movie, 0, len(u.records)), u.records...),
		Suggestion: u.suggestion.Clone(),
		Draft:      u.draft,
		Busy:       u.busy,
		Refreshing: refreshing,
	}
}

// emitState delivers snapshots one at a time and skips any that is older
// than the last one delivered.
func (u *Usecase) emitState(s model.Snapshot) {
	u.emitMu.Lock()
	defer u.emitMu.Unlock()

	if s.Version <= u.lastEmitted {
		u.logger.Debug().Uint64("version", s.Version).Uint64("last", u.lastEmitted).Msg("stale snapshot skipped")
		return
	}
	u.lastEmitted = s.Version
	for _, o := range u.observers {
		o.OnStateChange(s)
	}
}

func (u *Usecase) notify(n model.Notice) {
	u.logger.Warn().Str("kind", string(n.Kind)).Str("title", n.Title).Msg(n.Message)
	for _, o := range u.observers {
		o.OnNotice(n)
	}
}
