package storage_watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/humanbelnik/cinematheque/internal/metrics"
	"github.com/humanbelnik/cinematheque/internal/model"
	"github.com/rs/zerolog"
)

var (
	ErrNotLoaded    = errors.New("watchlist saved before initial load")
	ErrFailedToSave = errors.New("failed to save watchlist")
)

type Slot interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
}

// Storage mirrors the whole watchlist into one durable slot.
type Storage struct {
	slot   Slot
	key    string
	loaded atomic.Bool
	logger zerolog.Logger
}

type Option func(*Storage)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Storage) {
		s.logger = logger
	}
}

func New(slot Slot, key string, opts ...Option) *Storage {
	s := &Storage{
		slot:   slot,
		key:    key,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load never fails: absent, unreadable and corrupt slots all come back
// as an empty watchlist. A corrupt value stays in the slot until the
// next Save overwrites it.
func (s *Storage) Load(ctx context.Context) []model.Movie {
	defer s.loaded.Store(true)

	raw, found, err := s.slot.Read(ctx, s.key)
	if err != nil {
		metrics.RecordStorageLoad("failure")
		s.logger.Error().Err(err).Str("key", s.key).Msg("failed to read watchlist")
		return []model.Movie{}
	}
	if !found {
		metrics.RecordStorageLoad("absent")
		return []model.Movie{}
	}

	var records []model.Movie
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		metrics.RecordStorageLoad("corrupt")
		s.logger.Warn().Err(err).Str("key", s.key).Msg("failed to parse saved movies")
		return []model.Movie{}
	}
	metrics.RecordStorageLoad(metrics.OutcomeSuccess)

	return s.dedupe(records)
}

func (s *Storage) Save(ctx context.Context, records []model.Movie) error {
	if !s.loaded.Load() {
		return ErrNotLoaded
	}
	if records == nil {
		records = []model.Movie{}
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSave, err)
	}
	if err := s.slot.Write(ctx, s.key, string(payload)); err != nil {
		metrics.RecordStorageWrite(false, len(records))
		return fmt.Errorf("%w: %w", ErrFailedToSave, err)
	}
	metrics.RecordStorageWrite(true, len(records))
	return nil
}

func (s *Storage) Loaded() bool {
	return s.loaded.Load()
}

// Keeps the first occurrence of every id.
func (s *Storage) dedupe(records []model.Movie) []model.Movie {
	seen := make(map[uuid.UUID]struct{}, len(records))
	out := make([]model.Movie, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			s.logger.Warn().Str("movie_id", r.ID.String()).Msg("dropping duplicate saved movie")
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
