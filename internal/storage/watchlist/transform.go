package storage_watchlist

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/humanbelnik/cinematheque/internal/model"
)

var ErrImmutableField = errors.New("field cannot be updated")

// Field names an enrichment field that may change after creation.
type Field string

const (
	FieldPosterURL   Field = "posterUrl"
	FieldRating      Field = "rating"
	FieldYear        Field = "year"
	FieldGenre       Field = "genre"
	FieldDescription Field = "description"
)

// None of the transforms modify the slice they are given.

func Prepend(records []model.Movie, m model.Movie) []model.Movie {
	out := make([]model.Movie, 0, len(records)+1)
	out = append(out, m)
	for _, r := range records {
		if r.ID != m.ID {
			out = append(out, r)
		}
	}
	return out
}

func Remove(records []model.Movie, id uuid.UUID) ([]model.Movie, bool) {
	out := make([]model.Movie, 0, len(records))
	removed := false
	for _, r := range records {
		if r.ID == id {
			removed = true
			continue
		}
		out = append(out, r)
	}
	return out, removed
}

func UpdateField(records []model.Movie, id uuid.UUID, field Field, value string) ([]model.Movie, bool, error) {
	set, err := setter(field)
	if err != nil {
		return records, false, err
	}

	out := make([]model.Movie, len(records))
	copy(out, records)
	for i := range out {
		if out[i].ID == id {
			set(&out[i], value)
			return out, true, nil
		}
	}
	return out, false, nil
}

func Find(records []model.Movie, id uuid.UUID) (model.Movie, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return model.Movie{}, false
}

func setter(field Field) (func(*model.Movie, string), error) {
	switch field {
	case FieldPosterURL:
		return func(m *model.Movie, v string) { m.PosterURL = v }, nil
	case FieldRating:
		return func(m *model.Movie, v string) { m.Rating = v }, nil
	case FieldYear:
		return func(m *model.Movie, v string) { m.Year = v }, nil
	case FieldGenre:
		return func(m *model.Movie, v string) { m.Genre = v }, nil
	case FieldDescription:
		return func(m *model.Movie, v string) { m.Description = v }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrImmutableField, field)
	}
}
