package model

import (
	"time"

	"github.com/google/uuid"
)

// Movie is a single watchlist entry. JSON keys follow the browser
// storage format the watchlist was first kept in.
type Movie struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Rating      string    `json:"rating"`
	PosterURL   string    `json:"posterUrl"`
	Year        string    `json:"year"`
	Genre       string    `json:"genre"`
	Description string    `json:"description"`
	AddedAt     int64     `json:"addedAt"`
}

// NewMovie builds a fresh record from enrichment details.
func NewMovie(title string, d MovieDetails, now time.Time) Movie {
	return Movie{
		ID:          uuid.New(),
		Title:       title,
		Rating:      d.IMDbRating,
		PosterURL:   d.PosterURL,
		Year:        d.Year,
		Genre:       d.Genre,
		Description: d.Description,
		AddedAt:     now.UnixMilli(),
	}
}

type MovieDetails struct {
	PosterURL   string `json:"posterUrl"`
	Year        string `json:"year"`
	Genre       string `json:"genre"`
	IMDbRating  string `json:"imdbRating"`
	Description string `json:"description"`
}

type Suggestion struct {
	Title  string   `json:"title"`
	Titles []string `json:"list"`
}

func (s *Suggestion) Clone() *Suggestion {
	if s == nil {
		return nil
	}
	return &Suggestion{
		Title:  s.Title,
		Titles: append([]string(nil), s.Titles...),
	}
}
