package service_enrichment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/humanbelnik/cinematheque/internal/model"
)

// flexString accepts a JSON string or number. Numbers keep their
// literal form, so 8.0 stays "8.0".
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = flexString(num.String())
	return nil
}

type detailsPayload struct {
	PosterURL   flexString `json:"posterUrl" validate:"required,http_url"`
	Year        flexString `json:"year"`
	Genre       flexString `json:"genre"`
	IMDbRating  flexString `json:"imdbRating"`
	Description flexString `json:"description"`
}

func (g *Gateway) parseDetails(text string, fallback model.MovieDetails) (model.MovieDetails, error) {
	var p detailsPayload
	if err := json.Unmarshal([]byte(stripFences(text)), &p); err != nil {
		return model.MovieDetails{}, err
	}
	if err := g.validate.Struct(p); err != nil {
		return model.MovieDetails{}, err
	}

	return model.MovieDetails{
		PosterURL:   string(p.PosterURL),
		Year:        orDefault(string(p.Year), fallback.Year),
		Genre:       orDefault(string(p.Genre), fallback.Genre),
		IMDbRating:  orDefault(string(p.IMDbRating), fallback.IMDbRating),
		Description: orDefault(string(p.Description), fallback.Description),
	}, nil
}

// stripFences removes a surrounding ```json ... ``` block if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
