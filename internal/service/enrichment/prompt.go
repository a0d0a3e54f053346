package service_enrichment

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/humanbelnik/cinematheque/internal/model"
)

const placeholderBase = "https://placehold.co/600x900"

var detailsSchema = &model.ResponseSchema{
	Type: model.SchemaObject,
	Properties: map[string]*model.ResponseSchema{
		"posterUrl":   {Type: model.SchemaString},
		"year":        {Type: model.SchemaString},
		"genre":       {Type: model.SchemaString},
		"imdbRating":  {Type: model.SchemaString},
		"description": {Type: model.SchemaString},
	},
	Required: []string{"posterUrl", "year", "genre", "imdbRating", "description"},
}

var similarSchema = &model.ResponseSchema{
	Type:  model.SchemaArray,
	Items: &model.ResponseSchema{Type: model.SchemaString},
}

func detailsPrompt(query, language string) string {
	return fmt.Sprintf(`Find the official high-quality poster and basic details for the movie %q.

Rules:
- posterUrl must be a direct link to an image file ending in .jpg, .jpeg or .png.
- Prefer official image hosts such as image.tmdb.org or m.media-amazon.com.
- Fill year, genre and imdbRating for this exact movie.
- description is one catchy sentence summarizing the movie, written in %s.
Answer with a JSON object holding posterUrl, year, genre, imdbRating and description.`, query, language)
}

func similarPrompt(title string) string {
	return fmt.Sprintf("Suggest %d popular movies similar to %q. Return only a JSON array of strings.", maxSimilar, title)
}

// PlaceholderPosterURL is the poster of a movie whose real poster is unknown.
func PlaceholderPosterURL(title string) string {
	return placeholderURL("1e293b", "ffffff", title)
}

// ImageErrorPosterURL replaces a poster that failed to load when rendered.
// It is never persisted.
func ImageErrorPosterURL(title string) string {
	return placeholderURL("0f172a", "6366f1", title)
}

func placeholderURL(background, foreground, title string) string {
	text := strings.ReplaceAll(url.QueryEscape(strings.TrimSpace(title)), "+", "%20")
	return fmt.Sprintf("%s/%s/%s?text=%s", placeholderBase, background, foreground, text)
}
