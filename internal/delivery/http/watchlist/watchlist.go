package http_watchlist

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/humanbelnik/cinematheque/internal/locale"
	"github.com/humanbelnik/cinematheque/internal/model"
	service_enrichment "github.com/humanbelnik/cinematheque/internal/service/enrichment"
	usecase_watchlist "github.com/humanbelnik/cinematheque/internal/usecase/watchlist"
	"github.com/rs/zerolog"
)

// AddMovieRequestDTO without a title adds whatever is in the draft.
type AddMovieRequestDTO struct {
	Title *string `json:"title"`
}

type RefreshPosterRequestDTO struct {
	Title string `json:"title"`
}

type DraftRequestDTO struct {
	Text string `json:"text"`
}

type SimilarRequestDTO struct {
	Title string `json:"title" binding:"required"`
}

type PlaceholderQueryDTO struct {
	Title   string `form:"title" binding:"required"`
	Variant string `form:"variant" binding:"omitempty,oneof=error"`
}

type MoviesListResponseDTO struct {
	Movies []model.Movie `json:"movies"`
	Total  int           `json:"total"`
}

type RefreshPosterResponseDTO struct {
	Updated bool         `json:"updated"`
	Movie   *model.Movie `json:"movie,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

type Controller struct {
	uc       *usecase_watchlist.Usecase
	messages locale.Messages

	logger zerolog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithLanguage(language string) ControllerOption {
	return func(c *Controller) {
		c.messages = locale.For(language)
	}
}

func New(uc *usecase_watchlist.Usecase,
	opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:       uc,
		messages: locale.For(""),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	movies := router.Group("/movies")
	movies.GET("", c.getMovies)
	movies.POST("", c.addMovie)
	movies.DELETE("/:movie_id", c.deleteMovie)
	movies.POST("/:movie_id/poster", c.refreshPoster)

	router.PUT("/draft", c.setDraft)

	suggestions := router.Group("/suggestions")
	suggestions.GET("", c.getSuggestion)
	suggestions.POST("", c.findSimilar)
	suggestions.DELETE("", c.dismissSuggestion)

	router.GET("/posters/placeholder", c.placeholder)
}

// @Summary List movies
// @Description Returns the watchlist, newest first
// @Tags Watchlist
// @Produce json
// @Success 200 {object} MoviesListResponseDTO
// @Router /movies [get]
func (c *Controller) getMovies(ctx *gin.Context) {
	movies := c.uc.Snapshot().Movies
	ctx.JSON(http.StatusOK, MoviesListResponseDTO{
		Movies: movies,
		Total:  len(movies),
	})
}

// @Summary Add a movie
// @Description Looks the title up and prepends the movie. Without a title the current draft is used.
// @Tags Watchlist
// @Accept json
// @Produce json
// @Param request body AddMovieRequestDTO false "Title to add"
// @Success 201 {object} model.Movie
// @Failure 400 {object} ErrorResponse "Blank title"
// @Failure 409 {object} ErrorResponse "Another add or lookup is running"
// @Failure 502 {object} ErrorResponse "Details service unreachable"
// @Failure 503 {object} ErrorResponse "Watchlist not loaded yet"
// @Router /movies [post]
func (c *Controller) addMovie(ctx *gin.Context) {
	var req AddMovieRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.badRequest(ctx, "Invalid request body", err)
		return
	}

	var (
		movie model.Movie
		err   error
	)
	if req.Title == nil {
		movie, err = c.uc.Add(ctx.Request.Context())
	} else {
		movie, err = c.uc.AddTitle(ctx.Request.Context(), *req.Title)
	}
	if err != nil {
		c.writeError(ctx, "Failed to add movie", err)
		return
	}

	ctx.JSON(http.StatusCreated, movie)
}

// @Summary Remove a movie
// @Tags Watchlist
// @Param movie_id path string true "Movie UUID" example("550e8400-e29b-41d4-a716-446655440000")
// @Success 204
// @Failure 400 {object} ErrorResponse "Invalid movie UUID"
// @Router /movies/{movie_id} [delete]
func (c *Controller) deleteMovie(ctx *gin.Context) {
	movieID, ok := c.movieID(ctx)
	if !ok {
		return
	}

	if err := c.uc.Delete(ctx.Request.Context(), movieID); err != nil {
		c.writeError(ctx, "Failed to delete movie", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// @Summary Refresh a poster
// @Description Looks the poster up again, bypassing the lookup cache
// @Tags Watchlist
// @Accept json
// @Produce json
// @Param movie_id path string true "Movie UUID"
// @Param request body RefreshPosterRequestDTO false "Title override"
// @Success 200 {object} RefreshPosterResponseDTO
// @Failure 409 {object} ErrorResponse "Refresh already running for this movie"
// @Router /movies/{movie_id}/poster [post]
func (c *Controller) refreshPoster(ctx *gin.Context) {
	movieID, ok := c.movieID(ctx)
	if !ok {
		return
	}

	var req RefreshPosterRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.badRequest(ctx, "Invalid request body", err)
		return
	}

	updated, err := c.uc.RefreshPoster(ctx.Request.Context(), movieID, req.Title)
	if err != nil {
		c.writeError(ctx, "Failed to refresh poster", err)
		return
	}

	resp := RefreshPosterResponseDTO{Updated: updated}
	if updated {
		for _, m := range c.uc.Snapshot().Movies {
			if m.ID == movieID {
				resp.Movie = &m
				break
			}
		}
	}
	ctx.JSON(http.StatusOK, resp)
}

// @Summary Replace the draft title
// @Tags Watchlist
// @Accept json
// @Param request body DraftRequestDTO true "Draft text"
// @Success 204
// @Router /draft [put]
func (c *Controller) setDraft(ctx *gin.Context) {
	var req DraftRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.badRequest(ctx, "Invalid request body", err)
		return
	}

	c.uc.SetDraft(req.Text)
	ctx.Status(http.StatusNoContent)
}

// @Summary Current suggestion
// @Tags Suggestions
// @Produce json
// @Success 200 {object} model.Suggestion
// @Success 204 "No suggestion"
// @Router /suggestions [get]
func (c *Controller) getSuggestion(ctx *gin.Context) {
	suggestion := c.uc.Snapshot().Suggestion
	if suggestion == nil {
		ctx.Status(http.StatusNoContent)
		return
	}
	ctx.JSON(http.StatusOK, suggestion)
}

// @Summary Find similar movies
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param request body SimilarRequestDTO true "Source title"
// @Success 200 {object} model.Suggestion
// @Failure 409 {object} ErrorResponse "Another add or lookup is running"
// @Failure 502 {object} ErrorResponse "No usable suggestions"
// @Router /suggestions [post]
func (c *Controller) findSimilar(ctx *gin.Context) {
	var req SimilarRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.badRequest(ctx, "Invalid request body", err)
		return
	}

	suggestion, err := c.uc.FindSimilar(ctx.Request.Context(), req.Title)
	if err != nil {
		c.writeError(ctx, "Failed to find similar movies", err)
		return
	}

	ctx.JSON(http.StatusOK, suggestion)
}

// @Summary Dismiss the suggestion
// @Tags Suggestions
// @Success 204
// @Router /suggestions [delete]
func (c *Controller) dismissSuggestion(ctx *gin.Context) {
	c.uc.DismissSuggestion()
	ctx.Status(http.StatusNoContent)
}

// @Summary Placeholder poster
// @Tags Posters
// @Param title query string true "Movie title"
// @Param variant query string false "Use error for the broken-image variant" Enums(error)
// @Success 302
// @Router /posters/placeholder [get]
func (c *Controller) placeholder(ctx *gin.Context) {
	var q PlaceholderQueryDTO
	if err := ctx.ShouldBindQuery(&q); err != nil {
		c.badRequest(ctx, "Invalid query", err)
		return
	}

	target := service_enrichment.PlaceholderPosterURL(q.Title)
	if q.Variant == "error" {
		target = service_enrichment.ImageErrorPosterURL(q.Title)
	}
	ctx.Redirect(http.StatusFound, target)
}

func (c *Controller) movieID(ctx *gin.Context) (uuid.UUID, bool) {
	idParam := ctx.Param("movie_id")
	movieID, err := uuid.Parse(idParam)
	if err != nil {
		c.logger.Warn().Str("id", idParam).Err(err).Msg("invalid movie ID")
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid movie ID",
			Code:  http.StatusBadRequest,
		})
		return uuid.Nil, false
	}
	return movieID, true
}

func (c *Controller) badRequest(ctx *gin.Context, msg string, err error) {
	c.logger.Warn().Err(err).Msg(msg)
	ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   msg,
		Message: err.Error(),
		Code:    http.StatusBadRequest,
	})
}

func (c *Controller) writeError(ctx *gin.Context, msg string, err error) {
	code := http.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, usecase_watchlist.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, usecase_watchlist.ErrBusy):
		code = http.StatusConflict
	case errors.Is(err, usecase_watchlist.ErrAddFailed):
		code = http.StatusBadGateway
		message = c.messages.AddFailed
	case errors.Is(err, usecase_watchlist.ErrSimilarFailed):
		code = http.StatusBadGateway
		message = c.messages.SimilarFailed
	case errors.Is(err, usecase_watchlist.ErrNotReady):
		code = http.StatusServiceUnavailable
	}

	if code >= http.StatusInternalServerError {
		c.logger.Error().Err(err).Int("status", code).Msg(msg)
	} else {
		c.logger.Warn().Err(err).Int("status", code).Msg(msg)
	}
	ctx.JSON(code, ErrorResponse{
		Error:   msg,
		Message: message,
		Code:    code,
	})
}
