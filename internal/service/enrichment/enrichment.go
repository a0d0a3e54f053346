package service_enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/humanbelnik/cinematheque/internal/locale"
	"github.com/humanbelnik/cinematheque/internal/metrics"
	"github.com/humanbelnik/cinematheque/internal/model"
	"github.com/rs/zerolog"
)

var (
	ErrTransport          = model.ErrTransport
	ErrSimilarUnavailable = errors.New("similar movies unavailable")
)

const (
	PosterSuffix = " official poster"

	maxSimilar = 5
)

type Completer interface {
	Complete(ctx context.Context, req model.CompletionRequest) (string, error)
}

// Cache returns "" with a nil error on a miss.
type Cache interface {
	Get(key string) (string, error)
	Set(key string, value string, ttl time.Duration) error
}

type Gateway struct {
	completer Completer
	cache     Cache
	cacheTTL  time.Duration
	language  string
	grounding bool
	now       func() time.Time
	validate  *validator.Validate
	logger    zerolog.Logger
}

type Option func(*Gateway)

func WithCache(cache Cache, ttl time.Duration) Option {
	return func(g *Gateway) {
		g.cache = cache
		g.cacheTTL = ttl
	}
}

// WithLanguage sets the language of generated descriptions and of the
// fallback description.
func WithLanguage(language string) Option {
	return func(g *Gateway) {
		g.language = language
	}
}

func WithSearchGrounding(enabled bool) Option {
	return func(g *Gateway) {
		g.grounding = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func New(completer Completer, opts ...Option) *Gateway {
	g := &Gateway{
		completer: completer,
		language:  "English",
		now:       time.Now,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type fetchOptions struct {
	suffix  string
	noCache bool
}

type FetchOption func(*fetchOptions)

// WithSuffix appends text to the title in the lookup query only.
func WithSuffix(suffix string) FetchOption {
	return func(o *fetchOptions) {
		o.suffix = suffix
	}
}

func WithoutCache() FetchOption {
	return func(o *fetchOptions) {
		o.noCache = true
	}
}

// FetchDetails always returns fully populated details. Unusable answers
// yield the fallback with a nil error; transport failures yield the
// fallback together with an error wrapping ErrTransport.
func (g *Gateway) FetchDetails(ctx context.Context, title string, opts ...FetchOption) (model.MovieDetails, error) {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}

	title = strings.TrimSpace(title)
	query := title + o.suffix
	fallback := g.FallbackDetails(title)
	key := "details:" + normalize(query)
	log := g.logger.With().Str("title", title).Logger()

	if !o.noCache {
		var cached model.MovieDetails
		if g.cached(key, &cached) {
			metrics.RecordEnrichment(metrics.OperationDetails, metrics.OutcomeCached)
			return cached, nil
		}
	}

	text, err := g.completer.Complete(ctx, model.CompletionRequest{
		Prompt:          detailsPrompt(query, g.language),
		Schema:          detailsSchema,
		SearchGrounding: g.grounding,
	})
	if err != nil {
		if errors.Is(err, ErrTransport) {
			metrics.RecordEnrichment(metrics.OperationDetails, metrics.OutcomeTransportError)
			log.Warn().Err(err).Msg("details lookup unreachable, using fallback")
			return fallback, fmt.Errorf("%w: %w", ErrTransport, err)
		}
		metrics.RecordEnrichment(metrics.OperationDetails, metrics.OutcomeFallback)
		log.Warn().Err(err).Msg("details lookup returned nothing usable, using fallback")
		return fallback, nil
	}

	details, err := g.parseDetails(text, fallback)
	if err != nil {
		metrics.RecordEnrichment(metrics.OperationDetails, metrics.OutcomeFallback)
		log.Warn().Err(err).Msg("details lookup returned malformed data, using fallback")
		return fallback, nil
	}

	metrics.RecordEnrichment(metrics.OperationDetails, metrics.OutcomeSuccess)
	g.store(key, details)
	return details, nil
}

// FetchSimilar returns up to five titles similar to title, never
// including title itself. There is no fallback.
func (g *Gateway) FetchSimilar(ctx context.Context, title string) ([]string, error) {
	title = strings.TrimSpace(title)
	key := "similar:" + normalize(title)

	var cached []string
	if g.cached(key, &cached) && len(cached) > 0 {
		metrics.RecordEnrichment(metrics.OperationSimilar, metrics.OutcomeCached)
		return cached, nil
	}

	text, err := g.completer.Complete(ctx, model.CompletionRequest{
		Prompt: similarPrompt(title),
		Schema: similarSchema,
	})
	if err != nil {
		outcome := metrics.OutcomeFailure
		if errors.Is(err, ErrTransport) {
			outcome = metrics.OutcomeTransportError
		}
		metrics.RecordEnrichment(metrics.OperationSimilar, outcome)
		return nil, fmt.Errorf("%w: %w", ErrSimilarUnavailable, err)
	}

	var raw []flexString
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil {
		metrics.RecordEnrichment(metrics.OperationSimilar, metrics.OutcomeFailure)
		return nil, fmt.Errorf("%w: %w", ErrSimilarUnavailable, err)
	}

	titles := cleanTitles(title, raw)
	if len(titles) == 0 {
		metrics.RecordEnrichment(metrics.OperationSimilar, metrics.OutcomeFailure)
		return nil, fmt.Errorf("%w: no usable titles", ErrSimilarUnavailable)
	}

	metrics.RecordEnrichment(metrics.OperationSimilar, metrics.OutcomeSuccess)
	g.store(key, titles)
	return titles, nil
}

// FallbackDetails is what a movie gets when nothing better is known.
func (g *Gateway) FallbackDetails(title string) model.MovieDetails {
	return model.MovieDetails{
		PosterURL:   PlaceholderPosterURL(title),
		Year:        strconv.Itoa(g.now().Year()),
		Genre:       "Movie",
		IMDbRating:  "N/A",
		Description: locale.For(g.language).LoadingDescription,
	}
}

func (g *Gateway) cached(key string, dst any) bool {
	if g.cache == nil {
		return false
	}
	raw, err := g.cache.Get(key)
	if err != nil {
		g.logger.Warn().Err(err).Str("key", key).Msg("lookup cache read failed")
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		g.logger.Warn().Err(err).Str("key", key).Msg("lookup cache holds malformed entry")
		return false
	}
	return true
}

func (g *Gateway) store(key string, v any) {
	if g.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := g.cache.Set(key, string(raw), g.cacheTTL); err != nil {
		g.logger.Warn().Err(err).Str("key", key).Msg("lookup cache write failed")
	}
}

func cleanTitles(source string, raw []flexString) []string {
	seen := map[string]struct{}{normalize(source): {}}
	titles := make([]string, 0, maxSimilar)
	for _, r := range raw {
		t := strings.TrimSpace(string(r))
		n := normalize(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		titles = append(titles, t)
		if len(titles) == maxSimilar {
			break
		}
	}
	return titles
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
