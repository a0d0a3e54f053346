package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/humanbelnik/cinematheque/internal/config"
	http_init "github.com/humanbelnik/cinematheque/internal/delivery/http/init"
	http_ratelimit_middleware "github.com/humanbelnik/cinematheque/internal/delivery/http/middleware/ratelimit"
	http_swagger "github.com/humanbelnik/cinematheque/internal/delivery/http/swagger"
	http_watchlist "github.com/humanbelnik/cinematheque/internal/delivery/http/watchlist"
	ws_watchlist "github.com/humanbelnik/cinematheque/internal/delivery/ws/watchlist"
	infra_gemini "github.com/humanbelnik/cinematheque/internal/infra/gemini"
	infra_redis_init "github.com/humanbelnik/cinematheque/internal/infra/redis/init"
	infra_lookup_cache "github.com/humanbelnik/cinematheque/internal/infra/redis/lookup_cache"
	infra_slot_init "github.com/humanbelnik/cinematheque/internal/infra/slot/init"
	"github.com/humanbelnik/cinematheque/internal/logger"
	service_enrichment "github.com/humanbelnik/cinematheque/internal/service/enrichment"
	storage_watchlist "github.com/humanbelnik/cinematheque/internal/storage/watchlist"
	usecase_watchlist "github.com/humanbelnik/cinematheque/internal/usecase/watchlist"
	"github.com/rs/zerolog"
)

const lookupCacheKey = "lookup"

type App struct {
	cfg     *config.Config
	logger  zerolog.Logger
	hub     *ws_watchlist.Hub
	Usecase *usecase_watchlist.Usecase

	closers []func() error
}

type Option func(*options)

type options struct {
	observers []usecase_watchlist.Observer
	completer service_enrichment.Completer
}

// WithObserver adds a listener next to the websocket hub.
func WithObserver(o usecase_watchlist.Observer) Option {
	return func(opts *options) {
		opts.observers = append(opts.observers, o)
	}
}

// WithCompleter replaces the Gemini client.
func WithCompleter(c service_enrichment.Completer) Option {
	return func(opts *options) {
		opts.completer = c
	}
}

// New wires every component and loads the watchlist.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, logger: log}

	slot, err := infra_slot_init.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, slot.Close)

	completer := o.completer
	if completer == nil {
		completer = infra_gemini.New(cfg.Gemini)
	}

	gatewayOpts := []service_enrichment.Option{
		service_enrichment.WithLanguage(cfg.Gemini.Language),
		service_enrichment.WithSearchGrounding(cfg.Gemini.SearchGrounding),
		service_enrichment.WithLogger(logger.WithComponent(log, "enrichment")),
	}
	if cfg.Redis.Enabled {
		client, err := infra_redis_init.EstablishConn(cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("lookup cache unavailable, continuing without it")
		} else {
			a.closers = append(a.closers, client.Close)
			gatewayOpts = append(gatewayOpts,
				service_enrichment.WithCache(infra_lookup_cache.New(client, lookupCacheKey), cfg.Redis.TTL))
		}
	}
	gateway := service_enrichment.New(completer, gatewayOpts...)

	store := storage_watchlist.New(slot, cfg.Storage.Key,
		storage_watchlist.WithLogger(logger.WithComponent(log, "storage")))

	a.hub = ws_watchlist.New(ws_watchlist.WithLogger(logger.WithComponent(log, "ws")))

	ucOpts := []usecase_watchlist.Option{
		usecase_watchlist.WithObserver(a.hub),
		usecase_watchlist.WithLogger(logger.WithComponent(log, "watchlist")),
		usecase_watchlist.WithLanguage(cfg.Gemini.Language),
		usecase_watchlist.WithLenientTransport(cfg.Enrichment.LenientTransport),
	}
	for _, obs := range o.observers {
		ucOpts = append(ucOpts, usecase_watchlist.WithObserver(obs))
	}
	a.Usecase = usecase_watchlist.New(gateway, store, ucOpts...)
	a.hub.Bind(a.Usecase)

	a.Usecase.Start(ctx)
	return a, nil
}

// Serve runs the HTTP and websocket API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	return a.controllerPool().RunAll(ctx, net.JoinHostPort(a.cfg.HTTP.Host, a.cfg.HTTP.Port))
}

// Handler exposes the same routes as Serve without owning a listener.
func (a *App) Handler() http.Handler {
	return a.controllerPool().Handler()
}

func (a *App) controllerPool() *http_init.ControllerPool {
	limiter := http_ratelimit_middleware.New(a.cfg.HTTP.Rate, a.cfg.HTTP.Burst)

	controllerPool := http_init.NewControllerPool(
		http_init.WithLogger(logger.WithComponent(a.logger, "http")),
		http_init.WithMiddleware(limiter.Middleware()),
	)
	controllerPool.Add(http_watchlist.New(a.Usecase,
		http_watchlist.WithLogger(logger.WithComponent(a.logger, "http")),
		http_watchlist.WithLanguage(a.cfg.Gemini.Language),
	))
	controllerPool.Add(a.hub)
	controllerPool.Add(http_swagger.New())
	controllerPool.Register()
	return controllerPool
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
