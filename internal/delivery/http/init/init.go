package http_init

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	apiPrefix       = "/api/v1"
	shutdownTimeout = 5 * time.Second
)

type Controller interface {
	RegisterRoutes(router *gin.RouterGroup)
}

type ControllerPool struct {
	pool   []Controller
	rg     *gin.RouterGroup
	engine *gin.Engine
	logger zerolog.Logger
}

type PoolOption func(*ControllerPool)

func WithLogger(logger zerolog.Logger) PoolOption {
	return func(p *ControllerPool) {
		p.logger = logger
	}
}

// WithMiddleware applies to every route under the API prefix.
func WithMiddleware(mw ...gin.HandlerFunc) PoolOption {
	return func(p *ControllerPool) {
		p.rg.Use(mw...)
	}
}

func NewControllerPool(opts ...PoolOption) *ControllerPool {
	engine := gin.New()
	pool := &ControllerPool{
		pool:   make([]Controller, 0, 4),
		engine: engine,
		logger: zerolog.Nop(),
	}
	engine.Use(gin.Recovery(), pool.accessLog())
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pool.rg = engine.Group(apiPrefix)

	for _, opt := range opts {
		opt(pool)
	}
	return pool
}

func (pool *ControllerPool) Add(c Controller) {
	pool.pool = append(pool.pool, c)
}

func (pool *ControllerPool) Register() {
	for _, c := range pool.pool {
		c.RegisterRoutes(pool.rg)
	}
}

func (pool *ControllerPool) Handler() http.Handler {
	return pool.engine
}

// RunAll serves until ctx is cancelled, then shuts down gracefully.
func (pool *ControllerPool) RunAll(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           pool.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		pool.logger.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	pool.logger.Info().Msg("HTTP server stopped")
	return nil
}

func (pool *ControllerPool) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := pool.logger.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = pool.logger.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
