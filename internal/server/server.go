package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/keyforge/internal/config"
	keydomain "github.com/smallbiznis/keyforge/internal/key/domain"
	"github.com/smallbiznis/keyforge/internal/observability"
	obsmiddleware "github.com/smallbiznis/keyforge/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/keyforge/internal/observability/metrics"
	obstracing "github.com/smallbiznis/keyforge/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// NewEngine builds the gin engine with the shared middleware chain.
// RedirectFixedPath keeps the legacy /api/Keys/... casing working.
func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.RedirectFixedPath = true
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(CORS())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	keySvc keydomain.Service
}

type ServerParams struct {
	fx.In

	Gin    *gin.Engine
	Cfg    config.Config
	KeySvc keydomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		keySvc: p.KeySvc,
	}

	svc.registerKeyRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerKeyRoutes() {
	api := s.engine.Group("/api")

	keys := api.Group("/keys")
	{
		keys.POST("/create", s.CreateKey)
		keys.GET("/validate", s.ValidateKey)
		keys.GET("/info", s.GetKeyInfo)
		keys.POST("/deactivate", s.DeactivateKey)
		keys.GET("/user", s.GetUserKeys)
		keys.GET("/stats", s.GetKeyStats)
		keys.GET("/types", s.ListKeyTypes)
	}
}
