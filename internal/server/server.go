// Package server 行情服务的 HTTP 接口
package server

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/predictpark/predictpark/internal/marketfeed"
	"github.com/predictpark/predictpark/internal/metrics"
	"github.com/predictpark/predictpark/pkg/ratelimit"
)

const (
	errFetchMarkets   = "Failed to fetch markets"
	errTooManyRequest = "Too many requests"
)

var log = logrus.WithField("module", "server")

type Config struct {
	Source marketfeed.Source
	// RateLimitPerSecond <= 0 表示不限流
	RateLimitPerSecond float64
	Metrics            *metrics.Registry
}

type Server struct {
	cfg     Config
	limiter *ratelimit.TokenBucket
}

func New(cfg Config) (*Server, error) {
	if cfg.Source == nil {
		return nil, errors.New("market source is required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRegistry()
	}
	s := &Server{cfg: cfg}
	if cfg.RateLimitPerSecond > 0 {
		burst := int(math.Ceil(cfg.RateLimitPerSecond))
		s.limiter = ratelimit.NewTokenBucket(burst, cfg.RateLimitPerSecond)
	}
	return s, nil
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.recovery(), s.requestLog(), cors())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(s.cfg.Metrics.Handler()))

	api := r.Group("/api")
	api.Use(s.rateLimit())
	api.GET("/markets/crypto", s.handleMarkets)

	return r
}

// handleMarkets GET /api/markets/crypto?asset=&minVolume=&minLiquidity=&search=
func (s *Server) handleMarkets(c *gin.Context) {
	fl := marketfeed.ParseFilters(c.Request.URL.Query())

	all, err := s.cfg.Source.ListMarkets(c.Request.Context())
	if err != nil {
		log.Errorf("list markets: %v", err)
		s.cfg.Metrics.Requests.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, marketfeed.ErrorResponse{
			Success: false,
			Error:   errFetchMarkets,
			Message: err.Error(),
		})
		return
	}

	data := marketfeed.Apply(all, fl)
	s.cfg.Metrics.Requests.WithLabelValues("ok").Inc()
	s.cfg.Metrics.MarketsReturned.Observe(float64(len(data)))
	c.JSON(http.StatusOK, marketfeed.MarketsResponse{
		Success: true,
		Data:    data,
		Total:   len(data),
		Filters: &fl,
	})
}
