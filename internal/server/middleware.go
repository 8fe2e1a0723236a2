package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/predictpark/predictpark/internal/marketfeed"
)

// recovery handler panic 时返回与拉取失败相同的信封
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Errorf("panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		s.cfg.Metrics.Requests.WithLabelValues("panic").Inc()
		c.AbortWithStatusJSON(http.StatusInternalServerError, marketfeed.ErrorResponse{
			Success: false,
			Error:   errFetchMarkets,
			Message: fmt.Sprint(recovered),
		})
	})
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		s.cfg.Metrics.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"query":   c.Request.URL.RawQuery,
			"status":  status,
			"elapsed": elapsed.String(),
		}).Debug("request")
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || s.limiter.Allow() {
			c.Next()
			return
		}
		s.cfg.Metrics.RateLimited.Inc()
		if wait := s.limiter.RetryAfter(); wait > 0 {
			secs := int(wait/time.Second) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, marketfeed.ErrorResponse{
			Success: false,
			Error:   errTooManyRequest,
		})
	}
}

// cors 接口只读，允许任意来源的 GET
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
